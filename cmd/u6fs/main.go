// Command u6fs inspects and mutates UNIX Version 6 filesystem images from
// the command line, and can mount one read-only over FUSE.
package main

import (
	"fmt"
	"os"

	"github.com/WesLeeO/unixv6fs/cli"
	"github.com/WesLeeO/unixv6fs/errors"
	_ "github.com/WesLeeO/unixv6fs/fuse"
)

func main() {
	app := cli.NewApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "u6fs: %s\n", err.Error())

		status := -1
		var coded interface{ ExitStatus() int }
		if as, ok := err.(*errors.DetailedError); ok {
			coded = rootCode(as)
		} else if code, ok := err.(errors.Code); ok {
			coded = code
		}
		if coded != nil {
			status = coded.ExitStatus()
		}
		os.Exit(status)
	}
}

// rootCode walks a *errors.DetailedError's Unwrap chain down to the
// originating errors.Code, if any, so the process exit status matches the
// original sentinel rather than defaulting to "invalid command".
func rootCode(err *errors.DetailedError) errors.Code {
	var cause error = err
	for {
		unwrappable, ok := cause.(interface{ Unwrap() error })
		if !ok {
			break
		}
		next := unwrappable.Unwrap()
		if next == nil {
			break
		}
		if code, ok := next.(errors.Code); ok {
			return code
		}
		cause = next
	}
	return errors.ErrInvalidCommand
}
