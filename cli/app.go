// Package cli wires the u6fs command-line surface: a single disk image
// argument followed by a command and its own arguments, matching the
// original tool's "u6fs <disk> <command> [args]" invocation shape, built on
// top of github.com/urfave/cli/v2 for flag parsing and usage output.
package cli

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
	"github.com/WesLeeO/unixv6fs/unixv6"
)

// NewApp builds the u6fs CLI application.
func NewApp() *cli.App {
	return &cli.App{
		Name:      "u6fs",
		Usage:     "inspect and mutate UNIX Version 6 filesystem images",
		ArgsUsage: "<disk> <command> [args...]",
		Action:    run,
	}
}

func run(ctx *cli.Context) error {
	args := ctx.Args().Slice()
	if len(args) < 2 {
		cli.ShowAppHelp(ctx)
		return u6errors.ErrInvalidCommand.WithMessage("expected <disk> <command> [args...]")
	}

	diskPath := args[0]
	command := args[1]
	rest := args[2:]

	f, err := os.OpenFile(diskPath, os.O_RDWR, 0)
	if err != nil {
		return u6errors.ErrIO.Wrap(err)
	}

	mount, mountErr := unixv6.Mount(f)
	if mountErr != nil {
		f.Close()
		return mountErr
	}

	cmdErr := dispatch(ctx.App.Writer, mount, command, rest)

	if unmountErr := mount.Unmount(); unmountErr != nil && cmdErr == nil {
		cmdErr = unmountErr
	}

	return cmdErr
}

func dispatch(w io.Writer, m *unixv6.Mount, command string, args []string) error {
	handler, ok := commands[command]
	if !ok {
		return u6errors.ErrInvalidCommand.WithMessage(command)
	}
	return handler(w, m, args)
}
