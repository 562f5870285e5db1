package cli

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
	"github.com/WesLeeO/unixv6fs/unixv6"
)

type commandFunc func(w io.Writer, m *unixv6.Mount, args []string) error

var commands = map[string]commandFunc{
	"sb":       cmdSuperblock,
	"inode":    cmdInode,
	"cat1":     cmdCat1,
	"shafiles": cmdShaFiles,
	"tree":     cmdTree,
	"bm":       cmdBitmaps,
	"mkdir":    cmdMkdir,
	"add":      cmdAdd,
	"fuse":     cmdFuse,
}

// hasCSVFlag reports whether --format=csv was passed, and returns args with
// it removed.
func hasCSVFlag(args []string) (bool, []string) {
	var rest []string
	csv := false
	for _, a := range args {
		if a == "--format=csv" {
			csv = true
			continue
		}
		rest = append(rest, a)
	}
	return csv, rest
}

func cmdSuperblock(w io.Writer, m *unixv6.Mount, _ []string) error {
	sb := m.Superblock
	fmt.Fprintf(w, "**SUPERBLOCK**\n")
	fmt.Fprintf(w, "s_isize       : %d\n", sb.NumInodeSectors)
	fmt.Fprintf(w, "s_fsize       : %d\n", sb.TotalSectors)
	fmt.Fprintf(w, "s_fbmsize     : %d\n", sb.FreeBitmapSize)
	fmt.Fprintf(w, "s_ibmsize     : %d\n", sb.InodeBitmapSize)
	fmt.Fprintf(w, "s_inode_start : %d\n", sb.InodeStart)
	fmt.Fprintf(w, "s_block_start : %d\n", sb.BlockStart)
	fmt.Fprintf(w, "s_fbm_start   : %d\n", sb.FreeBitmapStart)
	fmt.Fprintf(w, "s_ibm_start   : %d\n", sb.InodeBitmapStart)
	return nil
}

func cmdInode(w io.Writer, m *unixv6.Mount, args []string) error {
	csv, _ := hasCSVFlag(args)

	rows, err := m.InodeScan()
	if err != nil {
		return err
	}

	if csv {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return u6errors.ErrIO.Wrap(err)
		}
		fmt.Fprint(w, out)
		return nil
	}

	for _, r := range rows {
		fmt.Fprintf(w, "inode %d (%s) len %d\n", r.Inumber, r.Kind, r.Size)
	}
	return nil
}

func cmdCat1(w io.Writer, m *unixv6.Mount, args []string) error {
	if len(args) != 1 {
		return u6errors.ErrBadParameter.WithMessage("cat1 <inr>")
	}
	inrNum, err := strconv.Atoi(args[0])
	if err != nil {
		return u6errors.ErrBadParameter.Wrap(err)
	}

	f, err := m.Open(unixv6.Inumber(inrNum))
	if err != nil {
		return err
	}

	var buf [unixv6.SectorSize]byte
	n, err := f.ReadBlock(buf[:])
	if err != nil {
		return err
	}
	_, err = w.Write(buf[:n])
	return err
}

type shaRow struct {
	Inumber int    `csv:"inumber"`
	Kind    string `csv:"kind"`
	SHA256  string `csv:"sha256"`
}

const shaHashedLength = 1024

func cmdShaFiles(w io.Writer, m *unixv6.Mount, args []string) error {
	csv, _ := hasCSVFlag(args)

	inodeRows, err := m.InodeScan()
	if err != nil {
		return err
	}

	var rows []shaRow
	for _, r := range inodeRows {
		hash, err := shaOfFile(m, unixv6.Inumber(r.Inumber))
		if err != nil {
			return err
		}
		rows = append(rows, shaRow{Inumber: r.Inumber, Kind: r.Kind, SHA256: hash})
	}

	if csv {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return u6errors.ErrIO.Wrap(err)
		}
		fmt.Fprint(w, out)
		return nil
	}

	for _, r := range rows {
		label := "SHA inode"
		if r.Kind == "DIR" {
			label = "SHA (dir) inode"
		}
		fmt.Fprintf(w, "%s %d: %s\n", label, r.Inumber, r.SHA256)
	}
	return nil
}

func shaOfFile(m *unixv6.Mount, inr unixv6.Inumber) (string, error) {
	f, err := m.Open(inr)
	if err != nil {
		return "", err
	}

	hasher := sha256.New()
	remaining := shaHashedLength
	var buf [unixv6.SectorSize]byte
	for remaining > 0 {
		n, err := f.ReadBlock(buf[:])
		if err != nil {
			return "", err
		}
		if n == 0 {
			break
		}
		if n > remaining {
			n = remaining
		}
		hasher.Write(buf[:n])
		remaining -= n
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func cmdTree(w io.Writer, m *unixv6.Mount, _ []string) error {
	return m.PrintTree(w, unixv6.RootInumber)
}

func cmdBitmaps(w io.Writer, m *unixv6.Mount, _ []string) error {
	m.InodeBitmap.Print(w, "INODES")
	m.BlockBitmap.Print(w, "SECTORS")
	return nil
}

func cmdMkdir(w io.Writer, m *unixv6.Mount, args []string) error {
	if len(args) != 1 {
		return u6errors.ErrBadParameter.WithMessage("mkdir <path>")
	}
	mode := uint16(unixv6.FileTypeDirectory | unixv6.DefaultDirMode)
	_, err := m.CreateEntry(args[0], mode)
	return err
}

func cmdAdd(w io.Writer, m *unixv6.Mount, args []string) error {
	if len(args) != 2 {
		return u6errors.ErrBadParameter.WithMessage("add <dst> <src>")
	}
	dst, src := args[0], args[1]

	contents, err := os.ReadFile(src)
	if err != nil {
		return u6errors.ErrIO.Wrap(err)
	}
	if len(contents) > unixv6.MaxSmallFileSize {
		contents = contents[:unixv6.MaxSmallFileSize]
	}

	_, err = m.AddFile(dst, unixv6.DefaultFileMode, contents)
	return err
}

func cmdFuse(w io.Writer, m *unixv6.Mount, args []string) error {
	if len(args) != 1 {
		return u6errors.ErrBadParameter.WithMessage("fuse <mountpoint>")
	}
	return mountFUSE(m, args[0])
}

// MountFUSE is filled in by package fuse's init(), keeping the FUSE
// node-callback machinery out of every command that isn't "fuse" itself.
var MountFUSE func(m *unixv6.Mount, mountpoint string) error

func mountFUSE(m *unixv6.Mount, mountpoint string) error {
	if MountFUSE == nil {
		return u6errors.ErrBadParameter.WithMessage("fuse support not linked into this binary")
	}
	return MountFUSE(m, mountpoint)
}
