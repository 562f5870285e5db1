package unixv6

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
)

// DirentSize is the size, in bytes, of one directory entry record.
const DirentSize = 16

// Dirent is one directory entry: a child inode number and its name.
type Dirent struct {
	Inr  Inumber
	Name string
}

func decodeDirent(buf []byte) Dirent {
	inr := Inumber(buf[0]) | Inumber(buf[1])<<8
	name := buf[2:2+MaxFilenameLength]
	nul := bytes.IndexByte(name, 0)
	if nul >= 0 {
		name = name[:nul]
	}
	return Dirent{Inr: inr, Name: string(name)}
}

func encodeDirent(d Dirent) ([]byte, error) {
	if len(d.Name) > MaxFilenameLength {
		return nil, u6errors.ErrFilenameTooLong
	}
	buf := make([]byte, DirentSize)
	buf[0] = byte(d.Inr)
	buf[1] = byte(d.Inr >> 8)
	copy(buf[2:], d.Name)
	return buf, nil
}

// DirReader streams the entries of one directory's contents. It caches one
// block (up to DirentriesPerSector entries) at a time; cur is the index of
// the next entry to return, last the count currently cached.
type DirReader struct {
	file  *File
	cache []Dirent
	cur   int
	last  int
}

// OpenDir opens a directory reader on inode inr, failing
// ErrInvalidDirectoryInode if it is not a directory.
func (m *Mount) OpenDir(inr Inumber) (*DirReader, error) {
	f, err := m.Open(inr)
	if err != nil {
		return nil, err
	}
	if !f.Inode.IsDirectory() {
		return nil, u6errors.ErrInvalidDirectoryInode
	}
	return &DirReader{file: f}, nil
}

// ReadDir returns the next entry. It returns (Dirent{}, io.EOF) once every
// entry has been consumed.
func (d *DirReader) ReadDir() (Dirent, error) {
	if d.cur == d.last {
		var buf [SectorSize]byte
		n, err := d.file.ReadBlock(buf[:])
		if err != nil {
			return Dirent{}, err
		}
		if n == 0 {
			return Dirent{}, io.EOF
		}

		count := n / DirentSize
		d.cache = make([]Dirent, count)
		for i := 0; i < count; i++ {
			d.cache[i] = decodeDirent(buf[i*DirentSize : (i+1)*DirentSize])
		}
		d.cur = 0
		d.last = count
	}

	entry := d.cache[d.cur]
	d.cur++
	return entry, nil
}

// DirLookup resolves path (with any number of leading slashes, which are
// skipped) against the directory tree starting at startInr.
func (m *Mount) DirLookup(startInr Inumber, path string) (Inumber, error) {
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return startInr, nil
	}

	component := path
	rest := ""
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		component = path[:idx]
		rest = path[idx+1:]
	}

	reader, err := m.OpenDir(startInr)
	if err != nil {
		return 0, err
	}

	for {
		entry, err := reader.ReadDir()
		if err == io.EOF {
			return 0, u6errors.ErrNoSuchFile
		}
		if err != nil {
			return 0, err
		}
		if entry.Name == component {
			return m.DirLookup(entry.Inr, rest)
		}
	}
}

// PrintTree writes a depth-first listing of the directory tree rooted at
// inr to w, using an explicit stack instead of recursion so that deep
// hierarchies cannot blow the host call stack.
func (m *Mount) PrintTree(w io.Writer, inr Inumber) error {
	type frame struct {
		inr    Inumber
		prefix string
	}

	in, err := m.InodeRead(inr)
	if err != nil {
		return err
	}
	if !in.IsDirectory() {
		return u6errors.ErrInvalidDirectoryInode
	}
	fmt.Fprintf(w, "DIR /\n")

	stack := []frame{{inr: inr, prefix: ""}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		reader, err := m.OpenDir(top.inr)
		if err != nil {
			return err
		}
		for {
			entry, err := reader.ReadDir()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if entry.Name == "." || entry.Name == ".." {
				continue
			}

			childPath := top.prefix + "/" + entry.Name
			childInode, err := m.InodeRead(entry.Inr)
			if err != nil {
				return err
			}
			if childInode.IsDirectory() {
				fmt.Fprintf(w, "DIR %s/\n", childPath)
				stack = append(stack, frame{inr: entry.Inr, prefix: childPath})
			} else {
				fmt.Fprintf(w, "FIL %s\n", childPath)
			}
		}
	}
	return nil
}

// splitParentLeaf splits path into its parent directory component and leaf
// name, validating the leaf's length.
func splitParentLeaf(path string) (parent, leaf string, err error) {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		parent, leaf = "", trimmed
	} else {
		parent, leaf = trimmed[:idx+1], trimmed[idx+1:]
	}
	if len(leaf) > MaxFilenameLength {
		return "", "", u6errors.ErrFilenameTooLong
	}
	return parent, leaf, nil
}

// CreateEntry creates a new directory entry at path under mode, failing if
// the parent doesn't exist or the name is already taken.
func (m *Mount) CreateEntry(path string, mode uint16) (Inumber, error) {
	parentPath, leaf, err := splitParentLeaf(path)
	if err != nil {
		return 0, err
	}

	parentInr, err := m.DirLookup(RootInumber, parentPath)
	if err != nil {
		return 0, err
	}

	if _, err := m.DirLookup(parentInr, leaf); err == nil {
		return 0, u6errors.ErrFilenameAlreadyExists
	} else if err != u6errors.ErrNoSuchFile {
		return 0, err
	}

	newFile, err := m.Create(mode)
	if err != nil {
		return 0, err
	}

	parent, err := m.Open(parentInr)
	if err != nil {
		return 0, err
	}
	entryBytes, err := encodeDirent(Dirent{Inr: newFile.Inr, Name: leaf})
	if err != nil {
		return 0, err
	}
	if err := parent.WriteBytes(entryBytes); err != nil {
		return 0, err
	}

	return newFile.Inr, nil
}

// AddFile creates a new plain file at path and writes contents into it.
func (m *Mount) AddFile(path string, mode uint16, contents []byte) (Inumber, error) {
	inr, err := m.CreateEntry(path, mode)
	if err != nil {
		return 0, err
	}
	f, err := m.Open(inr)
	if err != nil {
		return 0, err
	}
	if err := f.WriteBytes(contents); err != nil {
		return 0, err
	}
	return inr, nil
}
