// Package fuse exposes a mounted v6 filesystem read-only through the
// kernel, using github.com/hanwen/go-fuse/v2 — the same library the pack's
// squashfs driver (inode_fuse.go) builds its kernel bridge on, since the
// teacher repo carries no FUSE support of its own. Only the three
// operations a read-only mount needs are implemented: attributes, directory
// listing, and file reads.
package fuse

import (
	gofuse "github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"

	"github.com/WesLeeO/unixv6fs/cli"
	u6errors "github.com/WesLeeO/unixv6fs/errors"
	"github.com/WesLeeO/unixv6fs/unixv6"
)

func init() {
	cli.MountFUSE = Mount
}

type filesystem struct {
	pathfs.FileSystem
	mount *unixv6.Mount
}

// Mount serves m read-only at mountpoint until the kernel unmounts it,
// single-threaded and in the foreground, matching the original tool's
// "-s -f -odirect_io" fuse_main invocation.
func Mount(m *unixv6.Mount, mountpoint string) error {
	fsys := &filesystem{FileSystem: pathfs.NewDefaultFileSystem(), mount: m}
	pathNodeFs := pathfs.NewPathNodeFs(fsys, nil)
	conn := nodefs.NewFileSystemConnector(pathNodeFs.Root(), nodefs.NewOptions())

	server, err := gofuse.NewServer(conn.RawFS(), mountpoint, &gofuse.MountOptions{
		SingleThreaded: true,
		Options:        []string{"direct_io"},
	})
	if err != nil {
		return u6errors.ErrIO.Wrap(err)
	}

	server.Serve()
	return nil
}

func (fs *filesystem) resolve(name string) (unixv6.Inumber, unixv6.RawInode, error) {
	inr, err := fs.mount.DirLookup(unixv6.RootInumber, name)
	if err != nil {
		return 0, unixv6.RawInode{}, err
	}
	in, err := fs.mount.InodeRead(inr)
	if err != nil {
		return 0, unixv6.RawInode{}, err
	}
	return inr, in, nil
}

func statusFor(err error) gofuse.Status {
	switch err {
	case nil:
		return gofuse.OK
	case u6errors.ErrNoSuchFile:
		return gofuse.ENOENT
	case u6errors.ErrInvalidDirectoryInode:
		return gofuse.ENOTDIR
	case u6errors.ErrOffsetOutOfRange, u6errors.ErrBadParameter:
		return gofuse.EINVAL
	default:
		return gofuse.EIO
	}
}

// GetAttr fills in the attributes for name by resolving it through the
// mounted filesystem's directory tree.
func (fs *filesystem) GetAttr(name string, _ *gofuse.Context) (*gofuse.Attr, gofuse.Status) {
	inr, in, err := fs.resolve(name)
	if err != nil {
		return nil, statusFor(err)
	}

	size := in.Size()
	mode := uint32(0755)
	if in.IsDirectory() {
		mode |= gofuse.S_IFDIR
	} else {
		mode |= gofuse.S_IFREG
	}

	return &gofuse.Attr{
		Ino:     uint64(inr),
		Size:    uint64(size),
		Blocks:  (uint64(size) + unixv6.SectorSize - 1) / unixv6.SectorSize,
		Mode:    mode,
		Nlink:   uint32(in.NLink),
		Owner:   gofuse.Owner{Uid: uint32(in.UID), Gid: uint32(in.GID)},
		Blksize: unixv6.SectorSize,
	}, gofuse.OK
}

// OpenDir lists name's directory entries, always including "." and "..".
func (fs *filesystem) OpenDir(name string, _ *gofuse.Context) ([]gofuse.DirEntry, gofuse.Status) {
	inr, in, err := fs.resolve(name)
	if err != nil {
		return nil, statusFor(err)
	}
	if !in.IsDirectory() {
		return nil, gofuse.ENOTDIR
	}

	entries := []gofuse.DirEntry{
		{Name: ".", Mode: gofuse.S_IFDIR},
		{Name: "..", Mode: gofuse.S_IFDIR},
	}

	reader, err := fs.mount.OpenDir(inr)
	if err != nil {
		return nil, statusFor(err)
	}
	for {
		entry, err := reader.ReadDir()
		if err != nil {
			break
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		childIn, err := fs.mount.InodeRead(entry.Inr)
		if err != nil {
			continue
		}
		mode := uint32(gofuse.S_IFREG)
		if childIn.IsDirectory() {
			mode = gofuse.S_IFDIR
		}
		entries = append(entries, gofuse.DirEntry{Name: entry.Name, Mode: mode})
	}

	return entries, gofuse.OK
}

// Open returns a read-only file handle on name.
func (fs *filesystem) Open(name string, _ uint32, _ *gofuse.Context) (nodefs.File, gofuse.Status) {
	inr, in, err := fs.resolve(name)
	if err != nil {
		return nil, statusFor(err)
	}
	if in.IsDirectory() {
		return nil, gofuse.EISDIR
	}
	return &readOnlyFile{File: nodefs.NewDefaultFile(), mount: fs.mount, inr: inr}, gofuse.OK
}

type readOnlyFile struct {
	nodefs.File
	mount *unixv6.Mount
	inr   unixv6.Inumber
}

// Read fills dest starting at off by repeatedly reading whole sectors from
// the underlying file and copying the requested slice out of them.
func (f *readOnlyFile) Read(dest []byte, off int64) (gofuse.ReadResult, gofuse.Status) {
	cursor, err := f.mount.Open(f.inr)
	if err != nil {
		return nil, statusFor(err)
	}

	alignedOffset := uint32(off) - uint32(off)%unixv6.SectorSize
	if err := cursor.Lseek(alignedOffset); err != nil {
		return nil, statusFor(err)
	}

	collected := make([]byte, 0, len(dest)+unixv6.SectorSize)
	for uint32(len(collected)) < uint32(off-int64(alignedOffset))+uint32(len(dest)) {
		var buf [unixv6.SectorSize]byte
		n, err := cursor.ReadBlock(buf[:])
		if err != nil {
			return nil, statusFor(err)
		}
		if n == 0 {
			break
		}
		collected = append(collected, buf[:n]...)
	}

	start := int(off - int64(alignedOffset))
	if start > len(collected) {
		start = len(collected)
	}
	end := start + len(dest)
	if end > len(collected) {
		end = len(collected)
	}

	return gofuse.ReadResultData(collected[start:end]), gofuse.OK
}
