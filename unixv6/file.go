package unixv6

import (
	u6errors "github.com/WesLeeO/unixv6fs/errors"
)

// File is a cursor on one inode's contents: the mount it was opened on, the
// inode number, a cached copy of the inode (authoritative during the
// cursor's lifetime, flushed after every mutation), and a byte offset.
type File struct {
	mount  *Mount
	Inr    Inumber
	Inode  RawInode
	Offset uint32
}

// Open opens a cursor on inode inr, positioned at offset 0.
func (m *Mount) Open(inr Inumber) (*File, error) {
	in, err := m.InodeRead(inr)
	if err != nil {
		return nil, err
	}
	return &File{mount: m, Inr: inr, Inode: in, Offset: 0}, nil
}

// ReadBlock reads the next block of the file into buf, which must be
// SectorSize bytes long, and returns the number of meaningful bytes copied
// (0 at end of file).
func (f *File) ReadBlock(buf []byte) (int, error) {
	if len(buf) != SectorSize {
		return 0, u6errors.ErrBadParameter.WithMessage("buffer must be one sector long")
	}

	size := f.Inode.Size()
	if f.Offset == size {
		return 0, nil
	}

	sec, err := f.mount.InodeFindSector(&f.Inode, f.Offset/SectorSize)
	if err != nil {
		return 0, err
	}
	if err := f.mount.device.Read(uint32(sec), buf); err != nil {
		return 0, err
	}

	remaining := size - f.Offset
	n := uint32(SectorSize)
	if remaining < n {
		n = remaining
	}
	f.Offset += n
	return int(n), nil
}

// Lseek repositions the cursor. A valid offset is either the exact file
// size or sector-aligned.
func (f *File) Lseek(offset uint32) error {
	size := f.Inode.Size()
	if offset > size {
		return u6errors.ErrOffsetOutOfRange
	}
	if offset != size && offset%SectorSize != 0 {
		return u6errors.ErrBadParameter.WithMessage("seek offset must be sector-aligned or equal to file size")
	}
	f.Offset = offset
	return nil
}

// Create allocates a fresh inode with the given mode bits (IALLOC is added
// automatically) and returns a cursor positioned at offset 0.
func (m *Mount) Create(mode uint16) (*File, error) {
	inr, err := m.InodeAlloc()
	if err != nil {
		return nil, err
	}
	in := RawInode{Mode: FlagIsAllocated | mode}
	if err := m.InodeWrite(inr, in); err != nil {
		return nil, err
	}
	return &File{mount: m, Inr: inr, Inode: in, Offset: 0}, nil
}

// WriteBytes appends buf to the end of the file, growing it sector by
// sector until every byte has been written. It is not transactional: a
// mid-loop failure may leave the inode partially grown.
func (f *File) WriteBytes(buf []byte) error {
	remaining := uint32(len(buf))
	written := uint32(0)

	for remaining > 0 {
		size := f.Inode.Size()
		if size >= MaxSmallFileSize {
			return u6errors.ErrFileTooLarge
		}

		offsetInSector := size % SectorSize
		chunk := SectorSize - offsetInSector
		if chunk > remaining {
			chunk = remaining
		}

		var sectorBuf [SectorSize]byte
		var physical BlockNum

		if offsetInSector == 0 {
			idx, ok := f.mount.BlockBitmap.FirstClear()
			if !ok {
				return u6errors.ErrBitmapFull
			}
			f.mount.BlockBitmap.Set(idx)
			physical = BlockNum(idx)
			f.Inode.Addr[size/SectorSize] = physical
		} else {
			physical = f.Inode.Addr[size/SectorSize]
			if err := f.mount.device.Read(uint32(physical), sectorBuf[:]); err != nil {
				return err
			}
		}

		copy(sectorBuf[offsetInSector:offsetInSector+chunk], buf[written:written+chunk])
		if err := f.mount.device.Write(uint32(physical), sectorBuf[:]); err != nil {
			return err
		}

		f.Inode.SetSize(size + chunk)
		if err := f.mount.InodeWrite(f.Inr, f.Inode); err != nil {
			return err
		}

		written += chunk
		remaining -= chunk
	}
	return nil
}
