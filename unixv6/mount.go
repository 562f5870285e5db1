package unixv6

import (
	"io"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
	"github.com/WesLeeO/unixv6fs/bitmap"
	"github.com/WesLeeO/unixv6fs/sector"
)

// Mount is a handle on one open v6 filesystem image. It owns the image
// stream, the decoded superblock, and the in-memory allocation bitmaps
// rebuilt by scanning the inode table at mount time. The on-disk bitmap
// region is never authoritative and is never written back.
type Mount struct {
	Superblock  RawSuperblock
	InodeBitmap *bitmap.Bitmap
	BlockBitmap *bitmap.Bitmap

	device *sector.Device
	closer io.Closer
}

// Mount opens stream (closed by Unmount if it implements io.Closer),
// validates the boot sector and superblock, and rebuilds both allocation
// bitmaps by scanning every inode.
func Mount(stream io.ReadWriteSeeker) (*Mount, error) {
	boot, err := readRawSector(stream, 0)
	if err != nil {
		return nil, err
	}
	if boot[BootblockMagicNumOffset] != BootblockMagicNum {
		return nil, u6errors.ErrBadBootSector.WithMessage("missing boot sector magic byte")
	}

	sbBuf, err := readRawSector(stream, SuperblockSector)
	if err != nil {
		return nil, err
	}
	sb, err := decodeSuperblock(sbBuf)
	if err != nil {
		return nil, err
	}
	if err := sb.validate(); err != nil {
		return nil, err
	}

	m := &Mount{
		Superblock:  sb,
		device:      sector.New(stream, uint32(sb.TotalSectors)),
		InodeBitmap: bitmap.New(RootInumber, sb.NumInodes()-1),
		BlockBitmap: bitmap.New(int(sb.BlockStart), int(sb.TotalSectors)-1),
	}
	if closer, ok := stream.(io.Closer); ok {
		m.closer = closer
	}

	if err := m.rebuildBitmaps(); err != nil {
		return nil, err
	}
	return m, nil
}

// readRawSector performs a one-off sector read before the device's total
// sector count is known (needed to bootstrap the superblock itself).
func readRawSector(stream io.ReadWriteSeeker, index uint32) ([]byte, error) {
	if _, err := stream.Seek(int64(index)*SectorSize, io.SeekStart); err != nil {
		return nil, u6errors.ErrIO.Wrap(err)
	}
	buf := make([]byte, SectorSize)
	if _, err := io.ReadFull(stream, buf); err != nil {
		return nil, u6errors.ErrIO.Wrap(err)
	}
	return buf, nil
}

// rebuildBitmaps scans every inode number, marking each allocated inode
// and every sector (direct, indirect, and indirect-pointed) it references.
func (m *Mount) rebuildBitmaps() error {
	total := m.Superblock.NumInodes()
	for inr := RootInumber; inr < total; inr++ {
		in, err := m.InodeRead(Inumber(inr))
		if err == u6errors.ErrUnallocatedInode {
			continue
		}
		if err != nil {
			return err
		}
		m.InodeBitmap.Set(inr)

		for k := uint32(0); ; k++ {
			s, err := m.InodeFindSector(&in, k)
			if err != nil {
				break
			}
			if s == 0 {
				break
			}
			m.BlockBitmap.Set(int(s))

			size := in.Size()
			if size > MaxSmallFileSize {
				indirectIdx := k / AddressesPerSector
				if int(indirectIdx) < AddrSmallLength-1 {
					m.BlockBitmap.Set(int(in.Addr[indirectIdx]))
				}
			}
		}
	}
	return nil
}

// Unmount releases the image stream. Unmounting a nil handle, or a handle
// that has already been unmounted, returns ErrBadParameter, matching the
// original tool's explicit null-parameter check.
func (m *Mount) Unmount() error {
	if m == nil || m.device == nil {
		return u6errors.ErrBadParameter
	}
	if m.closer != nil {
		if err := m.closer.Close(); err != nil {
			return u6errors.ErrIO.Wrap(err)
		}
	}
	*m = Mount{}
	return nil
}
