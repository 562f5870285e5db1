package unixv6

import (
	"bytes"
	"encoding/binary"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
)

// InodeSize is the size, in bytes, of one on-disk inode record.
const InodeSize = 32

// RawInode is the exact 32-byte on-disk inode layout, decoded directly with
// encoding/binary the same way the teacher's UNIXv1 driver decodes its raw
// structs.
type RawInode struct {
	Mode         uint16
	NLink        uint8
	UID          uint8
	GID          uint8
	Size0        uint8
	Size1        uint16
	Addr         [AddrSmallLength]BlockNum
	AccessedTime uint32
	ModifiedTime uint32
}

// Size returns the inode's effective byte length, packed from the 24-bit
// size0:size1 pair.
func (in *RawInode) Size() uint32 {
	return uint32(in.Size0)<<16 | uint32(in.Size1)
}

// SetSize packs n into the 24-bit size0:size1 pair.
func (in *RawInode) SetSize(n uint32) {
	in.Size0 = uint8((n >> 16) & 0xFF)
	in.Size1 = uint16(n & 0xFFFF)
}

// IsAllocated reports whether the IALLOC mode bit is set.
func (in *RawInode) IsAllocated() bool {
	return in.Mode&FlagIsAllocated != 0
}

// IsDirectory reports whether the inode's file-type bits mark a directory.
func (in *RawInode) IsDirectory() bool {
	return in.Mode&FileTypeMask == FileTypeDirectory
}

func decodeInode(buf []byte) (RawInode, error) {
	var in RawInode
	reader := bytes.NewReader(buf)
	if err := binary.Read(reader, binary.LittleEndian, &in); err != nil {
		return RawInode{}, u6errors.ErrIO.Wrap(err)
	}
	return in, nil
}

func encodeInode(in RawInode) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, in); err != nil {
		return nil, u6errors.ErrIO.Wrap(err)
	}
	return buf.Bytes(), nil
}

func inodeSectorAndOffset(inr Inumber) (sectorOffset uint32, entry int) {
	return uint32(inr) / InodesPerSector, int(inr) % InodesPerSector
}

// InodeRead reads inode number inr from the mounted filesystem.
func (m *Mount) InodeRead(inr Inumber) (RawInode, error) {
	if int(inr) < RootInumber || int(inr) >= m.Superblock.NumInodes() {
		return RawInode{}, u6errors.ErrInodeOutOfRange
	}

	sectorOffset, entry := inodeSectorAndOffset(inr)
	sectorIdx := uint32(m.Superblock.InodeStart) + sectorOffset

	buf := make([]byte, SectorSize)
	if err := m.device.Read(sectorIdx, buf); err != nil {
		return RawInode{}, err
	}

	in, err := decodeInode(buf[entry*InodeSize : (entry+1)*InodeSize])
	if err != nil {
		return RawInode{}, err
	}
	if !in.IsAllocated() {
		return RawInode{}, u6errors.ErrUnallocatedInode
	}
	return in, nil
}

// InodeWrite writes in back to inode number inr, read-modify-writing the
// sector that holds it.
func (m *Mount) InodeWrite(inr Inumber, in RawInode) error {
	if int(inr) < RootInumber || int(inr) >= m.Superblock.NumInodes() {
		return u6errors.ErrInodeOutOfRange
	}

	sectorOffset, entry := inodeSectorAndOffset(inr)
	sectorIdx := uint32(m.Superblock.InodeStart) + sectorOffset

	buf := make([]byte, SectorSize)
	if err := m.device.Read(sectorIdx, buf); err != nil {
		return err
	}

	encoded, err := encodeInode(in)
	if err != nil {
		return err
	}
	copy(buf[entry*InodeSize:(entry+1)*InodeSize], encoded)

	return m.device.Write(sectorIdx, buf)
}

// InodeAlloc finds the first free inode number, marks it allocated in the
// in-memory bitmap, and returns it. The caller must still InodeWrite a
// fresh inode record at the returned number.
func (m *Mount) InodeAlloc() (Inumber, error) {
	idx, ok := m.InodeBitmap.FirstClear()
	if !ok {
		return 0, u6errors.ErrBitmapFull
	}
	m.InodeBitmap.Set(idx)
	return Inumber(idx), nil
}

// InodeFindSector maps logical sector k of the file described by in to a
// physical sector number, applying the small/large addressing rule.
func (m *Mount) InodeFindSector(in *RawInode, k uint32) (BlockNum, error) {
	if !in.IsAllocated() {
		return 0, u6errors.ErrUnallocatedInode
	}

	size := in.Size()
	lastSector := uint32(0)
	if size > 0 {
		lastSector = (size - 1) / SectorSize
	}
	if size == 0 {
		return 0, u6errors.ErrOffsetOutOfRange
	}
	if k > lastSector {
		return 0, u6errors.ErrOffsetOutOfRange
	}

	if size <= MaxSmallFileSize {
		return in.Addr[k], nil
	}
	if size > MaxLargeFileSize {
		return 0, u6errors.ErrFileTooLarge
	}

	indirectIdx := k / AddressesPerSector
	offsetInIndirect := k % AddressesPerSector
	indirectSector := in.Addr[indirectIdx]

	buf := make([]byte, SectorSize)
	if err := m.device.Read(uint32(indirectSector), buf); err != nil {
		return 0, err
	}
	entry := binary.LittleEndian.Uint16(buf[offsetInIndirect*2 : offsetInIndirect*2+2])
	return BlockNum(entry), nil
}

// InodeScanRow describes one row of the inode listing produced by the
// "inode" CLI command, suitable for either plain-text or CSV rendering.
type InodeScanRow struct {
	Inumber int    `csv:"inumber"`
	Kind    string `csv:"kind"`
	Size    uint32 `csv:"size"`
}

// InodeScan iterates every allocated inode and returns one row per inode,
// in ascending inode-number order.
func (m *Mount) InodeScan() ([]InodeScanRow, error) {
	var rows []InodeScanRow
	total := m.Superblock.NumInodes()
	for inr := RootInumber; inr < total; inr++ {
		in, err := m.InodeRead(Inumber(inr))
		if err == u6errors.ErrUnallocatedInode {
			continue
		}
		if err != nil {
			return nil, err
		}
		kind := "FIL"
		if in.IsDirectory() {
			kind = "DIR"
		}
		rows = append(rows, InodeScanRow{Inumber: inr, Kind: kind, Size: in.Size()})
	}
	return rows, nil
}
