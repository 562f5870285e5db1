// Package testutil builds small, fully in-memory v6 disk images for use by
// every package's tests, the same way the teacher's testing.LoadDiskImage
// wraps a byte slice in an io.ReadWriteSeeker — except here the bytes are
// synthesized from Go structs instead of decompressed from a golden binary
// fixture, so every byte is traceable to the code that produced it.
package testutil

import (
	"encoding/binary"

	"github.com/xaionaro-go/bytesextra"

	"github.com/WesLeeO/unixv6fs/unixv6"
)

// Image is a synthetic v6 filesystem image plus the inode numbers of the
// fixtures BuildImage seeded, so tests can assert against known paths.
type Image struct {
	Bytes   []byte
	RootInr unixv6.Inumber
	TmpInr  unixv6.Inumber
	FileInr unixv6.Inumber
}

// BuildImage constructs a totalSectors-sector image with numInodeSectors of
// inode table, a root directory (inode 1) containing a subdirectory "tmp"
// (inode 2), which in turn contains a file "coucou.txt" (inode 3) holding
// contents.
func BuildImage(totalSectors, numInodeSectors uint16, contents []byte) *Image {
	const sectorSize = unixv6.SectorSize

	inodeStart := uint16(2) // sector 0 boot, sector 1 superblock
	blockStart := inodeStart + numInodeSectors

	buf := make([]byte, int(totalSectors)*sectorSize)

	buf[unixv6.BootblockMagicNumOffset] = unixv6.BootblockMagicNum

	sb := unixv6.RawSuperblock{
		NumInodeSectors: numInodeSectors,
		TotalSectors:    totalSectors,
		InodeStart:      inodeStart,
		BlockStart:      blockStart,
	}
	writeSuperblock(buf, sb)

	nextFreeBlock := uint16(blockStart)
	alloc := func() uint16 {
		b := nextFreeBlock
		nextFreeBlock++
		return b
	}

	rootBlock := alloc()
	tmpBlock := alloc()
	fileBlock := alloc()

	writeInode(buf, inodeStart, 1, unixv6.RawInode{
		Mode:  unixv6.FlagIsAllocated | unixv6.FileTypeDirectory | unixv6.DefaultDirMode,
		Size1: uint16(3 * 16),
		Addr:  [8]unixv6.BlockNum{unixv6.BlockNum(rootBlock)},
	})
	writeInode(buf, inodeStart, 2, unixv6.RawInode{
		Mode:  unixv6.FlagIsAllocated | unixv6.FileTypeDirectory | unixv6.DefaultDirMode,
		Size1: uint16(3 * 16),
		Addr:  [8]unixv6.BlockNum{unixv6.BlockNum(tmpBlock)},
	})
	writeInode(buf, inodeStart, 3, unixv6.RawInode{
		Mode:  unixv6.FlagIsAllocated | unixv6.DefaultFileMode,
		Size1: uint16(len(contents)),
		Addr:  [8]unixv6.BlockNum{unixv6.BlockNum(fileBlock)},
	})

	writeDirBlock(buf, rootBlock, []dirEntry{
		{inr: 1, name: "."},
		{inr: 1, name: ".."},
		{inr: 2, name: "tmp"},
	})
	writeDirBlock(buf, tmpBlock, []dirEntry{
		{inr: 2, name: "."},
		{inr: 1, name: ".."},
		{inr: 3, name: "coucou.txt"},
	})

	fileSectorOffset := int(fileBlock) * sectorSize
	copy(buf[fileSectorOffset:fileSectorOffset+sectorSize], contents)

	return &Image{
		Bytes:   buf,
		RootInr: 1,
		TmpInr:  2,
		FileInr: 3,
	}
}

// Stream returns a fresh io.ReadWriteSeeker over the image's bytes.
func (img *Image) Stream() *bytesextra.ReadWriteSeeker {
	cp := make([]byte, len(img.Bytes))
	copy(cp, img.Bytes)
	return bytesextra.NewReadWriteSeeker(cp)
}

type dirEntry struct {
	inr  uint16
	name string
}

func writeDirBlock(buf []byte, sector uint16, entries []dirEntry) {
	base := int(sector) * unixv6.SectorSize
	for i, e := range entries {
		off := base + i*unixv6.DirentSize
		binary.LittleEndian.PutUint16(buf[off:off+2], e.inr)
		copy(buf[off+2:off+2+unixv6.MaxFilenameLength], e.name)
	}
}

func writeSuperblock(buf []byte, sb unixv6.RawSuperblock) {
	base := unixv6.SuperblockSector * unixv6.SectorSize
	binary.LittleEndian.PutUint16(buf[base+0:], sb.NumInodeSectors)
	binary.LittleEndian.PutUint16(buf[base+2:], sb.TotalSectors)
	binary.LittleEndian.PutUint16(buf[base+4:], sb.FreeBitmapSize)
	binary.LittleEndian.PutUint16(buf[base+6:], sb.InodeBitmapSize)
	binary.LittleEndian.PutUint16(buf[base+8:], sb.InodeStart)
	binary.LittleEndian.PutUint16(buf[base+10:], sb.BlockStart)
	binary.LittleEndian.PutUint16(buf[base+12:], sb.FreeBitmapStart)
	binary.LittleEndian.PutUint16(buf[base+14:], sb.InodeBitmapStart)
}

func writeInode(buf []byte, inodeStart, inr uint16, in unixv6.RawInode) {
	sectorIdx := inodeStart + (inr / unixv6.InodesPerSector)
	entry := int(inr) % unixv6.InodesPerSector
	base := int(sectorIdx)*unixv6.SectorSize + entry*unixv6.InodeSize

	binary.LittleEndian.PutUint16(buf[base+0:], in.Mode)
	buf[base+2] = in.NLink
	buf[base+3] = in.UID
	buf[base+4] = in.GID
	buf[base+5] = in.Size0
	binary.LittleEndian.PutUint16(buf[base+6:], in.Size1)
	for i, addr := range in.Addr {
		binary.LittleEndian.PutUint16(buf[base+8+i*2:], uint16(addr))
	}
}
