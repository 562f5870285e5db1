// Package unixv6 implements the on-disk layout and operations of the
// classic UNIX Version 6 filesystem: superblock and inode parsing, bitmap
// reconstruction, block addressing, file I/O, and directory traversal.
package unixv6

// Fixed geometry constants of the v6 on-disk format.
const (
	// SectorSize is the size of one disk sector, in bytes.
	SectorSize = 512

	// InodesPerSector is the number of 32-byte inode records packed into
	// one sector.
	InodesPerSector = SectorSize / InodeSize

	// AddressesPerSector is the number of 16-bit block addresses packed
	// into one indirect sector.
	AddressesPerSector = SectorSize / 2

	// DirentriesPerSector is the number of 16-byte directory entries
	// packed into one sector.
	DirentriesPerSector = SectorSize / DirentSize

	// RootInumber is the inode number of the filesystem root directory.
	// Inode 0 is reserved and never valid.
	RootInumber = 1

	// AddrSmallLength is the number of entries in i_addr used for direct
	// block addressing in a small file, and for indirect-sector pointers
	// in a large file.
	AddrSmallLength = 8

	// MaxSmallFileSize is the largest size, in bytes, addressable by the
	// direct (small-file) scheme.
	MaxSmallFileSize = AddrSmallLength * SectorSize

	// MaxLargeFileSize is the largest size, in bytes, addressable by the
	// single-indirect (large-file) scheme.
	MaxLargeFileSize = (AddrSmallLength - 1) * AddressesPerSector * SectorSize

	// MaxFilenameLength is the widest a directory entry's name field can
	// be without null termination.
	MaxFilenameLength = 14

	// BootblockMagicNumOffset is the byte offset within sector 0 that
	// must hold BootblockMagicNum for the image to be considered valid.
	BootblockMagicNumOffset = 510

	// BootblockMagicNum is the expected magic byte at BootblockMagicNumOffset.
	BootblockMagicNum = 0x2a

	// SuperblockSector is the sector index holding the superblock.
	SuperblockSector = 1
)

// Inode mode-bit flags, matching the historical V6 encoding.
const (
	FlagIsAllocated = 0x8000 // i_mode: inode is in use
	FileTypeMask    = 0x6000
	FileTypeDirectory = 0x4000 // i_mode: inode is a directory
	FlagIsLargeFile   = 0x1000 // legacy bit, preserved but never consulted for addressing
	FlagOwnerR        = 0x0100
	FlagOwnerW        = 0x0080
	FlagOwnerX        = 0x0040
	FlagGroupR        = 0x0020
	FlagGroupW        = 0x0010
	FlagGroupX        = 0x0008
	FlagOtherR        = 0x0004
	FlagOtherW        = 0x0002
	FlagOtherX        = 0x0001

	DefaultDirMode  = FlagOwnerR | FlagOwnerW | FlagOwnerX | FlagGroupR | FlagGroupX | FlagOtherR | FlagOtherX
	DefaultFileMode = FlagOwnerR | FlagOwnerW | FlagGroupR | FlagOtherR
)

// Inumber identifies an inode by its 1-based table position.
type Inumber uint16

// BlockNum identifies a physical sector.
type BlockNum uint16
