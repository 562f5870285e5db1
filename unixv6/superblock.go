package unixv6

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"

	u6errors "github.com/WesLeeO/unixv6fs/errors"
)

// RawSuperblock is the exact 28-byte-prefix on-disk layout of sector 1,
// decoded directly with encoding/binary. Fields after s_block_start are
// bookkeeping the original tool preserves but never acts on; they are kept
// here so a round-tripped superblock is byte-for-byte faithful.
type RawSuperblock struct {
	NumInodeSectors uint16 // s_isize
	TotalSectors    uint16 // s_fsize
	FreeBitmapSize  uint16 // s_fbmsize
	InodeBitmapSize uint16 // s_ibmsize
	InodeStart      uint16 // s_inode_start
	BlockStart      uint16 // s_block_start
	FreeBitmapStart uint16 // s_fbm_start
	InodeBitmapStart uint16 // s_ibm_start
	FLock           uint8  // s_flock
	ILock           uint8  // s_ilock
	FMod            uint8  // s_fmod
	ReadOnly        uint8  // s_ronly
	Time            [2]uint32
}

func decodeSuperblock(sector []byte) (RawSuperblock, error) {
	var sb RawSuperblock
	reader := bytes.NewReader(sector)
	if err := binary.Read(reader, binary.LittleEndian, &sb); err != nil {
		return RawSuperblock{}, u6errors.ErrIO.Wrap(err)
	}
	return sb, nil
}

// validate runs every structural consistency check over a decoded
// superblock, accumulating all failures instead of stopping at the first.
// This supplements the single magic-byte check with checks the original
// tool never performed, without changing the externally observed error
// code on a malformed image: every accumulated issue still collapses to
// ErrBadBootSector.
func (sb *RawSuperblock) validate() error {
	var issues *multierror.Error

	if sb.NumInodeSectors == 0 {
		issues = multierror.Append(issues, fmt.Errorf("inode table has zero sectors"))
	}
	if sb.TotalSectors == 0 {
		issues = multierror.Append(issues, fmt.Errorf("filesystem has zero total sectors"))
	}
	if uint32(sb.InodeStart)+uint32(sb.NumInodeSectors) > uint32(sb.BlockStart) {
		issues = multierror.Append(issues, fmt.Errorf(
			"inode table [%d, %d) overlaps data region starting at %d",
			sb.InodeStart, uint32(sb.InodeStart)+uint32(sb.NumInodeSectors), sb.BlockStart))
	}
	if uint32(sb.BlockStart) >= uint32(sb.TotalSectors) {
		issues = multierror.Append(issues, fmt.Errorf(
			"data region start %d is past end of filesystem (%d sectors)",
			sb.BlockStart, sb.TotalSectors))
	}

	if issues != nil {
		return u6errors.ErrBadBootSector.Wrap(issues)
	}
	return nil
}

// NumInodes returns the total number of inode slots, including the
// reserved, never-allocated inode 0.
func (sb *RawSuperblock) NumInodes() int {
	return int(sb.NumInodeSectors) * InodesPerSector
}
