// Package common holds the constants that fix the on-disk geometry of a
// virtual disk, and the error kinds shared by every layer.
package common

const (
	BlockSize uint64 = 1024

	// header, inode bitmap, data bitmap
	SysBlocks uint64 = 3

	INODEBITMAP Bnum = 1
	DATABITMAP  Bnum = 2

	InodeSize      uint64 = 64 // on-disk size
	InodesPerBlock uint64 = BlockSize / InodeSize

	// NameLen is the width of a NUL-padded name field. A valid name must
	// leave room for at least one terminating NUL.
	NameLen  uint64 = 40
	InfoSize uint64 = 468
	UUIDSize uint64 = 16

	// Each bitmap is one block of ASCII '0'/'1' entries.
	MaxBitmapEntries uint64 = BlockSize

	MinSize uint64 = (SysBlocks + 1 + 1) * BlockSize
	MaxSize uint64 = (SysBlocks + MaxBitmapEntries/InodesPerBlock + MaxBitmapEntries) * BlockSize
)

const (
	BitFree byte = '0'
	BitUsed byte = '1'
)

type Inum uint64
type Bnum = uint64
