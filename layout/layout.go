// Package layout turns a requested disk size into the fixed region layout
// of a virtual disk:
//
//	[header][inode bitmap][data bitmap][inode blocks...][data blocks...]
//
// The layout is computed once, when the disk is created, and recorded in the
// header for the lifetime of the disk.
package layout

import (
	"fmt"

	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/util"
)

type Layout struct {
	Size        uint64 // requested size in bytes
	TotalBlocks uint64
	InodeStart  uint64 // byte offset of the inode region
	DataStart   uint64 // byte offset of the data region
	InodeBlocks uint64
	DataBlocks  uint64
}

// Plan computes the layout for a disk of size bytes.
//
// The inode region never provides more slots than there are data blocks to
// back them: starting from enough inode blocks to describe every available
// block, inode blocks are given back to the data region until the slots fit.
// At least one inode block is always kept; Slots caps the usable slot count
// for disks too small to fill it.
func Plan(size uint64) (Layout, error) {
	if size < common.MinSize || size > common.MaxSize {
		return Layout{}, fmt.Errorf("disk size %d outside [%d, %d]: %w",
			size, common.MinSize, common.MaxSize, common.ErrInvalid)
	}
	available := size/common.BlockSize - common.SysBlocks
	inodeBlocks := util.RoundUp(available, common.InodesPerBlock)
	for inodeBlocks > 1 && inodeBlocks*common.InodesPerBlock > available-inodeBlocks {
		inodeBlocks--
	}
	l := Layout{
		Size:        size,
		TotalBlocks: available + common.SysBlocks,
		InodeStart:  common.SysBlocks * common.BlockSize,
		DataStart:   (common.SysBlocks + inodeBlocks) * common.BlockSize,
		InodeBlocks: inodeBlocks,
		DataBlocks:  available - inodeBlocks,
	}
	util.DPrintf(1, "Plan: %d bytes -> %d inode blocks, %d data blocks\n",
		size, l.InodeBlocks, l.DataBlocks)
	return l, nil
}

// Slots is the number of usable inode slots.
func (l Layout) Slots() uint64 {
	return util.Min(l.InodeBlocks*common.InodesPerBlock, l.DataBlocks)
}

// Used is the number of bytes covered by whole blocks; the rest of the disk,
// if any, is zero padding.
func (l Layout) Used() uint64 {
	return l.TotalBlocks * common.BlockSize
}
