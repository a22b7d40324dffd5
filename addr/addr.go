package addr

import (
	"github.com/mit-pdos/go-vdisk/common"
)

// Addr identifies the start of an on-disk object.
//
// Blkno is the block number containing the object, and Off is the location of
// the object within the block (expressed as a byte offset, which may run past
// the block for objects in multi-block regions). The size of the object is
// determined by the context in which Addr is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bytes
}

// Flatid returns the absolute byte offset of a on the disk.
func (a Addr) Flatid() uint64 {
	return uint64(a.Blkno)*common.BlockSize + a.Off
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkSlotAddr returns the address of the n-th fixed-size slot of a region
// that starts at block start.
func MkSlotAddr(start common.Bnum, n uint64, sz uint64) Addr {
	perBlock := common.BlockSize / sz
	return MkAddr(start+common.Bnum(n/perBlock), (n%perBlock)*sz)
}

// MkBlockAddr returns the address of block n of a region that starts at
// byte offset base.
func MkBlockAddr(base uint64, n common.Bnum) Addr {
	return MkAddr(base/common.BlockSize+n, base%common.BlockSize)
}
