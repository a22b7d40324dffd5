package alloc

import (
	"fmt"

	"github.com/mit-pdos/go-vdisk/buf"
	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/disk"
	"github.com/mit-pdos/go-vdisk/util"
)

// Bitmap is an allocation bitmap stored in one block of the device, one
// ASCII byte per entry: '0' for free, '1' for used. Entry 0 is the first byte
// of the block. The bitmap ends at the first byte that is neither '0' nor '1'
// (normally the NUL padding), so its length is read from disk rather than
// carried in memory.
//
// A Bitmap caches nothing; every call reads the block again.
type Bitmap struct {
	d     disk.Device
	start common.Bnum
	full  error // returned when nothing can be allocated
}

// MkInodeBitmap returns the bitmap of inode slots.
func MkInodeBitmap(d disk.Device) *Bitmap {
	return &Bitmap{d: d, start: common.INODEBITMAP, full: common.ErrNoInode}
}

// MkDataBitmap returns the bitmap of data blocks.
func MkDataBitmap(d disk.Device) *Bitmap {
	return &Bitmap{d: d, start: common.DATABITMAP, full: common.ErrNoSpace}
}

func (b *Bitmap) off() uint64 {
	return b.start * common.BlockSize
}

// load reads the bitmap block and returns its meaningful entries.
func (b *Bitmap) load() ([]byte, error) {
	blk := make([]byte, common.BlockSize)
	if _, err := b.d.ReadAt(blk, int64(b.off())); err != nil {
		return nil, common.IOErr(fmt.Sprintf("read bitmap %d", b.start), err)
	}
	n := 0
	for n < len(blk) && (blk[n] == common.BitFree || blk[n] == common.BitUsed) {
		n++
	}
	return blk[:n], nil
}

// Init writes a bitmap of n free entries, NUL padded to the block end.
func (b *Bitmap) Init(n uint64) error {
	if n > common.MaxBitmapEntries {
		return fmt.Errorf("bitmap of %d entries: %w", n, common.ErrInvalid)
	}
	blk := make([]byte, common.BlockSize)
	for i := uint64(0); i < n; i++ {
		blk[i] = common.BitFree
	}
	_, err := b.d.WriteAt(blk, int64(b.off()))
	return common.IOErr("init bitmap", err)
}

// Len returns the number of entries.
func (b *Bitmap) Len() (uint64, error) {
	bits, err := b.load()
	return uint64(len(bits)), err
}

// Used returns the indexes of used entries in ascending order.
func (b *Bitmap) Used() ([]uint64, error) {
	bits, err := b.load()
	if err != nil {
		return nil, err
	}
	var used []uint64
	for i, c := range bits {
		if c == common.BitUsed {
			used = append(used, uint64(i))
		}
	}
	return used, nil
}

// Bits returns a snapshot of the bitmap, true for used entries.
func (b *Bitmap) Bits() ([]bool, error) {
	bits, err := b.load()
	if err != nil {
		return nil, err
	}
	s := make([]bool, len(bits))
	for i, c := range bits {
		s[i] = c == common.BitUsed
	}
	return s, nil
}

// FindFree returns the first free entry.
func (b *Bitmap) FindFree() (uint64, error) {
	bits, err := b.load()
	if err != nil {
		return 0, err
	}
	for i, c := range bits {
		if c == common.BitFree {
			util.DPrintf(10, "FindFree: bitmap %d entry %d\n", b.start, i)
			return uint64(i), nil
		}
	}
	return 0, b.full
}

// FindRun returns the start of the first run of n consecutive free entries.
// The search is first-fit: no attempt is made to find a tighter run, and
// free entries split across shorter runs do not count.
func (b *Bitmap) FindRun(n uint64) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	bits, err := b.load()
	if err != nil {
		return 0, err
	}
	var start, run uint64
	for i, c := range bits {
		if c == common.BitUsed {
			run = 0
			continue
		}
		if run == 0 {
			start = uint64(i)
		}
		run++
		if run == n {
			util.DPrintf(10, "FindRun: %d entries at %d\n", n, start)
			return start, nil
		}
	}
	return 0, b.full
}

// SetRange marks count entries starting at start as used or free.
func (b *Bitmap) SetRange(start uint64, count uint64, used bool) error {
	if count == 0 {
		return nil
	}
	n, err := b.Len()
	if err != nil {
		return err
	}
	if util.SumOverflows(start, count) || start+count > n {
		return fmt.Errorf("bitmap %d: range [%d, %d) beyond %d entries: %w",
			b.start, start, start+count, n, common.ErrCorrupt)
	}
	v := common.BitFree
	if used {
		v = common.BitUsed
	}
	util.DPrintf(10, "SetRange: bitmap %d [%d, %d) = %c\n", b.start, start, start+count, v)
	return common.IOErr("write bitmap", buf.Fill(b.d, b.off()+start, v, count))
}

// Reset marks every entry free.
func (b *Bitmap) Reset() error {
	n, err := b.Len()
	if err != nil {
		return err
	}
	return b.SetRange(0, n, false)
}
