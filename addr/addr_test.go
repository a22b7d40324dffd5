package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-vdisk/common"
)

func TestFlatid(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint64(0), MkAddr(0, 0).Flatid())
	assert.Equal(common.BlockSize+10, MkAddr(1, 10).Flatid())
}

func TestSlotAddr(t *testing.T) {
	assert := assert.New(t)
	a := MkSlotAddr(common.SysBlocks, 0, common.InodeSize)
	assert.Equal(common.SysBlocks*common.BlockSize, a.Flatid())

	a = MkSlotAddr(common.SysBlocks, common.InodesPerBlock+1, common.InodeSize)
	assert.Equal(common.SysBlocks+1, a.Blkno)
	assert.Equal(common.InodeSize, a.Off)
	assert.Equal((common.SysBlocks+1)*common.BlockSize+common.InodeSize, a.Flatid())
}

func TestBlockAddr(t *testing.T) {
	base := 8 * common.BlockSize
	assert.Equal(t, base+3*common.BlockSize, MkBlockAddr(base, 3).Flatid())
}
