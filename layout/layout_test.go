package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-vdisk/common"
)

func TestPlanBounds(t *testing.T) {
	_, err := Plan(common.MinSize - 1)
	assert.True(t, errors.Is(err, common.ErrInvalid))
	_, err = Plan(common.MaxSize + 1)
	assert.True(t, errors.Is(err, common.ErrInvalid))
	_, err = Plan(0)
	assert.True(t, errors.Is(err, common.ErrInvalid))

	_, err = Plan(common.MinSize)
	assert.NoError(t, err)
	_, err = Plan(common.MaxSize)
	assert.NoError(t, err)
}

func TestPlan100K(t *testing.T) {
	l, err := Plan(102400)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), l.TotalBlocks)
	assert.Equal(t, uint64(5), l.InodeBlocks)
	assert.Equal(t, uint64(92), l.DataBlocks)
	assert.Equal(t, uint64(3*1024), l.InodeStart)
	assert.Equal(t, uint64(8*1024), l.DataStart)
	assert.Equal(t, uint64(80), l.Slots())
}

func TestPlanSmallest(t *testing.T) {
	l, err := Plan(common.MinSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), l.InodeBlocks)
	assert.Equal(t, uint64(1), l.DataBlocks)
	assert.Equal(t, uint64(1), l.Slots(), "slots are capped at data blocks")
}

func TestPlanLargest(t *testing.T) {
	l, err := Plan(common.MaxSize)
	require.NoError(t, err)
	assert.Equal(t, common.MaxBitmapEntries, l.DataBlocks)
	assert.Equal(t, common.MaxBitmapEntries, l.Slots())
}

func TestPlanUnaligned(t *testing.T) {
	l, err := Plan(102400 + 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), l.TotalBlocks)
	assert.Equal(t, uint64(102400), l.Used())
}

func TestPlanInvariants(t *testing.T) {
	for size := common.MinSize; size <= common.MaxSize; size += 337 {
		l, err := Plan(size)
		require.NoError(t, err)
		assert.Equal(t, l.TotalBlocks, l.InodeBlocks+l.DataBlocks+common.SysBlocks, "size %d", size)
		assert.Equal(t, l.InodeBlocks*common.BlockSize, l.DataStart-l.InodeStart, "size %d", size)
		assert.Equal(t, common.SysBlocks*common.BlockSize, l.InodeStart)
		assert.LessOrEqual(t, l.Slots(), l.DataBlocks, "size %d", size)
		assert.LessOrEqual(t, l.DataBlocks, common.MaxBitmapEntries, "size %d", size)
		assert.LessOrEqual(t, l.Used(), size)
		assert.GreaterOrEqual(t, l.InodeBlocks, uint64(1))
	}
}
