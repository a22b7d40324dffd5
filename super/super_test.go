package super

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/disk"
	"github.com/mit-pdos/go-vdisk/layout"
)

func mkHeader(t *testing.T, size uint64, name string) *Header {
	l, err := layout.Plan(size)
	require.NoError(t, err)
	h, err := MkHeader(l, name)
	require.NoError(t, err)
	return h
}

func TestHeaderReadWrite(t *testing.T) {
	d := disk.NewMemDevice(102400)
	h := mkHeader(t, 102400, "mvfs")
	require.NoError(t, h.Write(d))

	h2, err := Read(d)
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.Equal(t, "mvfs", h2.Label())
	assert.Equal(t, Info, h2.InfoString())
	assert.Equal(t, uint64(8*1024), h2.DataStart)
}

func TestHeaderFitsBlock(t *testing.T) {
	assert.LessOrEqual(t, hdrSize, common.BlockSize)
	blk := mkHeader(t, common.MinSize, "x").Encode()
	assert.Equal(t, int(common.BlockSize), len(blk))
	for _, b := range blk[hdrSize:] {
		assert.Equal(t, byte(0), b, "header block must be zero padded")
	}
}

func TestHeaderRejectsGarbage(t *testing.T) {
	d := disk.NewMemDevice(common.MinSize)
	d.WriteAt([]byte(strings.Repeat("not a disk ", 50)), 0)
	_, err := Read(d)
	assert.True(t, errors.Is(err, common.ErrCorrupt))
	assert.True(t, errors.Is(err, common.ErrIO))
}

func TestHeaderRejectsBadGeometry(t *testing.T) {
	h := mkHeader(t, 102400, "mvfs")
	h.DataBlocks++
	_, err := Decode(h.Encode())
	assert.True(t, errors.Is(err, common.ErrCorrupt))
}

func TestHeaderRejectsTruncatedDevice(t *testing.T) {
	h := mkHeader(t, 102400, "mvfs")
	d := disk.NewMemDevice(common.MinSize)
	require.NoError(t, h.Write(d))
	_, err := Read(d)
	assert.True(t, errors.Is(err, common.ErrCorrupt))
}

func TestLabels(t *testing.T) {
	assert.True(t, errors.Is(ValidLabel(""), common.ErrInvalid))
	assert.True(t, errors.Is(ValidLabel(strings.Repeat("a", int(common.NameLen))), common.ErrInvalid))
	assert.True(t, errors.Is(ValidLabel("a\x00b"), common.ErrInvalid))
	assert.NoError(t, ValidLabel(strings.Repeat("a", int(common.NameLen)-1)))

	h := mkHeader(t, 102400, "a-rather-long-disk-name")
	require.NoError(t, h.SetLabel("short"))
	assert.Equal(t, "short", h.Label())
	assert.Error(t, h.SetLabel(""))
	assert.Equal(t, "short", h.Label())
}
