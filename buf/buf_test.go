package buf

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/disk"
)

func data(sz int) []byte {
	d := make([]byte, sz)
	rand.Read(d)
	return d
}

func fill(d disk.Device, v byte) {
	b := bytes.Repeat([]byte{v}, int(d.Size()))
	d.WriteAt(b, 0)
}

func TestCopyInLeavesSlack(t *testing.T) {
	d := disk.NewMemDevice(4 * common.BlockSize)
	fill(d, 0xAA)

	src := data(1400)
	err := CopyIn(d, common.BlockSize, bytes.NewReader(src), 0, uint64(len(src)))
	require.NoError(t, err)

	got := make([]byte, 2*common.BlockSize)
	d.ReadAt(got, int64(common.BlockSize))
	assert.Equal(t, src, got[:1400])
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, int(2*common.BlockSize)-1400), got[1400:],
		"slack in the last block must be untouched")
}

func TestCopyInShortSource(t *testing.T) {
	d := disk.NewMemDevice(4 * common.BlockSize)
	err := CopyIn(d, 0, bytes.NewReader(data(100)), 0, 200)
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestCopyOut(t *testing.T) {
	d := disk.NewMemDevice(16 * common.BlockSize)
	src := data(5500)
	d.WriteAt(src, int64(3*common.BlockSize))

	var w bytes.Buffer
	require.NoError(t, CopyOut(&w, d, 3*common.BlockSize, 5500))
	assert.Equal(t, src, w.Bytes())

	w.Reset()
	require.NoError(t, CopyOut(&w, d, 0, 0))
	assert.Equal(t, 0, w.Len())
}

func TestZeroIsSized(t *testing.T) {
	d := disk.NewMemDevice(4 * common.BlockSize)
	fill(d, 0xFF)
	require.NoError(t, Zero(d, 10, common.BlockSize+5))

	got := make([]byte, d.Size())
	d.ReadAt(got, 0)
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 10), got[:10])
	assert.Equal(t, make([]byte, common.BlockSize+5), got[10:10+common.BlockSize+5])
	assert.Equal(t, byte(0xFF), got[15+common.BlockSize])
}

func TestFill(t *testing.T) {
	d := disk.NewMemDevice(common.BlockSize)
	require.NoError(t, Fill(d, 4, common.BitFree, 3))
	got := make([]byte, 8)
	d.ReadAt(got, 0)
	assert.Equal(t, []byte{0, 0, 0, 0, '0', '0', '0', 0}, got)
}
