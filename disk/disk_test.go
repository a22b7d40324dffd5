package disk

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type op interface {
	Do(*testing.T, Device)
}

type writeOp struct {
	data []byte
	off  int64

	expN   int
	expErr error
}

func (op writeOp) Do(t *testing.T, d Device) {
	r := require.New(t)
	n, err := d.WriteAt(op.data, op.off)
	r.Equal(op.expN, n)
	r.Equal(op.expErr, err)
}

type readOp struct {
	off     int64
	readlen int

	exp    []byte
	expErr error
}

func (op readOp) Do(t *testing.T, d Device) {
	r := require.New(t)
	if op.readlen == 0 {
		op.readlen = len(op.exp)
	}
	buf := make([]byte, op.readlen)
	n, err := d.ReadAt(buf, op.off)
	r.Equal(op.expErr, err)
	r.Equal(len(op.exp), n)
	r.True(bytes.Equal(op.exp, buf[:n]), "read %q, expected %q", buf[:n], op.exp)
}

func TestDevice(t *testing.T) {
	type testcase struct {
		name string
		size uint64
		ops  []op
	}

	mktest := func(tc testcase) func(*testing.T) {
		return func(t *testing.T) {
			// in-memory device
			var d Device = NewMemDevice(tc.size)
			for _, op := range tc.ops {
				op.Do(t, d)
				t.Logf("ok: %T", op)
			}
			require.NoError(t, d.Close())

			// host file device
			fd, err := CreateFileDevice(filepath.Join(t.TempDir(), "dev"), tc.size)
			require.NoError(t, err)
			for _, op := range tc.ops {
				op.Do(t, fd)
				t.Logf("ok: %T", op)
			}
			require.NoError(t, fd.Barrier())
			require.NoError(t, fd.Close())
		}
	}

	var tcs = []testcase{
		{
			name: "fresh device reads zero",
			size: 5000,
			ops: []op{
				readOp{off: 4090, exp: make([]byte, 10)},
			},
		},
		{
			name: "set then get",
			size: 5000,
			ops: []op{
				writeOp{data: []byte("test"), off: 0, expN: 4},
				readOp{off: 0, exp: []byte("test")},
			},
		},
		{
			name: "write across goose block boundary",
			size: 9000,
			ops: []op{
				writeOp{data: []byte("boundary"), off: 4092, expN: 8},
				readOp{off: 4092, exp: []byte("boundary")},
				readOp{off: 4094, exp: []byte("und")},
			},
		},
		{
			name: "write over device end",
			size: 1 << 10,
			ops: []op{
				writeOp{data: []byte("test"), off: (1 << 10) - 2, expN: 2, expErr: ErrOutOfBounds},
				readOp{off: (1 << 10) - 2, readlen: 4, exp: []byte("te"), expErr: io.EOF},
			},
		},
		{
			name: "access after device end",
			size: 1 << 10,
			ops: []op{
				writeOp{data: []byte("test"), off: (1 << 10) + 2, expN: 0, expErr: ErrOutOfBounds},
				readOp{off: (1 << 10) + 2, readlen: 4, exp: []byte{}, expErr: io.EOF},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, mktest(tc))
	}
}

func TestOpenFileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev")
	d, err := CreateFileDevice(path, 5120)
	require.NoError(t, err)
	_, err = d.WriteAt([]byte("persisted"), 1024)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = OpenFileDevice(path, true)
	require.NoError(t, err)
	defer d.Close()
	require.Equal(t, uint64(5120), d.Size())

	buf := make([]byte, 9)
	_, err = d.ReadAt(buf, 1024)
	require.NoError(t, err)
	require.Equal(t, []byte("persisted"), buf)

	_, err = d.WriteAt([]byte("x"), 0)
	require.Error(t, err, "read-only device must reject writes")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := OpenFileDevice(filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)
	var perr *fs.PathError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "open", perr.Op)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestCreateFileDeviceBadPath(t *testing.T) {
	_, err := CreateFileDevice(filepath.Join(t.TempDir(), "nodir", "dev"), 5120)
	var perr *fs.PathError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "create", perr.Op)
}
