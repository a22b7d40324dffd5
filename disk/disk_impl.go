package disk

import (
	"io"
	"io/fs"

	mdisk "github.com/tchajed/goose/machine/disk"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-vdisk/util"
)

var _ Device = (*FileDevice)(nil)

// FileDevice is a host file accessed through its file descriptor.
type FileDevice struct {
	fd   int
	size uint64
}

// CreateFileDevice creates (or truncates) path and sizes it to exactly size
// bytes, all zero.
func CreateFileDevice(path string, size uint64) (*FileDevice, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, 0666)
	if err != nil {
		return nil, &fs.PathError{Op: "create", Path: path, Err: err}
	}
	err = unix.Ftruncate(fd, int64(size))
	if err != nil {
		unix.Close(fd)
		return nil, &fs.PathError{Op: "truncate", Path: path, Err: err}
	}
	return &FileDevice{fd: fd, size: size}, nil
}

// OpenFileDevice opens an existing host file. Its current length is the
// device size.
func OpenFileDevice(path string, readOnly bool) (*FileDevice, error) {
	flags := unix.O_RDWR | unix.O_CLOEXEC
	if readOnly {
		flags = unix.O_RDONLY | unix.O_CLOEXEC
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return &FileDevice{fd: fd, size: uint64(stat.Size)}, nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	p, short, err := clamp(p, off, d.size)
	if err != nil {
		return 0, err
	}
	var n int
	for n < len(p) {
		m, err := unix.Pread(d.fd, p[n:], off+int64(n))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return n, err
		}
		if m == 0 {
			// the host file shrank underneath us
			return n, io.ErrUnexpectedEOF
		}
		n += m
	}
	if short {
		return n, io.EOF
	}
	return n, nil
}

func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) {
	p, short, err := clamp(p, off, d.size)
	if err != nil {
		return 0, err
	}
	var n int
	for n < len(p) {
		m, err := unix.Pwrite(d.fd, p[n:], off+int64(n))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return n, err
		}
		n += m
	}
	if short {
		return n, ErrOutOfBounds
	}
	return n, nil
}

func (d *FileDevice) Size() uint64 {
	return d.size
}

func (d *FileDevice) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details.
	return unix.Fsync(d.fd)
}

func (d *FileDevice) Close() error {
	return unix.Close(d.fd)
}

/////////////////////////
/////////////////////////

var _ Device = (*MemDevice)(nil)

// MemDevice stores a device's bytes in an in-memory goose disk. The goose
// disk is block-granular, so partial-block accesses read-modify-write the
// underlying block.
type MemDevice struct {
	d    mdisk.Disk
	size uint64
}

func NewMemDevice(size uint64) *MemDevice {
	numBlocks := util.RoundUp(size, mdisk.BlockSize)
	return &MemDevice{d: mdisk.NewMemDisk(numBlocks), size: size}
}

func (d *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	p, short, err := clamp(p, off, d.size)
	if err != nil {
		return 0, err
	}
	var n int
	for n < len(p) {
		pos := uint64(off) + uint64(n)
		blk := d.d.Read(pos / mdisk.BlockSize)
		n += copy(p[n:], blk[pos%mdisk.BlockSize:])
	}
	if short {
		return n, io.EOF
	}
	return n, nil
}

func (d *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	p, short, err := clamp(p, off, d.size)
	if err != nil {
		return 0, err
	}
	var n int
	for n < len(p) {
		pos := uint64(off) + uint64(n)
		a := pos / mdisk.BlockSize
		blk := d.d.Read(a)
		n += copy(blk[pos%mdisk.BlockSize:], p[n:])
		d.d.Write(a, blk)
	}
	if short {
		return n, ErrOutOfBounds
	}
	return n, nil
}

func (d *MemDevice) Size() uint64 {
	return d.size
}

func (d *MemDevice) Barrier() error {
	d.d.Barrier()
	return nil
}

func (d *MemDevice) Close() error {
	d.d.Close()
	return nil
}
