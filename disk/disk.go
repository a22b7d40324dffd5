// Package disk provides the raw random-access storage a virtual disk lives
// in: a fixed-size run of bytes that can be read and written at any offset.
//
// Two implementations exist. FileDevice is the host file itself, accessed
// with pread/pwrite. MemDevice keeps the bytes in an in-memory goose disk and
// is used for tests and scratch disks.
package disk

import (
	"errors"
	"io"
)

// ErrOutOfBounds is returned by WriteAt when a write would extend past the
// end of the device. Devices never grow.
var ErrOutOfBounds = errors.New("disk: write out of bounds")

// Device is a fixed-size, byte-addressed backing store.
type Device interface {
	io.ReaderAt
	io.WriterAt

	// Size reports how big the device is, in bytes
	Size() uint64

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the device and makes it unusable.
	Close() error
}

// clamp trims p so that [off, off+len(p)) lies within a device of size sz.
// The boolean reports whether p was shortened.
func clamp(p []byte, off int64, sz uint64) ([]byte, bool, error) {
	if off < 0 {
		return nil, false, errors.New("disk: negative offset")
	}
	if uint64(off) >= sz {
		return p[:0], len(p) > 0, nil
	}
	max := sz - uint64(off)
	if uint64(len(p)) > max {
		return p[:max], true, nil
	}
	return p, false, nil
}
