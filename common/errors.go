package common

import (
	"errors"
	"fmt"
)

var (
	ErrInvalid   = errors.New("invalid argument")
	ErrExists    = errors.New("file exists")
	ErrNotFound  = errors.New("no such file")
	ErrExhausted = errors.New("resource exhausted")
	ErrIO        = errors.New("i/o error")

	ErrNoInode = fmt.Errorf("%w: no free inode", ErrExhausted)
	ErrNoSpace = fmt.Errorf("%w: no contiguous run of free blocks", ErrExhausted)
	ErrCorrupt = fmt.Errorf("%w: not a virtual disk or corrupt metadata", ErrIO)
)

// IOErr tags a host-side failure with ErrIO, keeping the cause inspectable.
func IOErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrIO) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
