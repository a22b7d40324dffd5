package vfs

import (
	"path/filepath"

	"github.com/mit-pdos/go-vdisk/lockmap"
)

// Guard serializes access to virtual disks by host path, so that at most one
// caller in this process operates on a given disk at a time. It does not
// protect against other processes.
type Guard struct {
	locks *lockmap.LockMap
	opts  Options
}

func NewGuard(opts Options) *Guard {
	return &Guard{locks: lockmap.MkLockMap(), opts: opts}
}

func key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Do opens the disk at path, runs f on it and closes it, holding the path's
// lock throughout.
func (g *Guard) Do(path string, f func(*Disk) error) error {
	k := key(path)
	g.locks.Acquire(k)
	defer g.locks.Release(k)

	fs, err := Open(path, g.opts)
	if err != nil {
		return err
	}
	if err := f(fs); err != nil {
		fs.Close()
		return err
	}
	return fs.Close()
}
