// Package vfs is the file operations engine of a virtual disk: it creates
// disks and imports, exports, lists and removes files inside them.
//
// A Disk holds only an open device and its options. Every operation reads
// the header, bitmaps and inode table afresh and writes its changes back
// before returning. Operations are not atomic: an import sets the inode bit,
// then the data bits, then writes the record, then copies the bytes, and an
// interruption between those steps leaves the metadata inconsistent. There is
// no journal and no rollback.
//
// A Disk must not be used by more than one goroutine at a time, and a host
// file must not be opened by more than one writer at a time. Guard provides
// the external serialization for callers that need it.
package vfs

import (
	"fmt"

	"github.com/mit-pdos/go-vdisk/addr"
	"github.com/mit-pdos/go-vdisk/alloc"
	"github.com/mit-pdos/go-vdisk/buf"
	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/disk"
	"github.com/mit-pdos/go-vdisk/inode"
	"github.com/mit-pdos/go-vdisk/layout"
	"github.com/mit-pdos/go-vdisk/super"
	"github.com/mit-pdos/go-vdisk/util"
)

type Options struct {
	// SecureErase zeroes inode records and file data before they are
	// released. Without it, remove and erase only flip bitmap entries.
	SecureErase bool

	// ReadOnly opens the host file read-only; mutating operations fail.
	ReadOnly bool
}

func DefaultOptions() Options {
	return Options{SecureErase: true}
}

type Disk struct {
	d    disk.Device
	opts Options
}

// Create creates the host file at path as a virtual disk of size bytes
// labelled name. An existing file at path is truncated.
func Create(path string, size uint64, name string) (*super.Header, error) {
	l, err := layout.Plan(size)
	if err != nil {
		return nil, err
	}
	h, err := super.MkHeader(l, name)
	if err != nil {
		return nil, err
	}
	d, err := disk.CreateFileDevice(path, size)
	if err != nil {
		return nil, common.IOErr("create", err)
	}
	if err := format(d, h); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.Barrier(); err != nil {
		d.Close()
		return nil, common.IOErr("create", err)
	}
	return h, common.IOErr("create", d.Close())
}

// Format lays out a virtual disk labelled name over all of d.
func Format(d disk.Device, name string) (*super.Header, error) {
	l, err := layout.Plan(d.Size())
	if err != nil {
		return nil, err
	}
	h, err := super.MkHeader(l, name)
	if err != nil {
		return nil, err
	}
	return h, format(d, h)
}

func format(d disk.Device, h *super.Header) error {
	l := h.Layout()
	util.DPrintf(1, "format: %q %d bytes\n", h.Label(), l.Size)
	if err := h.Write(d); err != nil {
		return err
	}
	if err := alloc.MkInodeBitmap(d).Init(l.Slots()); err != nil {
		return err
	}
	if err := alloc.MkDataBitmap(d).Init(l.DataBlocks); err != nil {
		return err
	}
	// inode table, data region and any trailing partial block
	err := buf.Zero(d, l.InodeStart, l.Size-l.InodeStart)
	return common.IOErr("zero regions", err)
}

// Open opens the virtual disk stored in the host file at path.
func Open(path string, opts Options) (*Disk, error) {
	d, err := disk.OpenFileDevice(path, opts.ReadOnly)
	if err != nil {
		return nil, common.IOErr("open", err)
	}
	fs, err := Mount(d, opts)
	if err != nil {
		d.Close()
		return nil, err
	}
	return fs, nil
}

// Mount checks that d holds a virtual disk and returns a Disk over it.
func Mount(d disk.Device, opts Options) (*Disk, error) {
	if _, err := super.Read(d); err != nil {
		return nil, err
	}
	return &Disk{d: d, opts: opts}, nil
}

// Close flushes and closes the underlying device.
func (fs *Disk) Close() error {
	if !fs.opts.ReadOnly {
		if err := fs.d.Barrier(); err != nil {
			fs.d.Close()
			return common.IOErr("sync", err)
		}
	}
	return common.IOErr("close", fs.d.Close())
}

// view is the on-disk state an operation works against, rebuilt for every
// operation from the header.
type view struct {
	hdr  *super.Header
	imap *alloc.Bitmap
	dmap *alloc.Bitmap
	tbl  *inode.Table
}

func (fs *Disk) view() (*view, error) {
	hdr, err := super.Read(fs.d)
	if err != nil {
		return nil, err
	}
	return &view{
		hdr:  hdr,
		imap: alloc.MkInodeBitmap(fs.d),
		dmap: alloc.MkDataBitmap(fs.d),
		tbl:  inode.MkTable(fs.d, hdr.InodeStart, hdr.Layout().Slots()),
	}, nil
}

// dataOff is the byte offset of data block bn.
func (v *view) dataOff(bn common.Bnum) uint64 {
	return addr.MkBlockAddr(v.hdr.DataStart, bn).Flatid()
}

// files returns the active inodes in ascending slot order.
func (v *view) files() ([]*inode.Inode, error) {
	used, err := v.imap.Used()
	if err != nil {
		return nil, err
	}
	return v.tbl.ReadAll(used)
}

func (v *view) lookup(name string) (*inode.Inode, error) {
	if err := inode.ValidName(name); err != nil {
		return nil, err
	}
	ips, err := v.files()
	if err != nil {
		return nil, err
	}
	ip, ok := inode.Lookup(ips, name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, common.ErrNotFound)
	}
	return ip, nil
}

func (fs *Disk) find(name string) (*view, *inode.Inode, error) {
	v, err := fs.view()
	if err != nil {
		return nil, nil, err
	}
	ip, err := v.lookup(name)
	if err != nil {
		return nil, nil, err
	}
	return v, ip, nil
}
