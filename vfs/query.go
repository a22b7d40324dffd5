package vfs

import (
	"github.com/mit-pdos/go-vdisk/super"
	"github.com/mit-pdos/go-vdisk/util"
)

// Map is a read-only snapshot of a disk's header and allocation bitmaps.
type Map struct {
	Header *super.Header
	Inodes []bool // inode slot bitmap, true if used
	Data   []bool // data block bitmap, true if used
}

func (fs *Disk) Map() (*Map, error) {
	v, err := fs.view()
	if err != nil {
		return nil, err
	}
	inodes, err := v.imap.Bits()
	if err != nil {
		return nil, err
	}
	data, err := v.dmap.Bits()
	if err != nil {
		return nil, err
	}
	return &Map{Header: v.hdr, Inodes: inodes, Data: data}, nil
}

func (fs *Disk) Header() (*super.Header, error) {
	return super.Read(fs.d)
}

// Relabel changes the disk's name; nothing else in the header changes.
func (fs *Disk) Relabel(name string) error {
	h, err := super.Read(fs.d)
	if err != nil {
		return err
	}
	if err := h.SetLabel(name); err != nil {
		return err
	}
	util.DPrintf(1, "relabel: %q\n", name)
	return h.Write(fs.d)
}
