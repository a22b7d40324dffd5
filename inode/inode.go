// Package inode implements the inode table: a fixed-capacity array of file
// records addressed by slot number. Whether a slot is live is decided only by
// the inode bitmap; the table itself has no free list and no links.
package inode

import (
	"bytes"
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vdisk/addr"
	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/disk"
	"github.com/mit-pdos/go-vdisk/util"
)

const nameOff uint64 = 3 * 8

// Inode is one file record. Inum is the slot the record was read from and
// is not stored.
type Inode struct {
	Inum   common.Inum
	Size   uint64 // bytes
	Blocks uint64 // data blocks, ceil(Size/BlockSize)
	Begin  common.Bnum
	Name   [common.NameLen]byte
}

// MkInode returns the record for a file of sz bytes stored at data block
// begin. The name must already be valid.
func MkInode(name string, sz uint64, begin common.Bnum) *Inode {
	ip := &Inode{
		Size:   sz,
		Blocks: util.RoundUp(sz, common.BlockSize),
		Begin:  begin,
	}
	copy(ip.Name[:], name)
	return ip
}

func (ip *Inode) NameString() string {
	if i := bytes.IndexByte(ip.Name[:], 0); i >= 0 {
		return string(ip.Name[:i])
	}
	return string(ip.Name[:])
}

// SizeOnDisk is the space the file's blocks occupy.
func (ip *Inode) SizeOnDisk() uint64 {
	return ip.Blocks * common.BlockSize
}

// LastBlockBytes is the number of bytes of the final block that belong to
// the file.
func (ip *Inode) LastBlockBytes() uint64 {
	if ip.Size%common.BlockSize != 0 {
		return ip.Size % common.BlockSize
	}
	return util.Min(ip.Size, common.BlockSize)
}

func (ip *Inode) String() string {
	return fmt.Sprintf("inode %d %q size %d blocks [%d, %d)",
		ip.Inum, ip.NameString(), ip.Size, ip.Begin, ip.Begin+ip.Blocks)
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.InodeSize)
	enc.PutInt(ip.Size)
	enc.PutInt(ip.Blocks)
	enc.PutInt(ip.Begin)
	data := enc.Finish()
	copy(data[nameOff:], ip.Name[:])
	return data
}

func Decode(data []byte, inum common.Inum) *Inode {
	dec := marshal.NewDec(data)
	ip := &Inode{Inum: inum}
	ip.Size = dec.GetInt()
	ip.Blocks = dec.GetInt()
	ip.Begin = dec.GetInt()
	copy(ip.Name[:], data[nameOff:nameOff+common.NameLen])
	return ip
}

// ValidName checks that a file name fits the name field with room for a
// terminating NUL.
func ValidName(name string) error {
	if name == "" || uint64(len(name)) >= common.NameLen || bytes.IndexByte([]byte(name), 0) >= 0 {
		return fmt.Errorf("file name %q: %w", name, common.ErrInvalid)
	}
	return nil
}

// SameName compares two NUL-padded name fields byte by byte. They match if
// every byte agrees up to and including the first NUL, or across the whole
// field.
func SameName(a []byte, b []byte) bool {
	for i := uint64(0); i < common.NameLen; i++ {
		var ca, cb byte
		if i < uint64(len(a)) {
			ca = a[i]
		}
		if i < uint64(len(b)) {
			cb = b[i]
		}
		if ca != cb {
			return false
		}
		if ca == 0 {
			return true
		}
	}
	return true
}

// Table is the inode region of a disk.
type Table struct {
	d     disk.Device
	start common.Bnum
	nslot uint64
}

// MkTable returns the table at byte offset inodeStart with nslot usable
// slots.
func MkTable(d disk.Device, inodeStart uint64, nslot uint64) *Table {
	return &Table{
		d:     d,
		start: inodeStart / common.BlockSize,
		nslot: nslot,
	}
}

func (t *Table) Slots() uint64 {
	return t.nslot
}

func (t *Table) addr(inum common.Inum) (addr.Addr, error) {
	if uint64(inum) >= t.nslot {
		return addr.Addr{}, fmt.Errorf("inode %d of %d: %w", inum, t.nslot, common.ErrCorrupt)
	}
	return addr.MkSlotAddr(t.start, uint64(inum), common.InodeSize), nil
}

func (t *Table) Read(inum common.Inum) (*Inode, error) {
	a, err := t.addr(inum)
	if err != nil {
		return nil, err
	}
	data := make([]byte, common.InodeSize)
	if _, err := t.d.ReadAt(data, int64(a.Flatid())); err != nil {
		return nil, common.IOErr("read inode", err)
	}
	return Decode(data, inum), nil
}

func (t *Table) Write(inum common.Inum, ip *Inode) error {
	a, err := t.addr(inum)
	if err != nil {
		return err
	}
	util.DPrintf(5, "Write: %v\n", ip)
	_, err = t.d.WriteAt(ip.Encode(), int64(a.Flatid()))
	return common.IOErr("write inode", err)
}

// Zero overwrites the record in slot inum with zeros.
func (t *Table) Zero(inum common.Inum) error {
	a, err := t.addr(inum)
	if err != nil {
		return err
	}
	_, err = t.d.WriteAt(make([]byte, common.InodeSize), int64(a.Flatid()))
	return common.IOErr("zero inode", err)
}

// ReadAll reads the records of the given slots, in order.
func (t *Table) ReadAll(inums []uint64) ([]*Inode, error) {
	ips := make([]*Inode, 0, len(inums))
	for _, n := range inums {
		ip, err := t.Read(common.Inum(n))
		if err != nil {
			return nil, err
		}
		ips = append(ips, ip)
	}
	return ips, nil
}

// Lookup returns the record among ips whose name matches name.
func Lookup(ips []*Inode, name string) (*Inode, bool) {
	var key [common.NameLen]byte
	copy(key[:], name)
	for _, ip := range ips {
		if SameName(ip.Name[:], key[:]) {
			return ip, true
		}
	}
	return nil, false
}
