// Package super reads and writes the virtual disk header, the first block
// of every disk.
package super

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/disk"
	"github.com/mit-pdos/go-vdisk/layout"
	"github.com/mit-pdos/go-vdisk/util"
)

// Magic identifies a virtual disk; it reads "_FTVDISK" on disk.
const Magic uint64 = 0x4b5349445654465f

const Info = "Virtual File System Structure:\n" +
	"[S][i][d][I][I][I]..[D][D][D]..\n" +
	"[S] - superblock\n" +
	"[i] - inodes alloc bitmap\n" +
	"[d] - data alloc bitmap\n" +
	"[I] - inodes block\n" +
	"[D] - data block"

const (
	nints   uint64 = 7 // magic and six geometry fields
	nameOff        = nints * 8
	uuidOff        = nameOff + common.NameLen
	infoOff        = uuidOff + common.UUIDSize
	hdrSize        = infoOff + common.InfoSize
)

type Header struct {
	Name        [common.NameLen]byte
	UUID        uuid.UUID
	Info        [common.InfoSize]byte
	Size        uint64
	TotalBlocks uint64
	InodeStart  uint64
	DataStart   uint64
	InodeBlocks uint64
	DataBlocks  uint64
}

// MkHeader builds the header for a freshly planned disk.
func MkHeader(l layout.Layout, name string) (*Header, error) {
	if err := ValidLabel(name); err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	h := &Header{
		UUID:        id,
		Size:        l.Size,
		TotalBlocks: l.TotalBlocks,
		InodeStart:  l.InodeStart,
		DataStart:   l.DataStart,
		InodeBlocks: l.InodeBlocks,
		DataBlocks:  l.DataBlocks,
	}
	copy(h.Name[:], name)
	copy(h.Info[:], Info)
	return h, nil
}

// ValidLabel checks that name fits the header's name field with room for a
// terminating NUL.
func ValidLabel(name string) error {
	if name == "" || uint64(len(name)) >= common.NameLen || bytes.IndexByte([]byte(name), 0) >= 0 {
		return fmt.Errorf("disk name %q: %w", name, common.ErrInvalid)
	}
	return nil
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func (h *Header) Label() string {
	return cstring(h.Name[:])
}

func (h *Header) InfoString() string {
	return cstring(h.Info[:])
}

func (h *Header) SetLabel(name string) error {
	if err := ValidLabel(name); err != nil {
		return err
	}
	h.Name = [common.NameLen]byte{}
	copy(h.Name[:], name)
	return nil
}

// Layout recovers the region layout recorded in the header.
func (h *Header) Layout() layout.Layout {
	return layout.Layout{
		Size:        h.Size,
		TotalBlocks: h.TotalBlocks,
		InodeStart:  h.InodeStart,
		DataStart:   h.DataStart,
		InodeBlocks: h.InodeBlocks,
		DataBlocks:  h.DataBlocks,
	}
}

// Encode returns the full header block, zero padded.
func (h *Header) Encode() []byte {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt(Magic)
	enc.PutInt(h.Size)
	enc.PutInt(h.TotalBlocks)
	enc.PutInt(h.InodeStart)
	enc.PutInt(h.DataStart)
	enc.PutInt(h.InodeBlocks)
	enc.PutInt(h.DataBlocks)
	blk := enc.Finish()
	copy(blk[nameOff:], h.Name[:])
	copy(blk[uuidOff:], h.UUID[:])
	copy(blk[infoOff:], h.Info[:])
	return blk
}

// Decode parses a header block and checks it describes a well-formed disk.
func Decode(blk []byte) (*Header, error) {
	if uint64(len(blk)) < hdrSize {
		return nil, common.ErrCorrupt
	}
	dec := marshal.NewDec(blk)
	if dec.GetInt() != Magic {
		return nil, common.ErrCorrupt
	}
	h := &Header{}
	h.Size = dec.GetInt()
	h.TotalBlocks = dec.GetInt()
	h.InodeStart = dec.GetInt()
	h.DataStart = dec.GetInt()
	h.InodeBlocks = dec.GetInt()
	h.DataBlocks = dec.GetInt()
	copy(h.Name[:], blk[nameOff:uuidOff])
	copy(h.UUID[:], blk[uuidOff:infoOff])
	copy(h.Info[:], blk[infoOff:hdrSize])
	if err := h.check(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Header) check() error {
	want, err := layout.Plan(h.Size)
	if err != nil || want != h.Layout() {
		return common.ErrCorrupt
	}
	return nil
}

// Read loads the header from block 0 of d.
func Read(d disk.Device) (*Header, error) {
	blk := make([]byte, common.BlockSize)
	if _, err := d.ReadAt(blk, 0); err != nil {
		return nil, common.IOErr("read header", err)
	}
	h, err := Decode(blk)
	if err != nil {
		return nil, err
	}
	if d.Size() < h.Size {
		util.DPrintf(1, "Read: device %d bytes shorter than disk %d\n", d.Size(), h.Size)
		return nil, common.ErrCorrupt
	}
	return h, nil
}

// Write stores the header into block 0 of d.
func (h *Header) Write(d disk.Device) error {
	_, err := d.WriteAt(h.Encode(), 0)
	return common.IOErr("write header", err)
}
