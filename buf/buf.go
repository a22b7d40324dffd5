// Package buf moves file bytes between host streams and a device one block
// at a time. Every primitive is parameterized by an exact byte count: the
// final, partial block of a transfer touches only the bytes that belong to
// the file, never the slack behind them.
package buf

import (
	"io"

	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/util"
)

// A Buf is one block-sized staging buffer.
type Buf struct {
	Data []byte
}

func MkBuf() *Buf {
	return &Buf{Data: make([]byte, common.BlockSize)}
}

// chunk returns the part of the buffer used for the block that starts at
// byte done of a sz-byte transfer.
func (b *Buf) chunk(done uint64, sz uint64) []byte {
	return b.Data[:util.Min(common.BlockSize, sz-done)]
}

// readFull fills p from src at off. A reader may report io.EOF together with
// a full read at the very end of its data; only a short read is an error.
func readFull(src io.ReaderAt, p []byte, off uint64) error {
	n, err := src.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// CopyIn copies sz bytes from src (starting at srcOff) to dst at dstOff.
func CopyIn(dst io.WriterAt, dstOff uint64, src io.ReaderAt, srcOff uint64, sz uint64) error {
	b := MkBuf()
	for done := uint64(0); done < sz; {
		c := b.chunk(done, sz)
		if err := readFull(src, c, srcOff+done); err != nil {
			return err
		}
		if _, err := dst.WriteAt(c, int64(dstOff+done)); err != nil {
			return err
		}
		util.DPrintf(15, "CopyIn: %d bytes at %d\n", len(c), dstOff+done)
		done += uint64(len(c))
	}
	return nil
}

// CopyOut writes sz bytes of src, starting at srcOff, to w.
func CopyOut(w io.Writer, src io.ReaderAt, srcOff uint64, sz uint64) error {
	b := MkBuf()
	for done := uint64(0); done < sz; {
		c := b.chunk(done, sz)
		if err := readFull(src, c, srcOff+done); err != nil {
			return err
		}
		if _, err := w.Write(c); err != nil {
			return err
		}
		util.DPrintf(15, "CopyOut: %d bytes from %d\n", len(c), srcOff+done)
		done += uint64(len(c))
	}
	return nil
}

// Zero overwrites sz bytes of dst, starting at off, with zeros.
func Zero(dst io.WriterAt, off uint64, sz uint64) error {
	b := MkBuf()
	for done := uint64(0); done < sz; {
		c := b.chunk(done, sz)
		if _, err := dst.WriteAt(c, int64(off+done)); err != nil {
			return err
		}
		done += uint64(len(c))
	}
	return nil
}

// Fill writes n copies of v at off.
func Fill(dst io.WriterAt, off uint64, v byte, n uint64) error {
	data := make([]byte, n)
	for i := range data {
		data[i] = v
	}
	_, err := dst.WriteAt(data, int64(off))
	return err
}
