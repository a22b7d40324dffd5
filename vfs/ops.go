package vfs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/mit-pdos/go-vdisk/buf"
	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/inode"
	"github.com/mit-pdos/go-vdisk/util"
)

// Import stores data as a new file called name.
func (fs *Disk) Import(name string, data []byte) error {
	return fs.ImportFrom(name, bytes.NewReader(data), uint64(len(data)))
}

// ImportFile stores the host file at src under its base name.
func (fs *Disk) ImportFile(src string) error {
	return fs.ImportFileAs(src, filepath.Base(src))
}

// ImportFileAs stores the host file at src as a new file called name.
func (fs *Disk) ImportFileAs(src string, name string) error {
	if err := inode.ValidName(name); err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return common.IOErr("import", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return common.IOErr("import", err)
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("import %s: not a regular file: %w", src, common.ErrInvalid)
	}
	return fs.ImportFrom(name, f, uint64(st.Size()))
}

// ImportFrom stores the first sz bytes of src as a new file called name.
//
// The file occupies one inode slot and the first run of ceil(sz/BlockSize)
// free data blocks. A free slot is claimed before a run is searched for, but
// nothing is written until both are found, so a full disk never leaks a slot.
func (fs *Disk) ImportFrom(name string, src io.ReaderAt, sz uint64) error {
	if err := inode.ValidName(name); err != nil {
		return err
	}
	v, err := fs.view()
	if err != nil {
		return err
	}
	ips, err := v.files()
	if err != nil {
		return err
	}
	if _, ok := inode.Lookup(ips, name); ok {
		return fmt.Errorf("import %q: %w", name, common.ErrExists)
	}

	inum, err := v.imap.FindFree()
	if err != nil {
		return fmt.Errorf("import %q: %w", name, err)
	}
	if sz > v.hdr.DataBlocks*common.BlockSize {
		return fmt.Errorf("import %q: %d bytes: %w", name, sz, common.ErrNoSpace)
	}
	blocks := util.RoundUp(sz, common.BlockSize)
	begin, err := v.dmap.FindRun(blocks)
	if err != nil {
		return fmt.Errorf("import %q: %d blocks: %w", name, blocks, err)
	}

	ip := inode.MkInode(name, sz, begin)
	ip.Inum = common.Inum(inum)
	util.DPrintf(1, "import: %v\n", ip)
	if err := v.imap.SetRange(inum, 1, true); err != nil {
		return err
	}
	if err := v.dmap.SetRange(begin, blocks, true); err != nil {
		return err
	}
	if err := v.tbl.Write(ip.Inum, ip); err != nil {
		return err
	}
	err = buf.CopyIn(fs.d, v.dataOff(begin), src, 0, sz)
	return common.IOErr(fmt.Sprintf("import %q", name), err)
}

// Export returns the contents of the file called name.
func (fs *Disk) Export(name string) ([]byte, error) {
	var b bytes.Buffer
	if err := fs.ExportTo(name, &b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ExportTo writes exactly the stored bytes of the file called name to w.
func (fs *Disk) ExportTo(name string, w io.Writer) error {
	v, ip, err := fs.find(name)
	if err != nil {
		return err
	}
	return fs.exportTo(v, ip, w)
}

func (fs *Disk) exportTo(v *view, ip *inode.Inode, w io.Writer) error {
	util.DPrintf(1, "export: %v\n", ip)
	err := buf.CopyOut(w, fs.d, v.dataOff(ip.Begin), ip.Size)
	return common.IOErr(fmt.Sprintf("export %q", ip.NameString()), err)
}

// ExportFile writes the file called name to the host file dst. dst is only
// created once the file is known to exist.
func (fs *Disk) ExportFile(name string, dst string) error {
	v, ip, err := fs.find(name)
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return common.IOErr("export", err)
	}
	if err := fs.exportTo(v, ip, f); err != nil {
		f.Close()
		return err
	}
	return common.IOErr("export", f.Close())
}

// Remove deletes the file called name. With secure erase the record and the
// file's bytes are zeroed first; the bitmap entries are always cleared.
func (fs *Disk) Remove(name string) error {
	v, ip, err := fs.find(name)
	if err != nil {
		return err
	}
	util.DPrintf(1, "remove: %v\n", ip)
	if fs.opts.SecureErase {
		if err := fs.zeroFile(v, ip); err != nil {
			return err
		}
	}
	if err := v.imap.SetRange(uint64(ip.Inum), 1, false); err != nil {
		return err
	}
	return v.dmap.SetRange(ip.Begin, ip.Blocks, false)
}

// Erase removes every file. The header, including the disk's name, is kept.
func (fs *Disk) Erase() error {
	v, err := fs.view()
	if err != nil {
		return err
	}
	if fs.opts.SecureErase {
		if err := fs.zeroAll(v); err != nil {
			return err
		}
	}
	if err := v.imap.Reset(); err != nil {
		return err
	}
	return v.dmap.Reset()
}

// List returns the files on the disk in slot order.
func (fs *Disk) List() ([]*inode.Inode, error) {
	v, err := fs.view()
	if err != nil {
		return nil, err
	}
	return v.files()
}

// Stat returns the record of the file called name.
func (fs *Disk) Stat(name string) (*inode.Inode, error) {
	_, ip, err := fs.find(name)
	return ip, err
}

// Checksum returns the BLAKE2b-256 digest of the file called name.
func (fs *Disk) Checksum(name string) ([]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if err := fs.ExportTo(name, h); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
