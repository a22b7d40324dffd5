package vfs

import (
	"github.com/mit-pdos/go-vdisk/buf"
	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/inode"
	"github.com/mit-pdos/go-vdisk/util"
)

// zeroFile overwrites a file's record and its Size data bytes. Slack after
// the last byte of the file is left alone, as import never wrote it.
func (fs *Disk) zeroFile(v *view, ip *inode.Inode) error {
	util.DPrintf(5, "zeroFile: %v\n", ip)
	if err := v.tbl.Zero(ip.Inum); err != nil {
		return err
	}
	err := buf.Zero(fs.d, v.dataOff(ip.Begin), ip.Size)
	return common.IOErr("erase data", err)
}

// zeroAll overwrites every active record and every used data block in full.
func (fs *Disk) zeroAll(v *view) error {
	inums, err := v.imap.Used()
	if err != nil {
		return err
	}
	for _, n := range inums {
		if err := v.tbl.Zero(common.Inum(n)); err != nil {
			return err
		}
	}
	bns, err := v.dmap.Used()
	if err != nil {
		return err
	}
	util.DPrintf(5, "zeroAll: %d inodes, %d blocks\n", len(inums), len(bns))
	for _, bn := range bns {
		if err := buf.Zero(fs.d, v.dataOff(bn), common.BlockSize); err != nil {
			return common.IOErr("erase data", err)
		}
	}
	return nil
}
