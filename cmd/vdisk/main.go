// Command vdisk manages virtual disks: flat file systems stored inside a
// single host file.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mit-pdos/go-vdisk/common"
	"github.com/mit-pdos/go-vdisk/config"
	"github.com/mit-pdos/go-vdisk/util"
	"github.com/mit-pdos/go-vdisk/vfs"
)

// parseSize accepts a byte count with an optional k or m suffix.
func parseSize(s string) (uint64, error) {
	ss := strings.TrimSpace(strings.ToLower(s))
	mult := uint64(1)
	switch {
	case strings.HasSuffix(ss, "k"):
		mult = 1024
		ss = strings.TrimSuffix(ss, "k")
	case strings.HasSuffix(ss, "m"):
		mult = 1024 * 1024
		ss = strings.TrimSuffix(ss, "m")
	case strings.HasSuffix(ss, "b"):
		ss = strings.TrimSuffix(ss, "b")
	}
	v, err := strconv.ParseUint(ss, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("size %q: %w", s, common.ErrInvalid)
	}
	if v > ^uint64(0)/mult {
		return 0, fmt.Errorf("size %q: %w", s, common.ErrInvalid)
	}
	return v * mult, nil
}

type app struct {
	opts  vfs.Options
	debug uint64
}

// with opens the disk at path, runs f on it and closes it. Each invocation
// of the tool is a single writer; nothing locks the host file.
func (a *app) with(path string, readOnly bool, f func(*vfs.Disk) error) error {
	opts := a.opts
	opts.ReadOnly = readOnly
	fs, err := vfs.Open(path, opts)
	if err != nil {
		return err
	}
	if err := f(fs); err != nil {
		fs.Close()
		return err
	}
	return fs.Close()
}

func printFiles(w io.Writer, label string, fs *vfs.Disk) error {
	files, err := fs.List()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(w, "No files in %s\n", label)
		return nil
	}
	fmt.Fprintf(w, "Files in %s:\n\n", label)
	for _, ip := range files {
		fmt.Fprintf(w, "Filename: %s\n\tSize: %d\n\tSize on disk: %d\n",
			ip.NameString(), ip.Size, ip.SizeOnDisk())
	}
	return nil
}

func bits(bs []bool) string {
	var sb strings.Builder
	for _, b := range bs {
		if b {
			sb.WriteString("[1]")
		} else {
			sb.WriteString("[0]")
		}
	}
	return sb.String()
}

func printMap(w io.Writer, m *vfs.Map) {
	h := m.Header
	fmt.Fprintf(w, "%s\n\n", h.InfoString())
	fmt.Fprintf(w, "VFS name: \t\t%s\n", h.Label())
	fmt.Fprintf(w, "VFS uuid: \t\t%s\n", h.UUID)
	fmt.Fprintf(w, "VFS size: \t\t%d\n", h.Size)
	fmt.Fprintf(w, "VFS blocks: \t\t%d\n", h.TotalBlocks)
	fmt.Fprintf(w, "VFS inodes blocks: \t%d\n", h.InodeBlocks)
	fmt.Fprintf(w, "VFS data blocks: \t%d\n", h.DataBlocks)
	fmt.Fprintf(w, "This VFS structure: \t[S][i][d]%s%s\n",
		strings.Repeat("[I]", int(h.InodeBlocks)), strings.Repeat("[D]", int(h.DataBlocks)))
	fmt.Fprintf(w, "Inodes bitmap: \t\t%s\n", bits(m.Inodes))
	fmt.Fprintf(w, "Data bitmap: \t\t%s\n", bits(m.Data))
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{opts: vfs.DefaultOptions()}
	root := &cobra.Command{
		Use:           "vdisk",
		Short:         "Flat virtual file systems stored in a single host file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			util.SetDebug(a.debug)
		},
	}
	root.PersistentFlags().BoolVar(&a.opts.SecureErase, "secure-erase", cfg.SecureErase,
		"zero file records and data when removing files")
	root.PersistentFlags().Uint64Var(&a.debug, "debug", cfg.Debug, "debug trace level (0 is silent)")

	var label string
	createCmd := &cobra.Command{
		Use:   "create SIZE DISK",
		Short: "Create a virtual disk of SIZE bytes (k and m suffixes allowed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseSize(args[0])
			if err != nil {
				return err
			}
			name := label
			if name == "" {
				name = filepath.Base(args[1])
			}
			h, err := vfs.Create(args[1], size, name)
			if err != nil {
				return err
			}
			l := h.Layout()
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %d bytes, %d inodes, %d data blocks\n",
				h.Label(), h.Size, l.Slots(), h.DataBlocks)
			return nil
		},
	}
	createCmd.Flags().StringVar(&label, "name", "", "disk name (default: base name of DISK)")

	var as string
	importCmd := &cobra.Command{
		Use:   "import SRC DISK",
		Short: "Copy the host file SRC into the disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.with(args[1], false, func(fs *vfs.Disk) error {
				if as != "" {
					return fs.ImportFileAs(args[0], as)
				}
				return fs.ImportFile(args[0])
			})
		},
	}
	importCmd.Flags().StringVar(&as, "as", "", "name inside the disk (default: base name of SRC)")

	exportCmd := &cobra.Command{
		Use:   "export NAME DISK [DEST]",
		Short: "Copy the file NAME out of the disk to DEST (default: ./NAME)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			dst := args[0]
			if len(args) == 3 {
				dst = args[2]
			}
			return a.with(args[1], true, func(fs *vfs.Disk) error {
				return fs.ExportFile(args[0], dst)
			})
		},
	}

	lsCmd := &cobra.Command{
		Use:   "ls DISK",
		Short: "List the files in the disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(args[0], true, func(fs *vfs.Disk) error {
				h, err := fs.Header()
				if err != nil {
					return err
				}
				return printFiles(cmd.OutOrStdout(), h.Label(), fs)
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm NAME DISK",
		Short: "Remove the file NAME from the disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.with(args[1], false, func(fs *vfs.Disk) error {
				return fs.Remove(args[0])
			})
		},
	}

	eraseCmd := &cobra.Command{
		Use:   "erase DISK",
		Short: "Remove every file from the disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.with(args[0], false, func(fs *vfs.Disk) error {
				return fs.Erase()
			})
		},
	}

	mapCmd := &cobra.Command{
		Use:   "map DISK",
		Short: "Show the disk's geometry and allocation bitmaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(args[0], true, func(fs *vfs.Disk) error {
				m, err := fs.Map()
				if err != nil {
					return err
				}
				printMap(cmd.OutOrStdout(), m)
				return nil
			})
		},
	}

	sumCmd := &cobra.Command{
		Use:   "sum NAME DISK",
		Short: "Print the BLAKE2b-256 checksum of the file NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.with(args[1], true, func(fs *vfs.Disk) error {
				sum, err := fs.Checksum(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", hex.EncodeToString(sum), args[0])
				return nil
			})
		},
	}

	labelCmd := &cobra.Command{
		Use:   "label DISK NAME",
		Short: "Rename the disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.with(args[0], false, func(fs *vfs.Disk) error {
				return fs.Relabel(args[1])
			})
		},
	}

	root.AddCommand(createCmd, importCmd, exportCmd, lsCmd, rmCmd, eraseCmd, mapCmd, sumCmd, labelCmd)
	return root
}

func main() {
	root := newRootCmd(config.Load())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vdisk: %v\n", err)
		os.Exit(1)
	}
}
