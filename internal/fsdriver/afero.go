// Package fsdriver implements the filesystem collaborator consumed by
// internal/ftpserver, backed by an afero.Fs rooted at a base directory.
// Grounded on the original firmware's FatFs-backed wrapper (§6's
// filesystem collaborator interface) and on ftpserverlib's own
// spf13/afero-based ClientDriver.
package fsdriver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/oxipack/cmsftpd/internal/ftpserver"
)

// Driver adapts an afero.Fs, rooted at BaseDir, to ftpserver.FileSystem.
// Every operation goes through Fs except GetFree, which joins BaseDir with
// the path to reach the host filesystem directly (see hostPath); tests set
// BaseDir to "/" and hand in a bare afero.NewMemMapFs() directly.
type Driver struct {
	Fs      afero.Fs
	BaseDir string
}

// New constructs a Driver serving baseDir off the host filesystem, rooted
// with afero.NewBasePathFs so every FTP-visible path is confined under it.
func New(baseDir string) *Driver {
	return &Driver{Fs: afero.NewBasePathFs(afero.NewOsFs(), baseDir), BaseDir: baseDir}
}

func (d *Driver) native(path string) string {
	return filepath.FromSlash(path)
}

// hostPath resolves path to a real filesystem path under BaseDir, for the
// rare operation (GetFree's statfs syscall) that must bypass afero.Fs
// entirely and talk to the host directly.
func (d *Driver) hostPath(path string) string {
	return filepath.Join(d.BaseDir, filepath.FromSlash(path))
}

func toEntry(name string, info os.FileInfo) *ftpserver.DirEntry {
	var attrib ftpserver.Attrib

	if info.IsDir() {
		attrib |= ftpserver.AttribDir
	}

	if info.Mode().Perm()&0o200 == 0 {
		attrib |= ftpserver.AttribReadOnly
	}

	t := info.ModTime().UTC()
	date, timeVal := ftpserver.PackDateTime(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	size := uint64(info.Size())
	if size > 0xFFFFFFFF {
		size = 0xFFFFFFFF
	}

	return &ftpserver.DirEntry{
		Name:   name,
		Size:   uint32(size),
		Date:   date,
		Time:   timeVal,
		Attrib: attrib,
	}
}

// Stat implements ftpserver.FileSystem.
func (d *Driver) Stat(path string) (*ftpserver.DirEntry, error) {
	info, err := d.Fs.Stat(d.native(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ftpserver.ErrNotExist
		}

		return nil, ftpserver.NewDriverError("stat", err)
	}

	return toEntry(info.Name(), info), nil
}

// dirHandle adapts afero's ReadDir slice to the Dir interface's one-entry-
// at-a-time iteration contract.
type dirHandle struct {
	entries []*ftpserver.DirEntry
	pos     int
}

func (h *dirHandle) Next() (*ftpserver.DirEntry, error) {
	if h.pos >= len(h.entries) {
		return nil, io.EOF
	}

	entry := h.entries[h.pos]
	h.pos++

	return entry, nil
}

func (h *dirHandle) Close() error { return nil }

// OpenDir implements ftpserver.FileSystem.
func (d *Driver) OpenDir(path string) (ftpserver.Dir, error) {
	infos, err := afero.ReadDir(d.Fs, d.native(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ftpserver.ErrNotExist
		}

		return nil, ftpserver.NewDriverError("open dir", err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]*ftpserver.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, toEntry(info.Name(), info))
	}

	return &dirHandle{entries: entries}, nil
}

// OpenFile implements ftpserver.FileSystem.
func (d *Driver) OpenFile(path string, flag ftpserver.OpenFlag) (ftpserver.File, error) {
	native := d.native(path)

	switch flag {
	case ftpserver.OpenRead:
		f, err := d.Fs.Open(native)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ftpserver.ErrNotExist
			}

			return nil, ftpserver.NewDriverError("open file", err)
		}

		return f, nil

	case ftpserver.OpenCreateWrite:
		f, err := d.Fs.OpenFile(native, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, ftpserver.NewDriverError("create file", err)
		}

		return f, nil
	}

	return nil, fmt.Errorf("unknown open flag %d", flag)
}

// Unlink implements ftpserver.FileSystem. It removes a file or an empty
// directory, matching the single "remove" primitive of §6's collaborator
// interface.
func (d *Driver) Unlink(path string) error {
	if err := d.Fs.Remove(d.native(path)); err != nil {
		if os.IsNotExist(err) {
			return ftpserver.ErrNotExist
		}

		return ftpserver.NewDriverError("unlink", err)
	}

	return nil
}

// Mkdir implements ftpserver.FileSystem.
func (d *Driver) Mkdir(path string) error {
	if _, err := d.Fs.Stat(d.native(path)); err == nil {
		return ftpserver.ErrAlreadyExists
	}

	return ftpserver.NewDriverError("mkdir", d.Fs.Mkdir(d.native(path), 0o777))
}

// Rename implements ftpserver.FileSystem.
func (d *Driver) Rename(from, to string) error {
	return ftpserver.NewDriverError("rename", d.Fs.Rename(d.native(from), d.native(to)))
}

// Utime implements ftpserver.FileSystem.
func (d *Driver) Utime(path string, date, timeVal uint16) error {
	year, month, day, hour, minute, second := ftpserver.UnpackDateTime(date, timeVal)
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	return ftpserver.NewDriverError("utime", d.Fs.Chtimes(d.native(path), t, t))
}
