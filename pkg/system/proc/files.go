//go:build linux

package proc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/ja7ad/procmon/pkg/types"
)

// OpenFile is a regular file held open by a process.
type OpenFile struct {
	Path string
	// Mode is the access mode in fopen(3) notation: r, w, a, r+ or a+.
	Mode string
	// Size is the on-disk size observed when the file was enumerated.
	Size types.Bytes
}

// Writable reports whether the file was opened with write access.
func (f OpenFile) Writable() bool { return f.Mode != "r" }

// OpenFiles enumerates the regular files the process holds open. A
// descriptor that cannot be resolved (closed meanwhile, not a regular file,
// unreadable fdinfo, deleted target) is left out; only a failure to list
// the descriptors at all is returned.
func (p *Process) OpenFiles() ([]OpenFile, error) {
	stats, err := p.ps.OpenFiles()
	if err != nil {
		return nil, gone(p.PID, err)
	}
	files := make([]OpenFile, 0, len(stats))
	for _, st := range stats {
		f, err := p.openFile(st)
		if err != nil {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

func (p *Process) openFile(st process.OpenFilesStat) (OpenFile, error) {
	if !strings.HasPrefix(st.Path, "/") {
		return OpenFile{}, ErrNotRegular
	}
	info, err := p.fs.FDInfo(strconv.FormatUint(st.Fd, 10))
	if err != nil {
		return OpenFile{}, err
	}
	flags, err := strconv.ParseUint(info.Flags, 8, 64)
	if err != nil {
		return OpenFile{}, fmt.Errorf("%w: %q", ErrBadFlags, info.Flags)
	}
	fi, err := os.Stat(st.Path)
	if err != nil {
		return OpenFile{}, err
	}
	if !fi.Mode().IsRegular() {
		return OpenFile{}, ErrNotRegular
	}
	return OpenFile{
		Path: st.Path,
		Mode: fileMode(flags),
		Size: types.ToBytes(fi.Size()),
	}, nil
}

// fileMode converts open(2) flags to fopen(3) mode notation.
func fileMode(flags uint64) string {
	var mode string
	switch flags & unix.O_ACCMODE {
	case unix.O_WRONLY:
		mode = "w"
	case unix.O_RDWR:
		mode = "r+"
	default:
		mode = "r"
	}
	if flags&unix.O_APPEND != 0 {
		switch mode {
		case "w":
			mode = "a"
		case "r+":
			mode = "a+"
		}
	}
	return mode
}
