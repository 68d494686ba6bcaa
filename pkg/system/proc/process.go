//go:build linux

package proc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"github.com/ja7ad/procmon/pkg/types"
)

// cpuSetBits is the capacity of unix.CPUSet.
const cpuSetBits = 1024

// Process is a handle to a live OS process. Attributes are read on demand;
// every read fails with ErrNotFound once the process has exited.
//
// Values derived from /proc/<pid>/stat (parent, CPU times, threads, RSS)
// come from the snapshot taken by the last Refresh, so metrics of one
// sample are mutually consistent.
type Process struct {
	PID int

	fs procfs.Proc
	ps *process.Process

	stat    procfs.ProcStat
	statAt  time.Time
	hasStat bool
}

// Open returns a handle to the running process pid.
func Open(pid int) (*Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	}
	fp, err := procfs.NewProc(pid)
	if err != nil {
		return nil, gone(pid, err)
	}
	ps, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, gone(pid, err)
	}
	return &Process{PID: pid, fs: fp, ps: ps}, nil
}

// Refresh takes a new point-in-time snapshot of /proc/<pid>/stat.
func (p *Process) Refresh() error {
	st, err := p.fs.Stat()
	if err != nil {
		return gone(p.PID, err)
	}
	p.stat, p.statAt, p.hasStat = st, time.Now(), true
	return nil
}

func (p *Process) snapshot() (procfs.ProcStat, error) {
	if !p.hasStat {
		if err := p.Refresh(); err != nil {
			return procfs.ProcStat{}, err
		}
	}
	return p.stat, nil
}

// PPID returns the parent process ID.
func (p *Process) PPID() (int, error) {
	st, err := p.snapshot()
	if err != nil {
		return 0, err
	}
	return st.PPID, nil
}

// NumThreads returns the number of threads in the process.
func (p *Process) NumThreads() (int, error) {
	st, err := p.snapshot()
	if err != nil {
		return 0, err
	}
	return st.NumThreads, nil
}

// Times returns user and system CPU time in seconds.
func (p *Process) Times() (user, system float64, err error) {
	st, err := p.snapshot()
	if err != nil {
		return 0, 0, err
	}
	tck := float64(ClockTicks())
	return float64(st.UTime) / tck, float64(st.STime) / tck, nil
}

// RSS returns the resident set size.
func (p *Process) RSS() (types.Bytes, error) {
	st, err := p.snapshot()
	if err != nil {
		return 0, err
	}
	return types.ToBytes(st.RSS * PageSize()), nil
}

// USS returns the unique set size: private clean, dirty and hugetlb pages,
// the memory freed if the process exited now. procfs sums smaps itself on
// kernels without smaps_rollup (hugetlb pages are then left out); with
// neither file USS fails with errors.ErrUnsupported.
func (p *Process) USS() (types.Bytes, error) {
	r, err := p.fs.ProcSMapsRollup()
	if errors.Is(err, fs.ErrNotExist) && Exists(p.PID) {
		return 0, fmt.Errorf("smaps_rollup: %w", errors.ErrUnsupported)
	}
	if err != nil {
		return 0, gone(p.PID, err)
	}
	uss := r.PrivateClean + r.PrivateDirty
	if f, err := os.Open(fmt.Sprintf("/proc/%d/smaps_rollup", p.PID)); err == nil {
		huge, _ := privateHugetlb(f)
		_ = f.Close()
		uss += huge
	}
	return types.ToBytes(uss), nil
}

// privateHugetlb returns the Private_Hugetlb bytes of an smaps_rollup
// listing; procfs does not parse that field.
func privateHugetlb(r io.Reader) (uint64, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 2 || f[0] != "Private_Hugetlb:" {
			continue
		}
		kb, err := strconv.ParseUint(f[1], 10, 64)
		if err != nil {
			return 0, err
		}
		return kb * 1024, nil
	}
	return 0, sc.Err()
}

// Exe returns the path of the executable.
func (p *Process) Exe() (string, error) {
	exe, err := p.fs.Executable()
	if err != nil {
		return "", gone(p.PID, err)
	}
	// procfs reports a missing exe link as an empty path
	if exe == "" && !Exists(p.PID) {
		return "", fmt.Errorf("%w: pid %d", ErrNotFound, p.PID)
	}
	return exe, nil
}

// Cmdline returns the argument vector, trailing empty arguments included.
// Kernel threads have none.
func (p *Process) Cmdline() ([]string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", p.PID))
	if err != nil {
		return nil, gone(p.PID, err)
	}
	return splitCmdline(data), nil
}

// splitCmdline splits NUL-terminated arguments. Only the final terminator is
// dropped, so an empty last argument survives.
func splitCmdline(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	data = bytes.TrimSuffix(data, []byte{0})
	return strings.Split(string(data), "\x00")
}

// Name returns the process name as used for matching by name.
func (p *Process) Name() (string, error) {
	name, err := p.ps.Name()
	if err != nil {
		return "", gone(p.PID, err)
	}
	return name, nil
}

// Username returns the name of the user owning the process.
func (p *Process) Username() (string, error) {
	u, err := p.ps.Username()
	if err != nil {
		return "", gone(p.PID, err)
	}
	return u, nil
}

// Affinity returns the indices of the CPUs the process may run on.
func (p *Process) Affinity() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(p.PID, &set); err != nil {
		return nil, gone(p.PID, err)
	}
	n := set.Count()
	cpus := make([]int, 0, n)
	for i := 0; i < cpuSetBits && len(cpus) < n; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}
