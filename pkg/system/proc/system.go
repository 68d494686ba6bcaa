//go:build linux

package proc

import (
	"github.com/prometheus/procfs"
	"github.com/shirou/gopsutil/v3/process"
)

// System reads the live process table. It satisfies finder.Source.
type System struct{}

// Pids lists all running processes.
func (System) Pids() ([]int, error) {
	ids, err := process.Pids()
	if err != nil {
		return nil, err
	}
	pids := make([]int, len(ids))
	for i, id := range ids {
		pids[i] = int(id)
	}
	return pids, nil
}

// Name returns the process name of pid.
func (System) Name(pid int) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", gone(pid, err)
	}
	name, err := p.Name()
	if err != nil {
		return "", gone(pid, err)
	}
	return name, nil
}

// Parent returns the parent PID of pid; 0 for the root of the tree.
func (System) Parent(pid int) (int, error) {
	p, err := procfs.NewProc(pid)
	if err != nil {
		return 0, gone(pid, err)
	}
	st, err := p.Stat()
	if err != nil {
		return 0, gone(pid, err)
	}
	return st.PPID, nil
}

// Username returns the name of the user owning pid.
func (System) Username(pid int) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", gone(pid, err)
	}
	u, err := p.Username()
	if err != nil {
		return "", gone(pid, err)
	}
	return u, nil
}

// Exists reports whether pid is running.
func (System) Exists(pid int) bool { return Exists(pid) }
