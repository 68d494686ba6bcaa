//go:build linux

package util

import (
	"fmt"
	"log/slog"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ja7ad/procmon/pkg/system/cgroup"
	"github.com/ja7ad/procmon/pkg/types"
)

// Summary describes the host a monitor runs on.
type Summary struct {
	Host   string
	Kernel string
	CPUs   int
	Mem    types.Bytes
	Cgroup cgroup.Version
}

// SystemSummary collects host name, kernel, logical CPU count, physical
// memory and cgroup version. Parts that cannot be read are left zero;
// the error reports the first failure.
func SystemSummary() (Summary, error) {
	var (
		s        Summary
		firstErr error
	)
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	info, err := host.Info()
	keep(err)
	if info != nil {
		s.Host = info.Hostname
		s.Kernel = fmt.Sprintf("%s %s", info.OS, info.KernelVersion)
	}

	s.CPUs, err = cpu.Counts(true)
	keep(err)

	s.Mem, err = TotalMemory()
	keep(err)

	s.Cgroup, _, err = cgroup.Detect()
	keep(err)

	return s, firstErr
}

// TotalMemory returns the physical memory of the host.
func TotalMemory() (types.Bytes, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}
	return types.ToBytes(vm.Total), nil
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", s.Host),
		slog.String("kernel", s.Kernel),
		slog.Int("cpus", s.CPUs),
		slog.String("mem", s.Mem.Humanized()),
		slog.String("cgroup", s.Cgroup.String()),
	)
}
