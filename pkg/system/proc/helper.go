//go:build linux

package proc

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

func deltaU64(now, prev uint64) uint64 {
	if now >= prev {
		return now - prev
	}
	// counter reset or prev unset
	return 0
}

func safeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}

// gone maps the ways a vanished process shows up in /proc reads onto
// ErrNotFound. Other errors (permissions, malformed files) pass through.
func gone(pid int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, process.ErrorProcessNotRunning) ||
		!Exists(pid) {
		return fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	}
	return err
}
