//go:build linux

package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/procfs"
)

// ClockTicks returns the number of jiffies (clock ticks) per second.
// It first checks the env var CLK_TCK (useful for testing), otherwise
// falls back to 100 (common default).
//
// Note: On real systems, the authoritative way is `sysconf(_SC_CLK_TCK)`,
// but calling that requires cgo. procfs makes the same assumption.
func ClockTicks() int {
	v, _ := strconv.Atoi(os.Getenv("CLK_TCK"))
	if v > 0 {
		return v
	}
	return 100
}

// PageSize returns the system memory page size in bytes.
// Like ClockTicks, it first checks an env override (PAGE_SIZE)
// to ease testing, then falls back to os.Getpagesize().
func PageSize() int {
	if ps := os.Getenv("PAGE_SIZE"); ps != "" {
		if v, _ := strconv.Atoi(ps); v > 0 {
			return v
		}
	}
	return os.Getpagesize()
}

// Exists reports whether a given PID currently exists in /proc.
// It simply checks if /proc/<pid> is a valid directory.
func Exists(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}

//
// Process tree
//

// ReadProcChildren returns the direct child PIDs of a process by reading
// /proc/<pid>/task/*/children files, in ascending order. Each children file
// lists space-separated PIDs for that thread's children.
//
// Notes:
//   - Kernel 3.5+ with CONFIG_PROC_CHILDREN exposes this interface.
//   - We deduplicate across threads by using a set.
//   - If no children are found, returns ErrNoChildren.
func ReadProcChildren(pid int) ([]int, error) {
	glob := fmt.Sprintf("/proc/%d/task/*/children", pid)
	paths, _ := filepath.Glob(glob)
	set := map[int]struct{}{}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		for _, s := range strings.Fields(string(b)) {
			if id, err := strconv.Atoi(s); err == nil {
				set[id] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrNoChildren
	}
	slices.Sort(out)
	return out, nil
}

var childrenFiles = sync.OnceValue(func() bool {
	paths, _ := filepath.Glob("/proc/self/task/*/children")
	return len(paths) > 0
})

// Descendants returns every process transitively spawned by pid,
// breadth-first with siblings in ascending PID order. pid itself is not
// included. Processes that exit during the walk are dropped together with
// their subtree.
func Descendants(pid int) []int {
	children := ReadProcChildren
	if !childrenFiles() {
		children = scanChildren()
	}

	var out []int
	seen := map[int]struct{}{pid: {}}
	queue := []int{pid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		kids, err := children(cur)
		if err != nil {
			continue
		}
		for _, k := range kids {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
			queue = append(queue, k)
		}
	}
	return out
}

// scanChildren builds a parent → children index from one pass over all
// processes, for kernels without CONFIG_PROC_CHILDREN.
func scanChildren() func(int) ([]int, error) {
	index := map[int][]int{}
	if procs, err := procfs.AllProcs(); err == nil {
		for _, p := range procs {
			st, err := p.Stat()
			if err != nil {
				continue
			}
			index[st.PPID] = append(index[st.PPID], p.PID)
		}
	}
	return func(pid int) ([]int, error) {
		kids := index[pid]
		if len(kids) == 0 {
			return nil, ErrNoChildren
		}
		slices.Sort(kids)
		return kids, nil
	}
}
