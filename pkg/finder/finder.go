package finder

import (
	"errors"
	"fmt"
	"os/user"

	"github.com/ja7ad/procmon/pkg/system/proc"
)

// Source is a view of the process table. proc.System is the live one.
type Source interface {
	Pids() ([]int, error)
	Name(pid int) (string, error)
	Parent(pid int) (int, error)
	Username(pid int) (string, error)
	Exists(pid int) bool
}

// FindPIDs returns the processes named exactly name, in enumeration order.
// With ancestor set, only the first match is kept and replaced by its most
// remote ancestor owned by user (see FindAncestor). No match yields an
// empty result in both modes.
func FindPIDs(src Source, name, user string, ancestor bool) ([]int, error) {
	pids, err := src.Pids()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var found []int
	for _, pid := range pids {
		n, err := src.Name(pid)
		if err != nil {
			// exited mid-scan or not readable
			continue
		}
		if n != name {
			continue
		}
		if !ancestor {
			found = append(found, pid)
			continue
		}
		top, err := FindAncestor(src, pid, user)
		if errors.Is(err, proc.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return []int{top}, nil
	}
	return found, nil
}

// FindAncestor walks the parent chain of pid from the root toward pid and
// returns the first ancestor owned by username, or pid itself when none is.
// An empty username means the current user.
func FindAncestor(src Source, pid int, username string) (int, error) {
	if pid <= 0 || !src.Exists(pid) {
		return 0, fmt.Errorf("%w: pid %d", proc.ErrNotFound, pid)
	}
	if username == "" {
		u, err := CurrentUser()
		if err != nil {
			return 0, err
		}
		username = u
	}

	chain := parents(src, pid)
	for i := len(chain) - 1; i >= 0; i-- {
		owner, err := src.Username(chain[i])
		if err != nil {
			continue
		}
		if owner == username {
			return chain[i], nil
		}
	}
	return pid, nil
}

// parents returns the ancestors of pid, nearest first.
func parents(src Source, pid int) []int {
	var (
		chain []int
		seen  = map[int]bool{pid: true}
	)
	for {
		ppid, err := src.Parent(pid)
		if err != nil || ppid <= 0 || seen[ppid] {
			return chain
		}
		seen[ppid] = true
		chain = append(chain, ppid)
		pid = ppid
	}
}

// CurrentUser returns the login name of the user running this process.
func CurrentUser() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	return u.Username, nil
}
