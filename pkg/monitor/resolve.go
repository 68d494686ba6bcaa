package monitor

import (
	"fmt"
	"log/slog"

	"github.com/ja7ad/procmon/pkg/finder"
	"github.com/ja7ad/procmon/pkg/system/proc"
)

// Target identifies the process to monitor: PID when non-zero, else Name.
type Target struct {
	PID  int
	Name string
	// User owns the ancestor picked by an ancestor walk; empty means the
	// current user.
	User string
	// Ancestor replaces the resolved process by its most remote ancestor
	// owned by User.
	Ancestor bool
}

// Resolve picks the PID to monitor. A name shared by several processes
// resolves through the ancestor walk of the first match, with a warning
// unless t.Ancestor asked for the walk anyway.
func Resolve(src finder.Source, t Target) (int, error) {
	var pid int
	switch {
	case t.PID != 0:
		if !src.Exists(t.PID) {
			return 0, fmt.Errorf("%w: pid %d", proc.ErrNotFound, t.PID)
		}
		pid = t.PID
	case t.Name != "":
		pids, err := finder.FindPIDs(src, t.Name, t.User, false)
		if err != nil {
			return 0, err
		}
		switch len(pids) {
		case 0:
			return 0, fmt.Errorf("%w: %q", ErrNoMatch, t.Name)
		case 1:
			pid = pids[0]
		default:
			if !t.Ancestor {
				slog.Warn("multiple processes match, using ancestor PID",
					"name", t.Name, "pids", pids)
			}
			if pid, err = finder.FindAncestor(src, pids[0], t.User); err != nil {
				return 0, err
			}
		}
	default:
		return 0, ErrNoTarget
	}

	slog.Debug("monitoring", "pid", pid)
	if !t.Ancestor {
		return pid, nil
	}
	return finder.FindAncestor(src, pid, t.User)
}
