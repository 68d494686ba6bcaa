// Package finder resolves process names to PIDs and picks a single
// representative process from a tree by ownership.
//
// A Source abstracts the process table; proc.System reads the live one.
//
//	pids, err := finder.FindPIDs(proc.System{}, "sshd", "", false)
//	top, err := finder.FindAncestor(proc.System{}, pids[0], "root")
//
// FindAncestor returns the topmost process in pid's parent chain that is
// owned by the given user, so a name shared by a daemon and the workers it
// forks resolves to the daemon. A PID that does not exist fails with
// proc.ErrNotFound before any traversal.
package finder
