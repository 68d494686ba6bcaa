// Package proc provides process introspection on Linux for per-process
// sampling: a handle to one live process, a view of the whole process table,
// and process-tree discovery.
//
// Overview
//
//   - Process handle:
//     Open(pid) (*Process, error)
//
//     Attributes are read on demand from /proc (via procfs and gopsutil).
//     Refresh takes a point-in-time snapshot of /proc/<pid>/stat; parent PID,
//     CPU times, thread count and RSS all come from that snapshot, so the
//     metrics of one sample agree with each other. Every accessor fails with
//     an error wrapping ErrNotFound once the process is gone.
//
//   - Process table:
//     System{} lists PIDs and reads names, parents and owners. It is the
//     live implementation of finder.Source.
//
//   - Process tree:
//     ReadProcChildren(pid) reads /proc/<pid>/task/*/children;
//     Descendants(pid) walks the tree breadth-first. On kernels without
//     CONFIG_PROC_CHILDREN, Descendants falls back to a single scan of
//     every process' parent PID.
//
//   - Open files:
//     (*Process).OpenFiles resolves every descriptor to a regular file,
//     its fopen(3) access mode (from /proc/<pid>/fdinfo/<fd> flags) and its
//     current size. Descriptors that fail to resolve are dropped one by one.
//
//   - CPU utilization:
//     CPUTracker keeps the previous utime+stime of each process and reports
//     the percentage of one CPU used since then. Call Sweep once per tick to
//     drop processes that were not observed.
//
//   - Errors (errs.go):
//     ErrNotFound   : process does not exist or exited between reads
//     ErrNoChildren : no /proc/<pid>/task/*/children entries
//     ErrBadFlags   : unparsable fdinfo flags
//     ErrNotRegular : descriptor is not a regular file
//
// Permissions
//
//   - Reading another user's exe, fdinfo or smaps_rollup requires the same
//     privileges as ptrace(2) attach; expect permission errors otherwise.
//
// Example: one sample of the current process and its descendants
//
//	/*
//	pids := append([]int{os.Getpid()}, proc.Descendants(os.Getpid())...)
//	for _, pid := range pids {
//	    p, err := proc.Open(pid)
//	    if errors.Is(err, proc.ErrNotFound) { continue }
//	    if err != nil { log.Fatal(err) }
//	    if err := p.Refresh(); err != nil { continue }
//	    user, sys, _ := p.Times()
//	    fmt.Printf("pid=%d user=%.2fs sys=%.2fs\n", pid, user, sys)
//	}
//	*/
//
// Package import path: github.com/ja7ad/procmon/pkg/system/proc
package proc
