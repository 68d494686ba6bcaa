//go:build linux

package proc

import "time"

// CPUTracker turns cumulative per-process CPU ticks into a utilization
// percentage between successive observations of the same process:
//   - CPU time from /proc/<pid>/stat (utime+stime jiffies)
//   - wall time from the instant of the stat snapshot
//
// A process is identified by PID plus start time so a recycled PID starts
// over. 100% equals one fully busy CPU; multi-threaded processes may exceed it.
type CPUTracker struct {
	clkTck int
	gen    uint64
	prev   map[int]cpuSample
}

type cpuSample struct {
	start uint64 // starttime (jiffies after boot)
	ticks uint64 // utime+stime
	at    time.Time
	gen   uint64
}

// NewCPUTracker returns a tracker with no history.
func NewCPUTracker() *CPUTracker {
	return &CPUTracker{
		clkTck: ClockTicks(),
		prev:   make(map[int]cpuSample),
	}
}

// Percent returns the CPU utilization of p since it was last observed, or 0
// on first observation.
func (c *CPUTracker) Percent(p *Process) (float64, error) {
	st, err := p.snapshot()
	if err != nil {
		return 0, err
	}
	now := cpuSample{
		start: st.Starttime,
		ticks: uint64(st.UTime) + uint64(st.STime),
		at:    p.statAt,
		gen:   c.gen,
	}
	prev, ok := c.prev[p.PID]
	c.prev[p.PID] = now
	if !ok || prev.start != now.start {
		return 0, nil
	}

	cpuSec := float64(deltaU64(now.ticks, prev.ticks)) / float64(c.clkTck)
	return 100 * safeDiv(cpuSec, now.at.Sub(prev.at).Seconds()), nil
}

// Sweep forgets processes not observed since the previous Sweep.
func (c *CPUTracker) Sweep() {
	for pid, s := range c.prev {
		if s.gen != c.gen {
			delete(c.prev, pid)
		}
	}
	c.gen++
}

// Len returns the number of processes currently tracked.
func (c *CPUTracker) Len() int { return len(c.prev) }
