//go:build linux

package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ja7ad/procmon/pkg/metric"
	"github.com/ja7ad/procmon/pkg/system/proc"
)

// Config describes one monitoring run.
type Config struct {
	Target
	Interval time.Duration
	Metrics  metric.Options
}

// Monitor samples a process and its descendants at a fixed interval and
// writes one block of rows per tick.
type Monitor struct {
	target   *proc.Process
	set      *metric.Set
	w        io.Writer
	interval time.Duration
}

// New opens the target process; it fails with proc.ErrNotFound when pid
// does not exist.
func New(pid int, set *metric.Set, w io.Writer, interval time.Duration) (*Monitor, error) {
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	p, err := proc.Open(pid)
	if err != nil {
		return nil, err
	}
	return &Monitor{target: p, set: set, w: w, interval: interval}, nil
}

// Tick samples the target and every current descendant and writes the batch
// with a single Write. Descendants that exit or fail while being sampled are
// left out of the batch; the target exiting ends with ErrTargetExited.
func (m *Monitor) Tick() error {
	defer m.set.Sweep()

	row, err := m.set.Row(m.target)
	if errors.Is(err, proc.ErrNotFound) {
		return fmt.Errorf("%w: pid %d", ErrTargetExited, m.target.PID)
	}
	if err != nil {
		return err
	}

	rows := []string{row}
	for _, pid := range proc.Descendants(m.target.PID) {
		p, err := proc.Open(pid)
		if err != nil {
			slog.Debug("skip descendant", "pid", pid, "err", err)
			continue
		}
		r, err := m.set.Row(p)
		if errors.Is(err, proc.ErrNotFound) {
			slog.Debug("descendant exited", "pid", pid)
			continue
		}
		if err != nil {
			slog.Warn("skip descendant", "pid", pid, "err", err)
			continue
		}
		rows = append(rows, r)
	}

	_, err = io.WriteString(m.w, strings.Join(rows, "\n")+"\n")
	return err
}

// Run writes the header, then ticks immediately and every interval until
// ctx is done or the target exits; both end the run without error. A ctx
// that is already done writes nothing.
func (m *Monitor) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	if _, err := io.WriteString(m.w, m.set.Header()+"\n"); err != nil {
		return err
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Tick(); err != nil {
			if errors.Is(err, ErrTargetExited) {
				slog.Warn("target exited, stopping", "pid", m.target.PID)
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			slog.Debug("interrupted")
			return nil
		case <-ticker.C:
		}
	}
}

// Run resolves cfg.Target on the live process table and monitors it,
// writing to w until ctx is done.
func Run(ctx context.Context, cfg Config, w io.Writer) error {
	if cfg.Interval <= 0 {
		return ErrBadInterval
	}
	pid, err := Resolve(proc.System{}, cfg.Target)
	if err != nil {
		return err
	}
	return Start(ctx, pid, cfg, w)
}

// Start monitors the already resolved pid with the metrics and interval of
// cfg; cfg.Target is ignored.
func Start(ctx context.Context, pid int, cfg Config, w io.Writer) error {
	set, err := metric.New(cfg.Metrics)
	if err != nil {
		return err
	}
	m, err := New(pid, set, w, cfg.Interval)
	if err != nil {
		return err
	}
	return m.Run(ctx)
}
