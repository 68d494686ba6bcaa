//go:build linux

// Package metric defines the per-process measurements of a sample row and
// renders them as comma-separated text.
package metric

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ja7ad/procmon/pkg/system/proc"
	"github.com/ja7ad/procmon/pkg/system/util"
	"github.com/ja7ad/procmon/pkg/types"
)

// Func measures one metric of a process and renders it as a field.
type Func func(p *proc.Process) (string, error)

// Definition is a named column of a sample row.
type Definition struct {
	Name    string
	Measure Func
}

// Options selects the optional metrics. The rest are always active.
type Options struct {
	Affinity bool // affinity
	Files    bool // read_files, write_files
	Cgroup   bool // cgroup
}

// Set is the ordered list of active metrics of one run. It is fixed at
// construction, so the header and every row share one column layout.
type Set struct {
	defs   []Definition
	header string

	node     string
	totalMem types.Bytes
	cpu      *proc.CPUTracker
	now      func() time.Time
}

// New builds the active metric set for opts.
func New(opts Options) (*Set, error) {
	node, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}
	total, err := util.TotalMemory()
	if err != nil {
		return nil, err
	}

	s := &Set{
		node:     node,
		totalMem: total,
		cpu:      proc.NewCPUTracker(),
		now:      time.Now,
	}
	for _, e := range s.catalog() {
		if e.enabled == nil || e.enabled(opts) {
			s.defs = append(s.defs, e.Definition)
		}
	}
	s.header = strings.Join(s.Names(), ",")
	return s, nil
}

// Names returns the active metric names in column order.
func (s *Set) Names() []string {
	names := make([]string, len(s.defs))
	for i, d := range s.defs {
		names[i] = d.Name
	}
	return names
}

// Header returns the comma-joined metric names.
func (s *Set) Header() string { return s.header }

// Len returns the number of active metrics.
func (s *Set) Len() int { return len(s.defs) }

// Row samples every active metric of p and joins the values with commas.
// The stat snapshot is refreshed once, so stat-derived fields agree.
func (s *Set) Row(p *proc.Process) (string, error) {
	if err := p.Refresh(); err != nil {
		return "", err
	}
	fields := make([]string, len(s.defs))
	for i, d := range s.defs {
		v, err := d.Measure(p)
		if err != nil {
			return "", fmt.Errorf("metric %s: %w", d.Name, err)
		}
		fields[i] = v
	}
	return strings.Join(fields, ","), nil
}

// Sweep ends a tick: CPU history of processes not sampled in it is dropped.
func (s *Set) Sweep() { s.cpu.Sweep() }
