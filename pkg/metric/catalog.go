//go:build linux

package metric

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/ja7ad/procmon/pkg/system/cgroup"
	"github.com/ja7ad/procmon/pkg/system/proc"
)

type entry struct {
	Definition
	enabled func(Options) bool // nil: always active
}

// catalog lists every known metric in column order.
func (s *Set) catalog() []entry {
	files := func(o Options) bool { return o.Files }
	return []entry{
		{Definition: Definition{"time", s.timestamp}},
		{Definition: Definition{"node", s.hostname}},
		{Definition: Definition{"pid", pid}},
		{Definition: Definition{"ppid", ppid}},
		{Definition: Definition{"cmd", exe}},
		{Definition: Definition{"cmdline", cmdline}},
		{Definition: Definition{"cpu_percent", s.cpuPercent}},
		{Definition: Definition{"cpu_user", cpuUser}},
		{Definition: Definition{"cpu_sys", cpuSys}},
		{Definition: Definition{"num_threads", numThreads}},
		{Definition: Definition{"mem_percent", s.memPercent}},
		{Definition: Definition{"mem", uss}},
		{Definition: Definition{"affinity", affinity}, enabled: func(o Options) bool { return o.Affinity }},
		{Definition: Definition{"read_files", readFiles}, enabled: files},
		{Definition: Definition{"write_files", writeFiles}, enabled: files},
		{Definition: Definition{"cgroup", cgroupPath}, enabled: func(o Options) bool { return o.Cgroup }},
	}
}

// timestamp is Unix time in seconds with microsecond precision.
func (s *Set) timestamp(*proc.Process) (string, error) {
	return strconv.FormatFloat(float64(s.now().UnixMicro())/1e6, 'f', 6, 64), nil
}

func (s *Set) hostname(*proc.Process) (string, error) { return s.node, nil }

func pid(p *proc.Process) (string, error) { return strconv.Itoa(p.PID), nil }

func ppid(p *proc.Process) (string, error) {
	v, err := p.PPID()
	if err != nil {
		return "", err
	}
	return strconv.Itoa(v), nil
}

func exe(p *proc.Process) (string, error) { return p.Exe() }

// cmdline shell-quotes each argument and wraps the line in double quotes.
func cmdline(p *proc.Process) (string, error) {
	args, err := p.Cmdline()
	if err != nil {
		return "", err
	}
	return `"` + shellescape.QuoteCommand(args) + `"`, nil
}

func (s *Set) cpuPercent(p *proc.Process) (string, error) {
	v, err := s.cpu.Percent(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.2f", v), nil
}

func cpuUser(p *proc.Process) (string, error) {
	user, _, err := p.Times()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.2f", user), nil
}

func cpuSys(p *proc.Process) (string, error) {
	_, sys, err := p.Times()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.2f", sys), nil
}

func numThreads(p *proc.Process) (string, error) {
	n, err := p.NumThreads()
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func (s *Set) memPercent(p *proc.Process) (string, error) {
	rss, err := p.RSS()
	if err != nil {
		return "", err
	}
	if s.totalMem == 0 {
		return "0.00", nil
	}
	return fmt.Sprintf("%.2f", 100*float64(rss)/float64(s.totalMem)), nil
}

// uss reports the unique set size, or RSS where the kernel cannot tell.
func uss(p *proc.Process) (string, error) {
	v, err := p.USS()
	if errors.Is(err, errors.ErrUnsupported) {
		v, err = p.RSS()
	}
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func affinity(p *proc.Process) (string, error) {
	cpus, err := p.Affinity()
	if err != nil {
		return "", nil
	}
	ids := make([]string, len(cpus))
	for i, c := range cpus {
		ids[i] = strconv.Itoa(c)
	}
	return strings.Join(ids, ";"), nil
}

func readFiles(p *proc.Process) (string, error) {
	return joinFiles(p, func(f proc.OpenFile) (string, bool) {
		return f.Path, !f.Writable()
	}), nil
}

func writeFiles(p *proc.Process) (string, error) {
	return joinFiles(p, func(f proc.OpenFile) (string, bool) {
		return f.Path + ":" + f.Size.String(), f.Writable()
	}), nil
}

// joinFiles renders the open files accepted by keep, ';'-separated. Listing
// failures yield an empty field.
func joinFiles(p *proc.Process, keep func(proc.OpenFile) (string, bool)) string {
	files, err := p.OpenFiles()
	if err != nil {
		return ""
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		if v, ok := keep(f); ok {
			out = append(out, v)
		}
	}
	return strings.Join(out, ";")
}

func cgroupPath(p *proc.Process) (string, error) {
	path, err := cgroup.Of(p.PID)
	if err != nil {
		return "", nil
	}
	return path, nil
}
