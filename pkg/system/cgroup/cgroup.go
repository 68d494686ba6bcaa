//go:build linux

package cgroup

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/procfs"
)

type Version int

const (
	Unsupported Version = iota // no cgroup mounts
	V1                         // legacy multi-hierarchy cgroup v1
	V2                         // unified cgroup v2
	Hybrid                     // both v1 and v2 present
)

// ErrNoCgroup is returned by Of when the process belongs to no hierarchy
// that can be reported.
var ErrNoCgroup = errors.New("cgroup: no membership")

func (v Version) String() string {
	switch v {
	case V1:
		return "cgroup v1"
	case V2:
		return "cgroup v2"
	case Hybrid:
		return "cgroup hybrid"
	default:
		return "unsupported"
	}
}

// Detect returns the detected cgroup version and a human-readable detail string,
// from the cgroup filesystems listed in /proc/self/mountinfo.
func Detect() (Version, string, error) {
	mounts, err := procfs.GetMounts()
	if err != nil {
		return Unsupported, "", fmt.Errorf("read mountinfo: %w", err)
	}

	var v1Pts, v2Pts []string
	for _, m := range mounts {
		switch m.FSType {
		case "cgroup2":
			v2Pts = append(v2Pts, m.MountPoint)
		case "cgroup":
			v1Pts = append(v1Pts, m.MountPoint)
		}
	}

	switch {
	case len(v1Pts) > 0 && len(v2Pts) > 0:
		return Hybrid, fmt.Sprintf("cgroup2 on %v; cgroup v1 on %v",
			strings.Join(v2Pts, ","), strings.Join(v1Pts, ",")), nil
	case len(v2Pts) > 0:
		return V2, fmt.Sprintf("cgroup2 on %v", strings.Join(v2Pts, ",")), nil
	case len(v1Pts) > 0:
		return V1, fmt.Sprintf("cgroup v1 on %v", strings.Join(v1Pts, ",")), nil
	default:
		return Unsupported, "no cgroup mounts found", nil
	}
}

// Of returns the cgroup path of pid: the unified hierarchy entry when there is
// one (v2 and hybrid), otherwise the hierarchy of the cpu controller.
func Of(pid int) (string, error) {
	p, err := procfs.NewProc(pid)
	if err != nil {
		return "", err
	}
	cgs, err := p.Cgroups()
	if err != nil {
		return "", err
	}
	return pick(cgs)
}

func pick(cgs []procfs.Cgroup) (string, error) {
	for _, cg := range cgs {
		if cg.HierarchyID == 0 {
			return cg.Path, nil
		}
	}
	for _, cg := range cgs {
		if slices.Contains(cg.Controllers, "cpu") {
			return cg.Path, nil
		}
	}
	return "", ErrNoCgroup
}
