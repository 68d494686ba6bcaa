package monitor

import "errors"

var (
	ErrNoTarget     = errors.New("monitor: neither process id nor process name given")
	ErrNoMatch      = errors.New("monitor: no process with that name")
	ErrBadInterval  = errors.New("monitor: interval must be > 0")
	ErrTargetExited = errors.New("monitor: target process exited")
)
