package proc

import "errors"

var (
	// ErrNotFound indicates that the process does not exist, or exited
	// between two reads of its /proc entries.
	ErrNotFound = errors.New("proc: no such process")

	// ErrNoChildren indicates that /proc/<pid>/task/*/children contained none.
	ErrNoChildren = errors.New("proc: no children")

	// ErrBadFlags indicates that /proc/<pid>/fdinfo/<fd> carried an unparsable
	// flags field.
	ErrBadFlags = errors.New("proc: malformed fdinfo flags")

	// ErrNotRegular indicates that a descriptor does not refer to a regular file.
	ErrNotRegular = errors.New("proc: not a regular file")
)
