package gom

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotFound is returned when no entry exists for the requested
	// (type, key) pair.
	ErrNotFound = errors.New("gom: key not found")

	// ErrLockUnavailable is returned when an entry still exists but its value
	// is unreachable because a previous Apply callback panicked while holding
	// the entry's write lock. It signals a damaged entry rather than absence;
	// Register installs a fresh entry and clears the condition.
	ErrLockUnavailable = errors.New("gom: lock unavailable")

	// ErrEmptyKey is returned when an empty key is provided.
	ErrEmptyKey = errors.New("gom: key cannot be empty")

	// ErrTypeMismatch indicates that a stored value does not match the type
	// tag of its slot. Slots live inside the bucket selected by the caller's
	// type, so this cannot happen unless the table itself is corrupt; it is
	// delivered by panic, never as a return value.
	ErrTypeMismatch = errors.New("gom: stored type mismatch")
)

// OpenScope describes one scoped access that was still open on the goroutine
// when a deadlock was detected.
type OpenScope struct {
	Key       string
	Type      reflect.Type
	Exclusive bool
}

// DeadlockError reports a registry call whose lock acquisition could only
// block against a scope already open on the same goroutine. It is delivered
// by panic: the call can never complete, so an immediate, attributable
// failure beats an unbounded wait.
type DeadlockError struct {
	Op        string // facade operation that attempted the acquisition
	Key       string
	Type      reflect.Type
	Goroutine int64
	Open      []OpenScope // outermost first
}

func (e *DeadlockError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "gom: %s(%q) on %v would deadlock against scopes open on goroutine %d:",
		e.Op, e.Key, e.Type, e.Goroutine)
	for _, s := range e.Open {
		op := "with"
		if s.Exclusive {
			op = "apply"
		}
		fmt.Fprintf(&sb, "\n\t%s(%q) on %v", op, s.Key, s.Type)
	}
	return sb.String()
}
