//go:build gom_lockdebug

package gom

import "github.com/sasha-s/go-deadlock"

// Builds tagged gom_lockdebug swap every table, bucket and slot mutex for a
// go-deadlock instrumented one. The scope tracker only sees a goroutine's own
// nesting; this catches cross-goroutine waits, at a large overhead per
// acquisition.
type rwMutex = deadlock.RWMutex

func init() {
	// Nested With calls legitimately re-acquire read locks on the same
	// mutexes; the order-based reports those produce are noise here.
	deadlock.Opts.DisableLockOrderDetection = true
}
