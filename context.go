package gom

import (
	"reflect"
	"sync"

	"github.com/petermattis/goid"

	"github.com/Anglebase/GOM/logger"
)

type accessMode uint8

const (
	modeShared accessMode = iota
	modeExclusive
)

// frame records one scoped access currently open on a goroutine.
type frame struct {
	typ  reflect.Type
	key  string
	mode accessMode
}

// tracker keeps, per goroutine, the stack of With/Apply scopes currently
// open. Before any exclusive acquisition in the three-tier protocol, or a
// shared slot acquisition, the facade asks the tracker whether blocking there
// could only end in a deadlock against a lock this goroutine already holds
// through an enclosing scope. Goroutines are identified with goid, the same
// mechanism go-deadlock uses to attribute lock ownership.
type tracker struct {
	mu     sync.Mutex
	stacks map[int64][]frame
}

func newTracker() *tracker {
	return &tracker{stacks: make(map[int64][]frame)}
}

// push records a scope immediately before its callback runs. It must be
// paired with a deferred pop so the frame is removed on every exit path; a
// stale frame would make later calls from this goroutine abort spuriously.
func (t *tracker) push(f frame) {
	if !detectEnabled {
		return
	}
	gid := goid.Get()
	t.mu.Lock()
	t.stacks[gid] = append(t.stacks[gid], f)
	t.mu.Unlock()
}

func (t *tracker) pop() {
	if !detectEnabled {
		return
	}
	gid := goid.Get()
	t.mu.Lock()
	s := t.stacks[gid]
	if n := len(s); n > 0 {
		if n == 1 {
			delete(t.stacks, gid)
		} else {
			t.stacks[gid] = s[:n-1]
		}
	}
	t.mu.Unlock()
}

// open returns a copy of the goroutine's current scope stack.
func (t *tracker) open(gid int64) []frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]frame(nil), t.stacks[gid]...)
}

func (t *tracker) reset() {
	t.mu.Lock()
	t.stacks = make(map[int64][]frame)
	t.mu.Unlock()
}

// checkTableWrite runs before taking the table write lock to insert a new
// bucket. Any open scope holds the table read lock, so any nesting at all is
// fatal here.
func (t *tracker) checkTableWrite(op string, typ reflect.Type, key string) {
	if !detectEnabled {
		return
	}
	gid := goid.Get()
	if open := t.open(gid); len(open) > 0 {
		t.fail(op, typ, key, gid, open)
	}
}

// checkBucketWrite runs before taking a bucket's write lock to insert,
// remove or swap a key. An open scope on the same type holds that bucket's
// read lock, whatever its key.
func (t *tracker) checkBucketWrite(op string, typ reflect.Type, key string) {
	if !detectEnabled {
		return
	}
	gid := goid.Get()
	open := t.open(gid)
	for _, f := range open {
		if f.typ == typ {
			t.fail(op, typ, key, gid, open)
		}
	}
}

// checkSlotWrite runs before Apply takes a slot's write lock. Any open scope
// on the same (type, key), shared or exclusive, already holds that slot.
func (t *tracker) checkSlotWrite(op string, typ reflect.Type, key string) {
	if !detectEnabled {
		return
	}
	gid := goid.Get()
	open := t.open(gid)
	for _, f := range open {
		if f.typ == typ && f.key == key {
			t.fail(op, typ, key, gid, open)
		}
	}
}

// checkSlotRead runs before With takes a slot's read lock. Only an exclusive
// scope on the same (type, key) conflicts; shared scopes compose.
func (t *tracker) checkSlotRead(op string, typ reflect.Type, key string) {
	if !detectEnabled {
		return
	}
	gid := goid.Get()
	open := t.open(gid)
	for _, f := range open {
		if f.mode == modeExclusive && f.typ == typ && f.key == key {
			t.fail(op, typ, key, gid, open)
		}
	}
}

func (t *tracker) fail(op string, typ reflect.Type, key string, gid int64, open []frame) {
	scopes := make([]OpenScope, len(open))
	for i, f := range open {
		scopes[i] = OpenScope{Key: f.key, Type: f.typ, Exclusive: f.mode == modeExclusive}
	}
	err := &DeadlockError{Op: op, Key: key, Type: typ, Goroutine: gid, Open: scopes}
	log := logger.Logger()
	log.Error().
		Int64("goroutine", gid).
		Str("op", op).
		Str("key", key).
		Str("type", typ.String()).
		Msg("nested scoped access would deadlock")
	panic(err)
}
