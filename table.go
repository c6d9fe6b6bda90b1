package gom

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Anglebase/GOM/logger"
)

// slot holds one stored value together with its runtime type tag.
type slot struct {
	mu  rwMutex
	typ reflect.Type
	val any
	// poisoned is set when an Apply callback panicked while mu was held for
	// writing. The value is then considered lost; see ErrLockUnavailable.
	// Written under mu or while the slot is unreachable.
	poisoned bool
}

// bucket maps keys to slots for a single stored type.
type bucket struct {
	mu    rwMutex
	slots map[string]*slot
}

// table is the root of the store: one bucket per stored type. Buckets are
// created lazily on first Register of a type and kept for the life of the
// process even when emptied, so a *bucket obtained under the table read lock
// stays valid after that lock is released.
type table struct {
	mu      rwMutex
	buckets map[reflect.Type]*bucket
}

var (
	global     *table
	globalOnce sync.Once
	scopes     = newTracker()
)

func globalTable() *table {
	globalOnce.Do(func() {
		global = &table{buckets: make(map[reflect.Type]*bucket)}
	})
	return global
}

// Reset discards every stored value and all recorded scopes, returning the
// registry to its pristine state. It is a teardown hook for tests and
// process shutdown; it must not run concurrently with other registry calls.
func Reset() {
	globalOnce = sync.Once{}
	global = nil
	scopes.reset()
}

// lookup returns the bucket for typ, or nil if no value of that type was
// ever registered.
func (t *table) lookup(typ reflect.Type) *bucket {
	t.mu.RLock()
	b := t.buckets[typ]
	t.mu.RUnlock()
	return b
}

// bucketFor returns the bucket for typ, creating it on first use. The create
// path re-checks under the write lock, so two goroutines racing on the first
// Register of the same type agree on a single bucket.
func (t *table) bucketFor(op string, typ reflect.Type, key string) *bucket {
	t.mu.RLock()
	b, ok := t.buckets[typ]
	t.mu.RUnlock()
	if ok {
		return b
	}

	scopes.checkTableWrite(op, typ, key)
	t.mu.Lock()
	b, ok = t.buckets[typ]
	if !ok {
		b = &bucket{slots: make(map[string]*slot)}
		t.buckets[typ] = b
		log := logger.Logger()
		log.Debug().Str("type", typ.String()).Msg("created type bucket")
	}
	t.mu.Unlock()
	return b
}

// size reports the number of buckets and the number of live slots across
// them.
func (t *table) size() (buckets, slots int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	buckets = len(t.buckets)
	for _, b := range t.buckets {
		b.mu.RLock()
		slots += len(b.slots)
		b.mu.RUnlock()
	}
	return buckets, slots
}

// typeOf returns the reflect.Type for T without needing a value of it.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// cast returns the slot's value as T. Slots are only ever reached through
// the bucket selected by T, so a mismatch means the table is corrupt; it
// escalates instead of returning an error.
func cast[T any](sl *slot) T {
	if sl.val == nil {
		// A nil interface value was stored; its zero value is the honest
		// answer and cannot be type-asserted.
		var zero T
		return zero
	}
	v, ok := sl.val.(T)
	if !ok {
		panic(fmt.Errorf("%w: slot tagged %v holds %T", ErrTypeMismatch, sl.typ, sl.val))
	}
	return v
}
