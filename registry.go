package gom

import (
	"sort"

	"github.com/Anglebase/GOM/logger"
)

// Register stores value under key for type T, overwriting any previous entry
// for the same (type, key) pair. The bucket for T is created on first use.
// Overwriting installs a fresh slot, so a key damaged by a panicking Apply
// callback becomes usable again.
func Register[T any](key string, value T) error {
	if key == "" {
		return ErrEmptyKey
	}
	stats.register.Add(1)
	typ := typeOf[T]()
	b := globalTable().bucketFor("register", typ, key)
	scopes.checkBucketWrite("register", typ, key)
	b.mu.Lock()
	b.slots[key] = &slot{typ: typ, val: value}
	b.mu.Unlock()
	return nil
}

// Remove detaches the entry for (T, key) and returns its value. An absent
// key yields ErrNotFound. A poisoned entry is detached all the same, but its
// value is lost and ErrLockUnavailable is returned instead.
func Remove[T any](key string) (T, error) {
	var zero T
	stats.remove.Add(1)
	typ := typeOf[T]()
	b := globalTable().lookup(typ)
	if b == nil {
		return zero, ErrNotFound
	}
	scopes.checkBucketWrite("remove", typ, key)
	b.mu.Lock()
	sl, ok := b.slots[key]
	if ok {
		delete(b.slots, key)
	}
	b.mu.Unlock()
	if !ok {
		return zero, ErrNotFound
	}
	// The bucket write lock excluded every accessor that could have held the
	// slot, and the slot is detached now, so its fields are safe to read
	// without taking its lock.
	if sl.poisoned {
		return zero, ErrLockUnavailable
	}
	return cast[T](sl), nil
}

// Exists reports whether an entry for (T, key) currently exists. It takes
// read locks only and never fails: a key it cannot see is simply absent.
func Exists[T any](key string) bool {
	stats.exists.Add(1)
	b := globalTable().lookup(typeOf[T]())
	if b == nil {
		return false
	}
	b.mu.RLock()
	_, ok := b.slots[key]
	b.mu.RUnlock()
	return ok
}

// Apply runs fn with exclusive access to the value stored under (T, key) and
// returns fn's result, or ErrNotFound if the key is absent. fn receives a
// pointer to the stored value; mutations through it are written back when fn
// returns and are never visible to other goroutines while fn runs.
//
// fn may call other registry operations. The ones that would deadlock
// against this scope, including Apply on the same key, panic with
// *DeadlockError instead of hanging. If fn panics, the entry is poisoned and
// the panic is rethrown.
func Apply[T, R any](key string, fn func(*T) R) (R, error) {
	var zero R
	stats.apply.Add(1)
	typ := typeOf[T]()
	t := globalTable()

	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.buckets[typ]
	if !ok {
		return zero, ErrNotFound
	}
	// The bucket read lock is held across fn so a concurrent Remove cannot
	// detach the slot out from under the callback.
	b.mu.RLock()
	defer b.mu.RUnlock()
	sl, ok := b.slots[key]
	if !ok {
		return zero, ErrNotFound
	}

	scopes.checkSlotWrite("apply", typ, key)
	sl.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			sl.poisoned = true
			sl.mu.Unlock()
			log := logger.Logger()
			log.Warn().
				Str("key", key).
				Str("type", typ.String()).
				Msg("slot poisoned by panic in apply callback")
			panic(r)
		}
		sl.mu.Unlock()
	}()
	if sl.poisoned {
		return zero, ErrLockUnavailable
	}

	v := cast[T](sl)
	scopes.push(frame{typ: typ, key: key, mode: modeExclusive})
	defer scopes.pop()
	ret := fn(&v)
	sl.val = v
	return ret, nil
}

// With runs fn with shared access to the value stored under (T, key) and
// returns fn's result, or ErrNotFound if the key is absent. Any number of
// With calls on the same key may run concurrently; a concurrent Apply on the
// key excludes them all for its duration.
//
// A panic in fn propagates without poisoning the entry: readers cannot leave
// the value half-written.
func With[T, R any](key string, fn func(T) R) (R, error) {
	var zero R
	stats.with.Add(1)
	typ := typeOf[T]()
	t := globalTable()

	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.buckets[typ]
	if !ok {
		return zero, ErrNotFound
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	sl, ok := b.slots[key]
	if !ok {
		return zero, ErrNotFound
	}

	scopes.checkSlotRead("with", typ, key)
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.poisoned {
		return zero, ErrLockUnavailable
	}

	v := cast[T](sl)
	scopes.push(frame{typ: typ, key: key, mode: modeShared})
	defer scopes.pop()
	return fn(v), nil
}

// Replace swaps value into an existing entry and returns the previous value.
// An absent key yields ErrNotFound and, unlike Register, no entry is
// created. If the previous entry was poisoned the swap still happens, but
// the old value is lost and ErrLockUnavailable is returned.
func Replace[T any](key string, value T) (T, error) {
	var zero T
	stats.replace.Add(1)
	typ := typeOf[T]()
	b := globalTable().lookup(typ)
	if b == nil {
		return zero, ErrNotFound
	}
	scopes.checkBucketWrite("replace", typ, key)
	b.mu.Lock()
	old, ok := b.slots[key]
	if ok {
		b.slots[key] = &slot{typ: typ, val: value}
	}
	b.mu.Unlock()
	if !ok {
		return zero, ErrNotFound
	}
	if old.poisoned {
		return zero, ErrLockUnavailable
	}
	return cast[T](old), nil
}

// Take swaps value into an existing entry and returns the previous value.
//
// Deprecated: Use Replace.
func Take[T any](key string, value T) (T, error) {
	return Replace(key, value)
}

// Keys returns the keys currently registered for type T, sorted.
func Keys[T any]() []string {
	b := globalTable().lookup(typeOf[T]())
	if b == nil {
		return nil
	}
	b.mu.RLock()
	out := make([]string, 0, len(b.slots))
	for k := range b.slots {
		out = append(out, k)
	}
	b.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Types returns the names of the stored types that currently have at least
// one entry, sorted.
func Types() []string {
	t := globalTable()
	t.mu.RLock()
	out := make([]string, 0, len(t.buckets))
	for typ, b := range t.buckets {
		b.mu.RLock()
		n := len(b.slots)
		b.mu.RUnlock()
		if n > 0 {
			out = append(out, typ.String())
		}
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}
