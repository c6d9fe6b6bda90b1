// Package local provides a goroutine-confined variant of the GOM registry.
//
// A local.Registry offers the same operation set as the package-level gom
// facade, backed by storage the caller owns exclusively. There is no locking
// and no deadlock tracking: nothing is shared, so nested Apply and With
// calls on the same key are plain function calls. Confinement to a single
// goroutine is the caller's contract; a Registry handed to two goroutines is
// an ordinary data race.
//
// Indexing follows the shared registry: entries are keyed by (type, key),
// buckets are created lazily on first Register of a type and kept even when
// emptied, and Replace never creates an entry for an absent key.
package local

import (
	"fmt"
	"reflect"
	"sort"

	gom "github.com/Anglebase/GOM"
)

// Registry is a type-then-key indexed store without any synchronization.
type Registry struct {
	buckets map[reflect.Type]map[string]any
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{buckets: make(map[reflect.Type]map[string]any)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func cast[T any](typ reflect.Type, val any) T {
	if val == nil {
		var zero T
		return zero
	}
	v, ok := val.(T)
	if !ok {
		panic(fmt.Errorf("%w: bucket for %v holds %T", gom.ErrTypeMismatch, typ, val))
	}
	return v
}

// Register stores value under key for type T, overwriting any previous entry
// for the same (type, key) pair.
func Register[T any](r *Registry, key string, value T) error {
	if key == "" {
		return gom.ErrEmptyKey
	}
	typ := typeOf[T]()
	b, ok := r.buckets[typ]
	if !ok {
		b = make(map[string]any)
		r.buckets[typ] = b
	}
	b[key] = value
	return nil
}

// Remove detaches the entry for (T, key) and returns its value, or
// gom.ErrNotFound if the key is absent.
func Remove[T any](r *Registry, key string) (T, error) {
	var zero T
	typ := typeOf[T]()
	b, ok := r.buckets[typ]
	if !ok {
		return zero, gom.ErrNotFound
	}
	val, ok := b[key]
	if !ok {
		return zero, gom.ErrNotFound
	}
	delete(b, key)
	return cast[T](typ, val), nil
}

// Exists reports whether an entry for (T, key) currently exists.
func Exists[T any](r *Registry, key string) bool {
	b, ok := r.buckets[typeOf[T]()]
	if !ok {
		return false
	}
	_, ok = b[key]
	return ok
}

// Apply runs fn against a pointer to the value stored under (T, key) and
// returns fn's result; mutations are written back when fn returns. An absent
// key yields gom.ErrNotFound.
func Apply[T, R any](r *Registry, key string, fn func(*T) R) (R, error) {
	var zero R
	typ := typeOf[T]()
	b, ok := r.buckets[typ]
	if !ok {
		return zero, gom.ErrNotFound
	}
	val, ok := b[key]
	if !ok {
		return zero, gom.ErrNotFound
	}
	v := cast[T](typ, val)
	ret := fn(&v)
	b[key] = v
	return ret, nil
}

// With runs fn against the value stored under (T, key) and returns fn's
// result. An absent key yields gom.ErrNotFound.
func With[T, R any](r *Registry, key string, fn func(T) R) (R, error) {
	var zero R
	typ := typeOf[T]()
	b, ok := r.buckets[typ]
	if !ok {
		return zero, gom.ErrNotFound
	}
	val, ok := b[key]
	if !ok {
		return zero, gom.ErrNotFound
	}
	return fn(cast[T](typ, val)), nil
}

// Replace swaps value into an existing entry and returns the previous value.
// An absent key yields gom.ErrNotFound and, unlike Register, no entry is
// created.
func Replace[T any](r *Registry, key string, value T) (T, error) {
	var zero T
	typ := typeOf[T]()
	b, ok := r.buckets[typ]
	if !ok {
		return zero, gom.ErrNotFound
	}
	old, ok := b[key]
	if !ok {
		return zero, gom.ErrNotFound
	}
	b[key] = value
	return cast[T](typ, old), nil
}

// Take swaps value into an existing entry and returns the previous value.
//
// Deprecated: Use Replace.
func Take[T any](r *Registry, key string, value T) (T, error) {
	return Replace(r, key, value)
}

// Keys returns the keys currently registered for type T, sorted.
func Keys[T any](r *Registry) []string {
	b, ok := r.buckets[typeOf[T]()]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
