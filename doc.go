// Package gom provides a process-wide registry for values of arbitrary types.
//
// gom lets unrelated parts of a program stash and retrieve values under
// string keys, as if they were ad hoc global variables, while staying
// type-safe and usable from many goroutines. Entries are indexed by
// (type, key): the same key can hold one value per distinct stored type.
//
// Core components include:
//   - Facade operations: Register, Remove, Exists, Apply, With and Replace,
//     generic over the stored type
//   - A two-tier concurrent table with per-entry locking, so unrelated types
//     and unrelated keys never contend
//   - A per-goroutine scope tracker that turns self-deadlocking nested
//     accesses into an immediate, attributable panic instead of a silent hang
//   - A goroutine-confined variant without any locking in the local
//     subpackage
//
// Apply and With run a caller-supplied function against the stored value
// while holding the entry's lock; no reference to the value escapes that
// scope. Nested registry calls from inside such a function are fine whenever
// they cannot deadlock, for example when they touch a different key. The
// forbidden patterns panic with *DeadlockError. The detector can be compiled
// out with the gom_nodetect build tag, in which case the same patterns block
// indefinitely instead.
package gom
