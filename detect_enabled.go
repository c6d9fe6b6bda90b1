//go:build !gom_nodetect

package gom

// detectEnabled gates the per-goroutine deadlock detector. Build with the
// gom_nodetect tag to compile the checks and the scope bookkeeping out; the
// nested-access patterns the detector would have rejected then block
// indefinitely instead of panicking.
const detectEnabled = true
