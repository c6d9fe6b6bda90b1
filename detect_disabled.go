//go:build gom_nodetect

package gom

const detectEnabled = false
