package gom

import "strings"

// ID builds a hierarchical key from path segments:
//
//	gom.ID("my", "module", "MyType") == ".my.module.MyType"
//
// The result is deterministic and unique per path. The registry itself
// treats keys as opaque strings; the dotted form only keeps hierarchies of
// related keys readable.
func ID(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteByte('.')
		sb.WriteString(p)
	}
	return sb.String()
}

// Extend appends path segments to an already built ID:
//
//	root := gom.ID("my", "module", "MyType")
//	gom.Extend(root, "other", "OtherType") == ".my.module.MyType.other.OtherType"
func Extend(root string, parts ...string) string {
	return root + ID(parts...)
}
