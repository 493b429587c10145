// Package unsafeconv provides zero-copy byte/string conversions. No
// other package of this module imports it: chunk's ReadPtr and
// bytesutil's helpers work on []byte directly.
package unsafeconv

import (
	"bytes"
	"unsafe"
)

// B2S converts a byte slice to a string without allocation.
// The returned string must not outlive, and must not be used after,
// any mutation of the backing array of b.
func B2S(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2B converts a string to a byte slice without allocation.
// The returned slice must not be written to.
func S2B(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// EqualBytes compares a byte slice with a string without allocating an
// intermediate []byte for the string.
func EqualBytes(a []byte, b string) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return bytes.Equal(a, S2B(b))
}
