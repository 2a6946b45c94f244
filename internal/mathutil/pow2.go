// Package mathutil provides small integer math helpers shared across
// the texture and gpumem packages.
package mathutil

import "math/bits"

// NextPow2 returns the smallest power of two >= v.
// NextPow2(0) returns 1.
func NextPow2(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len32(v-1)
}

// IsPow2 reports whether v is a power of two. Zero is not a power of two.
func IsPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
