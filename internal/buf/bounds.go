// Package buf contains overflow-safe size arithmetic shared by the allocator.
package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow int.
// Only non-negative operands are accepted; allocator sizes are never negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// AlignUp rounds n up to the next multiple of align, which must be a power of two.
// Returns ok = false when n is negative or the rounded value would overflow int.
//
// Example:
//
//	AlignUp(1, 16)  = 16, true
//	AlignUp(16, 16) = 16, true
//	AlignUp(17, 16) = 32, true
func AlignUp(n, align int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	mask := align - 1
	sum, ok := AddOverflowSafe(n, mask)
	if !ok {
		return 0, false
	}
	return sum &^ mask, true
}
