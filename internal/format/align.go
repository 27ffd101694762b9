package format

// Align16 returns n aligned up to the next 16-byte boundary.
// Callers are responsible for overflow checks (see internal/buf.AlignUp).
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + AlignmentMask) &^ AlignmentMask
}

// Aligned reports whether n is a multiple of Alignment.
func Aligned(n int) bool {
	return n&AlignmentMask == 0
}
