package service

// Advance moves current forward by delta rooms with wraparound. The result is
// always in [0, count); with no rooms it is 0.
func Advance(current, count, delta int) int {
	if count <= 0 {
		return 0
	}
	next := (current + delta) % count
	if next < 0 {
		next += count
	}
	return next
}
