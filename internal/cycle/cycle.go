// Package cycle maps the global visit counter onto the five code positions.
package cycle

// Positions is the number of codes each user holds and the period of the
// cycle.
const Positions = 5

// FromCount returns the cycle (1..Positions) for a counter value.
// Count 1 is cycle 1, count 5 is cycle 5, count 6 wraps to cycle 1.
// A counter that has never been incremented (0, or a corrupt negative
// value) reports cycle 1.
func FromCount(count int64) int {
	if count <= 0 {
		return 1
	}
	return int((count-1)%Positions) + 1
}

// Valid reports whether c is a usable cycle number.
func Valid(c int) bool {
	return c >= 1 && c <= Positions
}
