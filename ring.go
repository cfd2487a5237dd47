package overring

// ring.go implements the arithmetic of the 64-bit identifier ring. Ids wrap
// modulo 2^64, which Go's uint64 gives us for free on subtraction/addition
// overflow.

// clockwiseDistance returns the distance travelled going clockwise (in the
// direction of increasing id, wrapping past 2^64-1 back to 0) from a to b.
func clockwiseDistance(a, b uint64) uint64 {
	return b - a
}

// distance returns the shorter of the two arcs between a and b.
func distance(a, b uint64) uint64 {
	cw := clockwiseDistance(a, b)
	ccw := clockwiseDistance(b, a)
	if cw < ccw {
		return cw
	}
	return ccw
}

// inRange reports whether x lies in the half-open clockwise range (from, to],
// wrapping around the ring when from > to.
func inRange(from, to, x uint64) bool {
	if from < to {
		return from < x && x <= to
	}
	if from > to {
		return x > from || x <= to
	}
	// from == to: the range is empty unless x == to, which closes the full circle.
	return x == to
}

// closerClockwise reports whether, among two ids equidistant from key, the
// clockwise tie-break prefers a over b. "Clockwise" here means: of the two
// candidates, the one reached first by walking clockwise from key.
func closerClockwise(key, a, b uint64) bool {
	return clockwiseDistance(key, a) < clockwiseDistance(key, b)
}

// inClosedRange reports whether x lies in the closed clockwise range
// [from, to], wrapping around the ring when from > to. Used by LeafSet.owner
// for the leaf-set arc test, which (unlike inRange) is closed on both ends:
// a key exactly equal to either boundary entry's id is owned by that entry.
func inClosedRange(from, to, x uint64) bool {
	if from <= to {
		return from <= x && x <= to
	}
	return x >= from || x <= to
}
