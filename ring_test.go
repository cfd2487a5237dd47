package overring

import "testing"

func TestClockwiseDistanceWraps(t *testing.T) {
	max := ^uint64(0)
	if d := clockwiseDistance(max, 0); d != 1 {
		t.Errorf("expected wraparound distance 1, got %d", d)
	}
	if d := clockwiseDistance(0, max); d != max {
		t.Errorf("expected distance %d, got %d", max, d)
	}
}

func TestDistanceTakesShorterArc(t *testing.T) {
	if d := distance(100, 200); d != 100 {
		t.Errorf("expected 100, got %d", d)
	}
	max := ^uint64(0)
	if d := distance(0, max); d != 1 {
		t.Errorf("expected wraparound neighbours to have distance 1, got %d", d)
	}
}

func TestInRangeNonWrapping(t *testing.T) {
	if !inRange(100, 200, 150) {
		t.Errorf("expected 150 in (100, 200]")
	}
	if inRange(100, 200, 100) {
		t.Errorf("range is half-open on the low end, 100 should not be included")
	}
	if !inRange(100, 200, 200) {
		t.Errorf("range is closed on the high end, 200 should be included")
	}
	if inRange(100, 200, 250) {
		t.Errorf("250 should not be in (100, 200]")
	}
}

func TestInRangeWrapping(t *testing.T) {
	max := ^uint64(0)
	if !inRange(max-10, 10, max-5) {
		t.Errorf("expected value past the wraparound to be in range")
	}
	if !inRange(max-10, 10, 5) {
		t.Errorf("expected value after wraparound point to be in range")
	}
	if inRange(max-10, 10, max-20) {
		t.Errorf("expected value before the range to be excluded")
	}
}

func TestCloserClockwiseTieBreak(t *testing.T) {
	// S1: key=350, candidates at 300 and 400 are equidistant (50 each);
	// clockwise tie-break picks 400.
	if !closerClockwise(350, 400, 300) {
		t.Errorf("expected 400 to be preferred over 300 under clockwise tie-break")
	}
}
