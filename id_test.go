package overring

import "testing"

// Make sure ids derived from distinct byte strings are stable across calls
// (the id derivation rule must be deterministic across peers).
func TestIdFromBytesDeterministic(t *testing.T) {
	a := IdFromBytes([]byte("peer one"))
	b := IdFromBytes([]byte("peer one"))
	if a != b {
		t.Errorf("expected stable id, got %s and %s", a, b)
	}
	c := IdFromBytes([]byte("peer two"))
	if a == c {
		t.Errorf("expected distinct ids for distinct inputs, both hashed to %s", a)
	}
}

// Make sure Digit extracts the expected nibble, most-significant digit first.
func TestNodeIdDigit(t *testing.T) {
	id := NodeId(0x0123456789abcdef)
	want := []byte{0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0xa, 0xb, 0xc, 0xd, 0xe, 0xf}
	for i, w := range want {
		if got := id.Digit(i); got != w {
			t.Errorf("digit %d: expected %x, got %x", i, w, got)
		}
	}
}

func TestNodeIdDigitOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on out-of-range digit index")
		}
	}()
	NodeId(0).Digit(digitsPerID)
}

// Make sure the correct common prefix length is reported for two ids.
func TestNodeIdCommonPrefixLen(t *testing.T) {
	n1 := NodeId(0xfd0fd0fd0fd0fd0f)
	n2 := NodeId(0xfd0fd0d0fd0fd0f0) // diverges at digit 6
	if got := n1.CommonPrefixLen(n2); got != 6 {
		t.Errorf("expected common prefix length 6, got %d", got)
	}
	if got := n1.CommonPrefixLen(n1); got != digitsPerID {
		t.Errorf("expected full-length common prefix with self, got %d", got)
	}
}

// Make sure the correct difference is reported between ids, including
// wraparound near the top of the ring.
func TestNodeIdDiff(t *testing.T) {
	n1 := NodeId(10)
	n2 := NodeId(20)
	if n1.Diff(n2) != 10 {
		t.Errorf("expected difference 10, got %d", n1.Diff(n2))
	}
	if n2.Diff(n1) != 10 {
		t.Errorf("expected symmetric difference 10, got %d", n2.Diff(n1))
	}
	if n1.Diff(n1) != 0 {
		t.Errorf("expected difference 0 with self, got %d", n1.Diff(n1))
	}

	// ids 0 and 2^64-1 are literal neighbours across the wraparound (§8 boundary case).
	max := NodeId(^uint64(0))
	zero := NodeId(0)
	if got := zero.Diff(max); got != 1 {
		t.Errorf("expected wraparound neighbours to have diff 1, got %d", got)
	}
}

func TestIdMarshalRoundTrip(t *testing.T) {
	id := NodeId(0xdeadbeefcafef00d)
	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back NodeId
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != id {
		t.Errorf("expected round-trip to preserve id %s, got %s", id, back)
	}
}
