package overring

import "testing"

func info(id uint64) NodeInfo {
	return NodeInfo{Id: NodeId(id), PubAddr: "test"}
}

func TestLeafSetInsertSortsBySide(t *testing.T) {
	l := newLeafSet(2, info(100))
	l.insert(info(300))
	l.insert(info(200))
	l.insert(info(900))
	l.insert(info(950))
	if len(l.cw) != 2 || l.cw[0].Id != NodeId(200) || l.cw[1].Id != NodeId(300) {
		t.Errorf("expected cw side [200,300] nearest-first, got %v", l.cw)
	}
	if len(l.ccw) != 2 || l.ccw[0].Id != NodeId(950) || l.ccw[1].Id != NodeId(900) {
		t.Errorf("expected ccw side [950,900] nearest-first, got %v", l.ccw)
	}
}

func TestLeafSetInsertSelfIsNoop(t *testing.T) {
	l := newLeafSet(2, info(100))
	l.insert(info(100))
	if l.len() != 1 {
		t.Errorf("expected inserting self to be a no-op, got len %d", l.len())
	}
}

func TestLeafSetDoubleInsertUpdatesInPlace(t *testing.T) {
	l := newLeafSet(2, info(100))
	l.insert(info(200))
	updated := NodeInfo{Id: NodeId(200), PubAddr: "rejoined"}
	l.insert(updated)
	if len(l.cw) != 1 || l.cw[0].PubAddr != "rejoined" {
		t.Errorf("expected re-insert to refresh the existing entry, got %v", l.cw)
	}
}

func TestLeafSetDisplacesFurthestWhenFull(t *testing.T) {
	l := newLeafSet(1, info(100))
	l.insert(info(200))
	l.insert(info(150)) // closer than 200, should displace it
	if len(l.cw) != 1 || l.cw[0].Id != NodeId(150) {
		t.Errorf("expected closer entry to displace the furthest, got %v", l.cw)
	}
}

func TestLeafSetDropsFartherThanFurthestWhenFull(t *testing.T) {
	l := newLeafSet(1, info(100))
	l.insert(info(150))
	l.insert(info(200)) // farther than 150, should be dropped
	if len(l.cw) != 1 || l.cw[0].Id != NodeId(150) {
		t.Errorf("expected farther entry to be dropped, got %v", l.cw)
	}
}

func TestLeafSetRemoveSelfIsInvariantViolation(t *testing.T) {
	l := newLeafSet(2, info(100))
	if err := l.remove(NodeId(100)); err == nil {
		t.Errorf("expected removing self to fail")
	} else if _, ok := err.(InvariantViolation); !ok {
		t.Errorf("expected InvariantViolation, got %T", err)
	}
}

func TestLeafSetRemoveUnknownReturnsNotFound(t *testing.T) {
	l := newLeafSet(2, info(100))
	if err := l.remove(NodeId(999)); err != errNodeNotFound {
		t.Errorf("expected errNodeNotFound, got %v", err)
	}
}

// S1: k=2, peers at {100,200,300,400,500}, query key 350 at peer 100. The
// leaf set is full (2 per side), so 350 falls in the unknown gap between
// the furthest cw entry (300) and the furthest ccw entry (400) and owner
// must defer (return false) rather than guess.
func TestLeafSetOwnerReturnsNoneOutsideFullArc(t *testing.T) {
	l := newLeafSet(2, info(100))
	for _, id := range []uint64{200, 300, 400, 500} {
		l.insert(info(id))
	}
	if _, ok := l.owner(NodeId(350)); ok {
		t.Errorf("expected no owner for a key outside the full leaf set's arc")
	}
}

func TestLeafSetOwnerResolvesPredecessorInsideFullArc(t *testing.T) {
	l := newLeafSet(2, info(100))
	for _, id := range []uint64{200, 300, 400, 500} {
		l.insert(info(id))
	}
	owner, ok := l.owner(NodeId(250))
	if !ok {
		t.Fatalf("expected an owner for a key inside the arc")
	}
	if owner.Id != NodeId(200) {
		t.Errorf("expected predecessor 200, got %s", owner.Id)
	}
}

// S6: two peers, ids 10 and 20, k=2 (neither side full). Key 15 is
// equidistant from both (5 each) but owner is a predecessor lookup, not a
// distance tie-break, so the owner is unambiguously 10.
func TestLeafSetOwnerNotFullNeverReturnsNone(t *testing.T) {
	l := newLeafSet(2, info(20))
	l.insert(info(10))
	owner, ok := l.owner(NodeId(15))
	if !ok {
		t.Fatalf("expected a not-full leaf set to always resolve an owner")
	}
	if owner.Id != NodeId(10) {
		t.Errorf("expected owner 10, got %s", owner.Id)
	}
	// A key past self on the empty cw side must still resolve to self, not
	// fall through to the none-found path (that would let the fallback
	// phase forward to closest()==self after the leaf phase already
	// failed to deliver locally — the forbidden inconsistency in §4.3).
	owner, ok = l.owner(NodeId(25))
	if !ok || owner.Id != NodeId(20) {
		t.Errorf("expected self to own the unbounded empty side, got %v, %v", owner, ok)
	}
}

func TestLeafSetOwnerLonePeerOwnsEverything(t *testing.T) {
	l := newLeafSet(2, info(100))
	owner, ok := l.owner(NodeId(999999))
	if !ok || owner.Id != NodeId(100) {
		t.Errorf("expected a lone peer to own every key, got %v, %v", owner, ok)
	}
}

// S1 closest() tie-break: key 350 is equidistant (50) from 300 and 400;
// the clockwise tie-break prefers 400.
func TestLeafSetClosestTieBreak(t *testing.T) {
	l := newLeafSet(2, info(100))
	for _, id := range []uint64{200, 300, 400, 500} {
		l.insert(info(id))
	}
	closest, matched := l.closest(NodeId(350))
	if closest.Id != NodeId(400) {
		t.Errorf("expected tie-break to prefer 400, got %s", closest.Id)
	}
	if matched != closest.Id.CommonPrefixLen(NodeId(350)) {
		t.Errorf("expected matched digit count to reflect the winning entry")
	}
}

func TestLeafSetFurthestRequiresFullSide(t *testing.T) {
	l := newLeafSet(2, info(100))
	l.insert(info(200))
	if _, ok := l.furthestClockwise(); ok {
		t.Errorf("expected furthestClockwise to report false while the side isn't full")
	}
	l.insert(info(300))
	fc, ok := l.furthestClockwise()
	if !ok || fc.Id != NodeId(300) {
		t.Errorf("expected furthestClockwise 300 once full, got %v, %v", fc, ok)
	}
}

func TestLeafSetEntriesIncludesSelfCentered(t *testing.T) {
	l := newLeafSet(2, info(100))
	l.insert(info(200))
	l.insert(info(900))
	got := l.entries()
	want := []NodeId{900, 100, 200}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].Id != id {
			t.Errorf("entry %d: expected %s, got %s", i, id, got[i].Id)
		}
	}
}
