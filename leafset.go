package overring

import "sort"

// LeafSet holds the 2k peers with ids numerically closest to self, k on each
// side, plus self at the implicit centre. Sides are plain growable slices
// guarded by the caller's lock (peer.go's bundle lock).
//
// ccw and cw are both sorted nearest-to-self first, so the furthest entry on
// each side is always the last element.
type LeafSet struct {
	k    int
	self NodeInfo
	ccw  []NodeInfo
	cw   []NodeInfo
}

func newLeafSet(k int, self NodeInfo) *LeafSet {
	return &LeafSet{k: k, self: self}
}

func indexOfID(entries []NodeInfo, id NodeId) int {
	for i, e := range entries {
		if e.Id == id {
			return i
		}
	}
	return -1
}

// isClockwiseOf reports whether id belongs on self's clockwise side: the
// side reached by the shorter arc walking forward (increasing id) from self.
func isClockwiseOf(self, id NodeId) bool {
	return clockwiseDistance(uint64(self), uint64(id)) < clockwiseDistance(uint64(id), uint64(self))
}

// insert adds info to whichever side it belongs on. An entry already present
// is refreshed in place (its pub_addr may have changed on rejoin). When the
// target side is already at capacity k, the incoming entry either displaces
// the current furthest entry on that side or, if it would land farther out
// than the existing furthest, is dropped. Excluding id == self and
// restricting to the two sides by construction means every other id always
// has a side to land on — the InvariantViolation §4.1 describes for an id
// that cannot be located is unreachable here.
func (l *LeafSet) insert(info NodeInfo) {
	if info.Id == l.self.Id {
		return
	}
	if idx := indexOfID(l.ccw, info.Id); idx >= 0 {
		l.ccw[idx] = info
		return
	}
	if idx := indexOfID(l.cw, info.Id); idx >= 0 {
		l.cw[idx] = info
		return
	}
	if isClockwiseOf(l.self.Id, info.Id) {
		l.cw = insertByDistance(l.cw, info, func(id NodeId) uint64 {
			return clockwiseDistance(uint64(l.self.Id), uint64(id))
		})
		if len(l.cw) > l.k {
			l.cw = l.cw[:l.k]
		}
		return
	}
	l.ccw = insertByDistance(l.ccw, info, func(id NodeId) uint64 {
		return clockwiseDistance(uint64(id), uint64(l.self.Id))
	})
	if len(l.ccw) > l.k {
		l.ccw = l.ccw[:l.k]
	}
}

// insertByDistance inserts info into entries, kept sorted ascending by
// dist(entry.Id), and returns the updated slice. Used for both sides: dist
// is the clockwise distance from self in the direction that side grows.
func insertByDistance(entries []NodeInfo, info NodeInfo, dist func(NodeId) uint64) []NodeInfo {
	d := dist(info.Id)
	i := sort.Search(len(entries), func(i int) bool { return dist(entries[i].Id) >= d })
	entries = append(entries, NodeInfo{})
	copy(entries[i+1:], entries[i:])
	entries[i] = info
	return entries
}

// remove excises id from whichever side holds it. Removing self would be an
// invariant violation (§8 invariant 1: every peer's leaf set contains
// itself); the caller is expected to panic with the returned error.
func (l *LeafSet) remove(id NodeId) error {
	if id == l.self.Id {
		return throwInvariantViolation("leafset.remove", "self may never be removed from its own leaf set")
	}
	if idx := indexOfID(l.ccw, id); idx >= 0 {
		l.ccw = append(l.ccw[:idx], l.ccw[idx+1:]...)
		return nil
	}
	if idx := indexOfID(l.cw, id); idx >= 0 {
		l.cw = append(l.cw[:idx], l.cw[idx+1:]...)
		return nil
	}
	return errNodeNotFound
}

// sideOf reports which side id occupies, used by leaf repair (§4.6) to
// decide which direction to walk outward after a forwarding failure.
func (l *LeafSet) sideOf(id NodeId) (clockwise bool, ok bool) {
	if indexOfID(l.ccw, id) >= 0 {
		return false, true
	}
	if indexOfID(l.cw, id) >= 0 {
		return true, true
	}
	return false, false
}

// full reports whether both sides hold exactly k entries.
func (l *LeafSet) full() bool {
	return len(l.ccw) == l.k && len(l.cw) == l.k
}

// owner returns the entry whose id is the clockwise predecessor of key
// within the leaf-set arc [first.id, last.id], or false if key lies outside
// that arc (§4.1). When the set is not full, the arc isn't yet bounded —
// there's nothing known beyond the populated sides, so self stands in for
// every gap and every key resolves to some entry (never false).
func (l *LeafSet) owner(key NodeId) (NodeInfo, bool) {
	if len(l.ccw) == 0 && len(l.cw) == 0 {
		return l.self, true
	}
	if l.full() {
		first := l.ccw[len(l.ccw)-1].Id
		last := l.cw[len(l.cw)-1].Id
		if !inClosedRange(uint64(first), uint64(last), uint64(key)) {
			return NodeInfo{}, false
		}
	}
	best := l.self
	bestD := clockwiseDistance(uint64(best.Id), uint64(key))
	consider := func(e NodeInfo) {
		d := clockwiseDistance(uint64(e.Id), uint64(key))
		if d < bestD {
			bestD = d
			best = e
		}
	}
	for _, e := range l.ccw {
		consider(e)
	}
	for _, e := range l.cw {
		consider(e)
	}
	return best, true
}

// closest returns the entry minimizing ring distance to key, tie-breaking
// clockwise, together with the length of the shared id prefix (§4.1). Self
// is always a candidate, so this never fails to produce an answer.
func (l *LeafSet) closest(key NodeId) (NodeInfo, int) {
	best := l.self
	bestD := distance(uint64(best.Id), uint64(key))
	consider := func(e NodeInfo) {
		d := distance(uint64(e.Id), uint64(key))
		if d < bestD || (d == bestD && closerClockwise(uint64(key), uint64(e.Id), uint64(best.Id))) {
			bestD = d
			best = e
		}
	}
	for _, e := range l.ccw {
		consider(e)
	}
	for _, e := range l.cw {
		consider(e)
	}
	return best, best.Id.CommonPrefixLen(key)
}

// furthestClockwise returns the edge entry on the clockwise side, or false
// if that side isn't yet full.
func (l *LeafSet) furthestClockwise() (NodeInfo, bool) {
	if len(l.cw) < l.k {
		return NodeInfo{}, false
	}
	return l.cw[len(l.cw)-1], true
}

// furthestCounterClockwise mirrors furthestClockwise for the ccw side. The
// join protocol's fixed displacement rule (§4.5, §9) drops exactly this
// entry from a full terminal hop's JoinResponse.
func (l *LeafSet) furthestCounterClockwise() (NodeInfo, bool) {
	if len(l.ccw) < l.k {
		return NodeInfo{}, false
	}
	return l.ccw[len(l.ccw)-1], true
}

// entries returns the full centered set including self, ccw furthest-first
// through cw furthest-last, for GetNodeState's wire response ("leaf_set is
// the full centered set including self").
func (l *LeafSet) entries() []NodeInfo {
	out := make([]NodeInfo, 0, len(l.ccw)+len(l.cw)+1)
	for i := len(l.ccw) - 1; i >= 0; i-- {
		out = append(out, l.ccw[i])
	}
	out = append(out, l.self)
	out = append(out, l.cw...)
	return out
}

// len reports the total entry count including self.
func (l *LeafSet) len() int {
	return len(l.ccw) + len(l.cw) + 1
}
