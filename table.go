package overring

// RoutingTable is the growable list of prefix-indexed rows. Row r has 16
// cells; cell (r,c) holds the one known entry whose id shares the first r
// digits with self and whose (r+1)'th digit equals c. Rows are materialized
// lazily, up to the longest stored prefix plus one.
type RoutingTable struct {
	self NodeId
	rows [][16]*NodeInfo
}

func newRoutingTable(self NodeId) *RoutingTable {
	return &RoutingTable{self: self}
}

func (t *RoutingTable) growTo(rowCount int) {
	for len(t.rows) < rowCount {
		t.rows = append(t.rows, [16]*NodeInfo{})
	}
}

// insert computes r = shared prefix length with self and writes cell
// (r, digit_{r+1}(id)), overwriting silently. An id identical to self (r ==
// digitsPerID) is a no-op — there is no column to write into.
func (t *RoutingTable) insert(info NodeInfo) {
	r := t.self.CommonPrefixLen(info.Id)
	if r >= digitsPerID {
		return
	}
	t.growTo(r + 1)
	c := info.Id.Digit(r)
	entry := info
	t.rows[r][c] = &entry
}

// remove locates id by the same row/column computation used by insert and
// clears the cell, if the row has been materialized.
func (t *RoutingTable) remove(id NodeId) {
	r := t.self.CommonPrefixLen(id)
	if r >= digitsPerID || r >= len(t.rows) {
		return
	}
	c := id.Digit(r)
	if t.rows[r][c] != nil && t.rows[r][c].Id == id {
		t.rows[r][c] = nil
	}
}

// entryAt returns the occupant of cell (r,c), used by table repair's
// get-table-entry probe (§4.6) and by GetNodeTableEntry.
func (t *RoutingTable) entryAt(r, c int) (NodeInfo, bool) {
	if r < 0 || r >= len(t.rows) || c < 0 || c >= 16 {
		return NodeInfo{}, false
	}
	e := t.rows[r][c]
	if e == nil {
		return NodeInfo{}, false
	}
	return *e, true
}

// route resolves the next hop for key given the minimum matched-digit count
// already established along the forwarding path (§4.2). r is the larger of
// the shared prefix of self and key and minMatched; if that row hasn't been
// materialized there is nothing to forward to. If the exact cell is empty,
// the fallback is the occupant of row r closest in ring distance to SELF
// (not to key — §9 records this as the final design's deliberate choice
// over the earlier to-the-key variant, because it preserves the
// same-or-longer-prefix guarantee route() promises its caller).
func (t *RoutingTable) route(key NodeId, minMatched int) (NodeInfo, int, bool) {
	r := t.self.CommonPrefixLen(key)
	if minMatched > r {
		r = minMatched
	}
	if r >= len(t.rows) {
		return NodeInfo{}, 0, false
	}
	d := key.Digit(r)
	if e := t.rows[r][d]; e != nil {
		return *e, r, true
	}
	var best *NodeInfo
	var bestDist uint64
	for i := range t.rows[r] {
		e := t.rows[r][i]
		if e == nil {
			continue
		}
		dist := distance(uint64(t.self), uint64(e.Id))
		if best == nil || dist < bestDist {
			best = e
			bestDist = dist
		}
	}
	if best == nil {
		return NodeInfo{}, 0, false
	}
	return *best, r, true
}

// row returns the occupied entries of row r, used by join's routing_table
// accumulation ("merge C's rows [matched_digits..] into the message") and
// by table repair's row walk.
func (t *RoutingTable) row(r int) []NodeInfo {
	if r < 0 || r >= len(t.rows) {
		return nil
	}
	var out []NodeInfo
	for _, e := range t.rows[r] {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// rowsFrom returns every occupied entry from row `from` onward, the shape
// join needs to merge "rows [matched_digits..]" into the accumulated
// routing table in one pass.
func (t *RoutingTable) rowsFrom(from int) []NodeInfo {
	var out []NodeInfo
	for r := from; r < len(t.rows); r++ {
		out = append(out, t.row(r)...)
	}
	return out
}

// rowsMaterialized reports how many rows have been grown so far.
func (t *RoutingTable) rowsMaterialized() int {
	return len(t.rows)
}

// entries returns every occupied cell across the whole table, used by
// AnnounceArrival fan-out after a join completes (§4.5 step 4).
func (t *RoutingTable) entries() []NodeInfo {
	var out []NodeInfo
	for r := range t.rows {
		out = append(out, t.row(r)...)
	}
	return out
}
