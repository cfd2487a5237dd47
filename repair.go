package overring

import "time"

// repairLeaf implements leaf repair (§4.6). If the leaf set wasn't full,
// removing the failed entry leaves it simply smaller (degraded but
// correct). If it was full, repairLeaf walks the surviving entries on X's
// side outward, pulling their leaf sets via GetNodeState and admitting any
// reachable candidate, until the side is full again or exhausted. Failing
// to refill a full set is an unrecoverable invariant loss (§4.6 step 4):
// the peer panics rather than continue with a silently degraded ring.
func (p *Peer) repairLeaf(x NodeInfo) {
	p.state.Set(UpdatingConnections)

	p.mu.Lock()
	clockwise, hadSide := p.leafSet.sideOf(x.Id)
	wasFull := p.leafSet.full()
	p.leafSet.remove(x.Id)
	p.mu.Unlock()

	if !hadSide || !wasFull {
		p.state.Set(RoutingRequests)
		return
	}

	if !p.refillLeafSide(clockwise, x.Id) {
		panic(throwInvariantViolation("leaf repair", "could not refill leaf set after losing "+x.Id.String()))
	}

	p.state.Set(RoutingRequests)
	p.fanOutFixLeafSet(x)
}

// refillLeafSide walks the surviving entries on the given side, nearest
// first, asking each for its own leaf set and admitting any candidate that
// answers a reachability probe, until the side is full again or every
// surviving neighbor has been consulted with no progress.
func (p *Peer) refillLeafSide(clockwise bool, lost NodeId) bool {
	for {
		p.mu.RLock()
		full := p.leafSet.full()
		before := p.leafSet.len()
		var side []NodeInfo
		if clockwise {
			side = append(side, p.leafSet.cw...)
		} else {
			side = append(side, p.leafSet.ccw...)
		}
		p.mu.RUnlock()
		if full {
			return true
		}
		if len(side) == 0 {
			return false
		}

		for _, y := range side {
			var resp GetNodeStateResponse
			if err := p.call(y.PubAddr, methodGetNodeState, struct{}{}, &resp); err != nil {
				continue
			}
			for _, e := range resp.LeafSet {
				cand := infoOf(e)
				if cand.Id == lost || cand.Id == p.self.Id {
					continue
				}
				if !p.reachable(cand.PubAddr) {
					continue
				}
				p.admit(cand)
			}
		}
		p.mu.RLock()
		full = p.leafSet.full()
		grew := p.leafSet.len() > before
		p.mu.RUnlock()
		if !grew {
			return full
		}
	}
}

// reachable probes pubAddr with a short-lived connection attempt, used by
// leaf repair to avoid admitting a candidate that is itself already dead.
func (p *Peer) reachable(pubAddr string) bool {
	conn, err := p.transport.DialTimeout(pubAddr, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// fanOutFixLeafSet notifies every surviving leaf entry of X's departure so
// each independently verifies and repairs around it (§4.6 step 6).
func (p *Peer) fanOutFixLeafSet(x NodeInfo) {
	req := FixLeafSetRequest{Id: x.Id, PubAddr: x.PubAddr}
	leaf, _ := p.snapshot()
	for _, n := range leaf {
		if n.Id == p.self.Id {
			continue
		}
		var resp struct{}
		if err := p.call(n.PubAddr, methodFixLeafSet, req, &resp); err != nil {
			p.warn("fix leaf set notify to %s failed: %v", n, err)
		}
	}
}

// handleFixLeafSet is the server-side handler for an incoming
// FixLeafSetRequest: if the named peer is still in this peer's own leaf
// set, verify it's actually reachable and run leaf repair if not (§4.6
// step 6's "independently verify and repair").
func (p *Peer) handleFixLeafSet(req FixLeafSetRequest) {
	p.mu.RLock()
	_, present := p.leafSet.sideOf(req.Id)
	p.mu.RUnlock()
	if !present {
		return
	}
	if p.reachable(req.PubAddr) {
		return
	}
	p.repairLeaf(NodeInfo{Id: req.Id, PubAddr: req.PubAddr})
}

// repairTable implements table repair (§4.6): remove X from its cell, then
// walk rows from r onward asking each surviving peer in that row for its
// own entry at (row, c) via GetNodeTableEntry, installing the first
// returned id that isn't X. If row 15 is reached with no replacement the
// cell is simply left empty — routing degrades gracefully to the
// closest-in-row fallback already built into RoutingTable.route.
func (p *Peer) repairTable(x NodeInfo, r, c int) {
	p.mu.Lock()
	p.table.remove(x.Id)
	p.mu.Unlock()

	for row := r; row < digitsPerID; row++ {
		p.mu.RLock()
		peers := p.table.row(row)
		p.mu.RUnlock()

		for _, y := range peers {
			var resp GetNodeTableEntryResponse
			if err := p.call(y.PubAddr, methodGetTableEntry, GetNodeTableEntryRequest{Row: row, Column: c}, &resp); err != nil {
				continue
			}
			if resp.Node != nil && resp.Node.Id != x.Id {
				p.admit(infoOf(*resp.Node))
				return
			}
		}
	}
}
