package overring

import "sort"

// Bootstrap starts a peer as the sole member of a brand-new ring: there is
// no one to join, so it moves straight to RoutingRequests with an empty
// leaf set and routing table (self is always its own leaf set entry by
// construction, per §8 invariant 1).
func (p *Peer) Bootstrap() {
	p.state.Set(RoutingRequests)
}

// Join drives the peer through the join protocol of §4.5 against a known
// bootstrap address: send Join, merge the response into local state, pull
// the terminal peer's key handoff, then announce arrival to every peer it
// learned of. On return the peer is RoutingRequests.
func (p *Peer) Join(bootstrapAddr string) error {
	p.state.Set(Initializing)

	req := JoinRequest{Id: p.self.Id, PubAddr: p.self.PubAddr}
	var resp JoinResponse
	if err := p.call(bootstrapAddr, methodJoin, req, &resp); err != nil {
		return err
	}

	terminal := NodeInfo{Id: resp.Id, PubAddr: resp.PubAddr}
	for _, n := range infosOf(resp.LeafSet) {
		p.admit(n)
	}
	for _, n := range infosOf(resp.RoutingTable) {
		p.admit(n)
	}

	if err := p.pullHandoff(terminal); err != nil {
		return err
	}

	p.state.Set(RoutingRequests)
	p.announceArrival(terminal)
	return nil
}

// handleJoin is the server-side handler for an incoming JoinRequest (§4.5
// step 2). It merges its own routing table rows into the message, then
// either answers as the terminal hop (if its leaf set owns req.Id) or
// forwards on via the routing cascade, recursing by calling Join on the
// next hop exactly as the originating peer would.
func (p *Peer) handleJoin(req JoinRequest) (JoinResponse, error) {
	merged := mergeEntries(req.RoutingTable, p.tableRowsFrom(req.MatchedDigits))
	req.RoutingTable = merged

	var resp JoinResponse
	delivered, err := p.forwardCascade(req.Id, req.MatchedDigits, func(hop NodeInfo, matched int) error {
		fwd := req
		fwd.MatchedDigits = matched
		fwd.Hops++
		if fwd.Hops > MaxHops {
			panic(throwInvariantViolation("join", "hop count exceeded MaxHops"))
		}
		var hopResp JoinResponse
		if err := p.call(hop.PubAddr, methodJoin, fwd, &hopResp); err != nil {
			return err
		}
		resp = hopResp
		return nil
	})
	if err != nil {
		return JoinResponse{}, err
	}
	if delivered {
		return p.terminalJoinResponse(req), nil
	}
	return resp, nil
}

// terminalJoinResponse builds the response for the hop whose leaf set owns
// the joining peer's id: its own leaf set (minus the furthest
// counter-clockwise entry when full, since the joiner will occupy that
// slot — the fixed displacement rule §9 settles on), the accumulated
// routing table, and its own identity as the terminal peer for handoff.
func (p *Peer) terminalJoinResponse(req JoinRequest) JoinResponse {
	p.mu.RLock()
	leaf := p.leafSet.entries()
	if furthest, ok := p.leafSet.furthestCounterClockwise(); ok {
		leaf = without(leaf, furthest.Id)
	}
	p.mu.RUnlock()

	return JoinResponse{
		Id:           p.self.Id,
		PubAddr:      p.self.PubAddr,
		Hops:         req.Hops,
		LeafSet:      entriesOf(leaf),
		RoutingTable: req.RoutingTable,
	}
}

// announceArrival notifies every peer this peer learned of during join,
// per §4.5 step 4. Best-effort: a single unreachable recipient doesn't
// abort the rest of the fan-out.
func (p *Peer) announceArrival(terminal NodeInfo) {
	req := AnnounceArrivalRequest{Id: p.self.Id, PubAddr: p.self.PubAddr}
	leaf, table := p.snapshot()
	seen := map[NodeId]bool{p.self.Id: true}
	announce := func(n NodeInfo) {
		if seen[n.Id] {
			return
		}
		seen[n.Id] = true
		var resp struct{}
		if err := p.call(n.PubAddr, methodAnnounceArrival, req, &resp); err != nil {
			p.warn("announce arrival to %s failed: %v", n, err)
		}
	}
	for _, n := range leaf {
		announce(n)
	}
	for _, n := range table {
		announce(n)
	}
}

// mergeEntries set-unions a carried NodeEntry list with a freshly read
// NodeInfo list by id, keeping the result sorted for a deterministic wire
// representation (§4.5 step 2a).
func mergeEntries(carried []NodeEntry, fresh []NodeInfo) []NodeEntry {
	byID := make(map[NodeId]NodeEntry, len(carried)+len(fresh))
	for _, e := range carried {
		byID[e.Id] = e
	}
	for _, n := range fresh {
		if _, ok := byID[n.Id]; !ok {
			byID[n.Id] = entryOf(n)
		}
	}
	out := make([]NodeEntry, 0, len(byID))
	for _, e := range byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func without(entries []NodeInfo, id NodeId) []NodeInfo {
	out := make([]NodeInfo, 0, len(entries))
	for _, e := range entries {
		if e.Id != id {
			out = append(out, e)
		}
	}
	return out
}
