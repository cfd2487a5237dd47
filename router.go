package overring

// MaxHops bounds the forwarding path length: once a message's hop counter
// would exceed MaxHops it is treated as unroutable rather than forwarded
// forever.
const MaxHops = digitsPerID

// routeOutcome is the result of running the routing cascade for one hop.
type routeOutcome int

const (
	// delivered means self is the owner; the caller should execute locally.
	delivered routeOutcome = iota
	// forward means the message should be sent on to Next.
	forward
	// unroutable means the cascade exhausted every phase — an invariant
	// violation, since the fallback phase guarantees a non-self answer
	// whenever self is not the true owner.
	unroutable
)

// hopSource names which phase of the cascade produced a forward decision,
// so a caller whose RPC to that hop fails knows whether to run leaf repair
// or table repair (§4.6) — the two have different remediation strategies.
type hopSource int

const (
	sourceNone hopSource = iota
	sourceLeaf
	sourceTable
	sourceFallback
)

// route runs the three-phase cascade of §4.3 against a single peer's local
// state: leaf set, then routing table, then the closest-leaf fallback when
// the table yields no non-self hop. When a forward to a table-phase hop
// fails transport-wise, the caller runs the fallback phase itself
// (forwardFallback), since only the caller knows whether that hop was
// reachable.
//
// It returns the phase's outcome, the next hop (when forward), the
// matched-digit count to carry on the forwarded message, and which phase
// produced the hop.
func route(leaf *LeafSet, table *RoutingTable, key NodeId, minMatched int) (routeOutcome, NodeInfo, int, hopSource) {
	if owner, ok := leaf.owner(key); ok {
		if owner.Id == leaf.self.Id {
			return delivered, NodeInfo{}, 0, sourceNone
		}
		return forward, owner, minMatched, sourceLeaf
	}
	if next, matched, ok := table.route(key, minMatched); ok {
		if next.Id != leaf.self.Id {
			return forward, next, matched, sourceTable
		}
	}
	outcome, next, matched := routeFallback(leaf, key)
	if outcome == forward {
		return outcome, next, matched, sourceFallback
	}
	return outcome, next, matched, sourceNone
}

// routeFallback implements §4.3 phase 3. Forwarding to a non-self closest
// entry is the only acceptable outcome; closest() landing on self here
// means the leaf set disagrees with itself (owner() said no one local owns
// key, yet closest() says self is nearest) — an invariant violation worth
// crashing for, per §4.3's explicit callout.
func routeFallback(leaf *LeafSet, key NodeId) (routeOutcome, NodeInfo, int) {
	closest, matched := leaf.closest(key)
	if closest.Id == leaf.self.Id {
		return unroutable, NodeInfo{}, 0
	}
	return forward, closest, matched
}
