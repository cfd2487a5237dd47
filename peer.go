package overring

import (
	"log"
	"net"
	"os"
	"sync"
)

// Log verbosity levels. LogLevelDebug is the most verbose; LogLevelError the
// least.
const (
	LogLevelDebug = iota
	LogLevelWarn
	LogLevelError
)

// Peer is one node in the ring: its identity, lifecycle state, routing
// state, local store, transport, and logger. It is the unit the RPC
// service, join, repair, and handoff logic all operate on.
//
// Five cells make up a Peer's mutable state: state.go's stateCell covers
// the state name and state-changed notify. Of the remaining three, leafSet
// and table are plain unsynchronized structures — mu guards both together,
// since routing decisions read them as a pair. Store keeps its own RWMutex
// (store.go) rather than folding under mu: it is exercised independently by
// the handoff path scanning for keys to transfer while a query on a
// different key only ever touches leafSet/table, and giving it its own lock
// keeps it testable in isolation.
type Peer struct {
	self      NodeInfo
	k         int
	transport Transport

	state *stateCell

	mu      sync.RWMutex
	leafSet *LeafSet
	table   *RoutingTable

	store *Store

	log      *log.Logger
	logLevel int
}

// NewPeer constructs a Peer centered on self with a leaf set of the given
// half-width k, using the given Transport for all outbound and inbound
// connections. The Peer starts Uninitialized; callers drive it to
// RoutingRequests via Bootstrap (fresh ring) or Join (existing ring).
func NewPeer(self NodeInfo, k int, transport Transport) *Peer {
	return &Peer{
		self:      self,
		k:         k,
		transport: transport,
		state:     newStateCell(),
		leafSet:   newLeafSet(k, self),
		table:     newRoutingTable(self.Id),
		store:     newStore(),
		log:       log.New(os.Stdout, "overring("+self.Id.String()+") ", log.LstdFlags),
		logLevel:  LogLevelWarn,
	}
}

// SetLogger replaces the Peer's logger.
func (p *Peer) SetLogger(l *log.Logger) { p.log = l }

// SetLogLevel sets the verbosity threshold for debug/warn/err.
func (p *Peer) SetLogLevel(level int) { p.logLevel = level }

func (p *Peer) debug(format string, v ...interface{}) {
	if p.logLevel <= LogLevelDebug {
		p.log.Printf(format, v...)
	}
}

func (p *Peer) warn(format string, v ...interface{}) {
	if p.logLevel <= LogLevelWarn {
		p.log.Printf(format, v...)
	}
}

func (p *Peer) err(format string, v ...interface{}) {
	if p.logLevel <= LogLevelError {
		p.log.Printf(format, v...)
	}
}

// Self returns the peer's own identity.
func (p *Peer) Self() NodeInfo { return p.self }

// State returns the peer's current lifecycle state.
func (p *Peer) State() PeerState { return p.state.Get() }

// snapshot returns a consistent copy of the centered leaf set and the full
// routing table entry list, used to answer GetNodeState and to pick the
// recipients of the AnnounceArrival and FixLeafSet fan-outs.
func (p *Peer) snapshot() (leaf []NodeInfo, table []NodeInfo) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.leafSet.entries(), p.table.entries()
}

// routeLocal runs the three-phase cascade (router.go) against this peer's
// current leaf set and routing table.
func (p *Peer) routeLocal(key NodeId, minMatched int) (routeOutcome, NodeInfo, int, hopSource) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return route(p.leafSet, p.table, key, minMatched)
}

// forwardCascade runs the three-phase routing cascade for key, calling send
// once per candidate hop it names, and implements §4.3's per-phase failure
// handling: a failed leaf-phase forward runs leaf repair and retries the
// leaf phase against the corrected leaf set; a failed table-phase forward
// triggers table repair in the background and falls through to the
// fallback phase without retrying the table; a failed fallback-phase
// forward runs leaf repair and is returned to the caller, since there is
// no further phase to fall through to.
//
// send receives the candidate hop and the matched-digit count to carry
// forward on the next message, and returns the error from attempting the
// RPC against that hop (nil on success). forwardCascade returns (true,
// nil) when self owns key, (false, nil) once some hop accepts the
// forward, or (false, err) if every phase's candidate failed.
func (p *Peer) forwardCascade(key NodeId, minMatched int, send func(NodeInfo, int) error) (bool, error) {
	matched := minMatched
	for {
		outcome, hop, m, source := p.routeLocal(key, matched)
		if outcome == delivered {
			return true, nil
		}
		if outcome == unroutable {
			panic(throwInvariantViolation("route", "fallback landed on self"))
		}
		matched = m

		sendErr := send(hop, matched)
		if sendErr == nil {
			return false, nil
		}

		switch source {
		case sourceLeaf:
			p.repairLeaf(hop)
			// leaf set corrected; retry the leaf phase from the top
		case sourceTable:
			r := p.self.Id.CommonPrefixLen(hop.Id)
			c := int(hop.Id.Digit(r))
			go p.repairTable(hop, r, c)
			return p.forwardFallback(key, send)
		case sourceFallback:
			go p.repairLeaf(hop)
			return false, sendErr
		}
	}
}

// forwardFallback runs the fallback phase directly against the leaf set,
// used when the table phase's forward fails and falls through without
// retrying the table (§4.3 phase 2 → phase 3).
func (p *Peer) forwardFallback(key NodeId, send func(NodeInfo, int) error) (bool, error) {
	p.mu.RLock()
	outcome, closest, matched := routeFallback(p.leafSet, key)
	p.mu.RUnlock()
	if outcome != forward {
		panic(throwInvariantViolation("route", "fallback landed on self"))
	}
	if err := send(closest, matched); err != nil {
		go p.repairLeaf(closest)
		return false, err
	}
	return false, nil
}

// admit folds a newly learned peer into both the leaf set and the routing
// table, the combined update every RPC handler performs when it learns of a
// live peer (§4.4: "every successful contact with a peer updates both the
// leaf set and routing table entries for it").
func (p *Peer) admit(info NodeInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leafSet.insert(info)
	p.table.insert(info)
}

// forget removes a peer from both the leaf set and routing table, e.g. when
// a dial to it fails during repair.
func (p *Peer) forget(id NodeId) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leafSet.remove(id)
	p.table.remove(id)
}

// tableEntryAt returns the occupant of routing table cell (r,c), serving
// GetNodeTableEntry and the table-repair row walk.
func (p *Peer) tableEntryAt(r, c int) (NodeInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table.entryAt(r, c)
}

// tableRowsFrom returns every routing table entry from row `from` onward,
// used when accumulating a join message's carried routing table.
func (p *Peer) tableRowsFrom(from int) []NodeInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table.rowsFrom(from)
}

// leafFurthest returns the furthest clockwise/counter-clockwise leaf set
// entries under the bundle lock; each ok flag is false while that side
// holds fewer than k entries.
func (p *Peer) leafFurthest() (cw NodeInfo, cwOK bool, ccw NodeInfo, ccwOK bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cw, cwOK = p.leafSet.furthestClockwise()
	ccw, ccwOK = p.leafSet.furthestCounterClockwise()
	return
}

// dial opens a connection to a peer's published address using this Peer's
// transport and the package's default bounded retry budget.
func (p *Peer) dial(pubAddr string) (net.Conn, error) {
	return dialDefault(p.transport, pubAddr)
}
