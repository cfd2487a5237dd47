package overring

import "sync"

// PeerState enumerates the lifecycle states a Peer moves through (spec
// §3/§4.4). The zero value is Uninitialized.
type PeerState int

const (
	Uninitialized PeerState = iota
	Initializing
	UpdatingConnections
	RoutingRequests
)

func (s PeerState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Initializing:
		return "Initializing"
	case UpdatingConnections:
		return "UpdatingConnections"
	case RoutingRequests:
		return "RoutingRequests"
	default:
		return "Unknown"
	}
}

// stateCell guards PeerState with a mutex and a broadcast notify
// primitive: every waiter re-reads the state after each wake, so spurious
// wakeups are harmless. sync.Cond is the direct stdlib fit for a
// level-triggered wait/notify loop — broadcast-on-every-transition plus a
// condition re-check loop is exactly what Cond.Wait/Broadcast model.
type stateCell struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value PeerState
}

func newStateCell() *stateCell {
	c := &stateCell{value: Uninitialized}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Get returns the current state.
func (c *stateCell) Get() PeerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set transitions to a new state and wakes every waiter so they can
// re-evaluate their predicate.
func (c *stateCell) Set(s PeerState) {
	c.mu.Lock()
	c.value = s
	c.mu.Unlock()
	c.cond.Broadcast()
}

// WaitFor blocks until the state equals target, re-checking on every wake
// (the notify primitive is level-triggered from the reader's perspective,
// per §4.4/§9). There is no timeout at this layer; callers that need one
// wrap this in a goroutine and select against a timer.
func (c *stateCell) WaitFor(target PeerState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.value != target {
		c.cond.Wait()
	}
}
