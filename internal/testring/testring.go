// Package testring is an in-process network simulator used by the package
// root's integration tests. It wires N real overring.Peer values
// together over actual TCP on loopback, since the routing, join, and
// repair logic all depend on genuine RPC round trips rather than anything
// a mock transport could stand in for.
package testring

import (
	"fmt"
	"net"
	"time"

	"github.com/ringkv/overring"
)

// Ring is a set of peers serving on loopback, wired together for a test.
type Ring struct {
	Peers []*overring.Peer
}

// New starts n peers on free loopback ports, bootstraps the first, and
// joins the rest one at a time through the first. It blocks until every
// peer reports RoutingRequests.
func New(n int, k int) (*Ring, error) {
	r := &Ring{}
	for i := 0; i < n; i++ {
		addr, err := freeLoopbackMultiaddr()
		if err != nil {
			return nil, err
		}
		info, err := overring.NewNodeInfo(addr)
		if err != nil {
			return nil, err
		}
		peer := overring.NewPeer(info, k, overring.NewTCPTransport())
		go peer.Serve()
		r.Peers = append(r.Peers, peer)
	}

	// Give each listener a moment to come up before anyone dials it.
	time.Sleep(50 * time.Millisecond)

	r.Peers[0].Bootstrap()
	for i := 1; i < n; i++ {
		if err := r.Peers[i].Join(r.Peers[0].Self().PubAddr); err != nil {
			return nil, fmt.Errorf("peer %d join: %w", i, err)
		}
	}
	return r, nil
}

// WaitRouting blocks (with a timeout) until every peer in the ring reports
// RoutingRequests, the state Join/Bootstrap drive a peer to once it's
// usable.
func (r *Ring) WaitRouting(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for _, p := range r.Peers {
		for p.State() != overring.RoutingRequests {
			if time.Now().After(deadline) {
				return fmt.Errorf("peer %s never reached RoutingRequests (stuck at %s)", p.Self().Id, p.State())
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	return nil
}

// freeLoopbackMultiaddr asks the OS for an ephemeral port by opening and
// immediately closing a listener, then formats it as a TCP multiaddr —
// the address scheme every NodeInfo/PubAddr in this package expects.
func freeLoopbackMultiaddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port
	return fmt.Sprintf("/ip4/127.0.0.1/tcp/%d", port), nil
}
