/* Package overring implements a Pastry-style structured overlay: a ring of
peers identified by 64-bit ids, routed in O(log16 N) hops via a leaf set
plus a sparse prefix routing table.

Getting Started

A peer needs an identity, a leaf-set half-width, and a transport to listen
and dial on. The first peer in a ring bootstraps itself; every later peer
joins through a known address.

	info, err := overring.NewNodeInfo("/ip4/0.0.0.0/tcp/4001")
	if err != nil {
		panic(err)
	}
	peer := overring.NewPeer(info, 8, overring.NewTCPTransport())
	go peer.Serve()
	peer.Bootstrap() // or peer.Join("/ip4/.../tcp/4001") against a known peer

	resp, err := peer.Query(overring.QuerySet, overring.IdFromBytes([]byte("key")), []byte("value"))

Lifecycle

A Peer moves through Uninitialized, Initializing, UpdatingConnections, and
RoutingRequests. Every RPC except GetNodeId waits until the peer reaches
RoutingRequests before it is served; Join holds a peer in Initializing until
its handoff completes, and leaf repair passes back through
UpdatingConnections while it rebuilds the leaf set.

Failure Handling

There is no heartbeat. A forwarding failure against a leaf entry or a
routing table entry triggers leaf repair or table repair respectively, and
an unroutable fallback — every peer claiming not to own a key it is
nearest to — is treated as an invariant violation worth panicking over
rather than silently misrouting.
*/
package overring
