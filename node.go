package overring

import (
	ma "github.com/multiformats/go-multiaddr"
)

// NodeInfo identifies a peer: its ring id and the multiaddr other peers dial
// to reach it. Clones are cheap and freely copied — NodeInfo holds no
// pointers to mutable state. Keeping connections out of the identity lets
// every call dial lazily instead of caching a socket that may have gone
// stale.
type NodeInfo struct {
	Id      NodeId
	PubAddr string
}

// NewNodeInfo builds a NodeInfo whose Id is derived from PubAddr per the
// canonical hash rule (§6), validating that PubAddr parses as a multiaddr.
func NewNodeInfo(pubAddr string) (NodeInfo, error) {
	if _, err := ma.NewMultiaddr(pubAddr); err != nil {
		return NodeInfo{}, throwConfigError("pub_addr", err.Error())
	}
	return NodeInfo{
		Id:      IdFromBytes([]byte(pubAddr)),
		PubAddr: pubAddr,
	}, nil
}

// Equals reports whether two NodeInfo values name the same peer.
func (n NodeInfo) Equals(other NodeInfo) bool {
	return n.Id == other.Id
}

// String renders the NodeInfo as "<id>@<pub_addr>" for logging.
func (n NodeInfo) String() string {
	return n.Id.String() + "@" + n.PubAddr
}
