package overring

import "encoding/json"

// rpc.go defines the wire request/response records for the eight RPCs the
// ring exposes. Each call JSON-encodes one envelope per TCP connection,
// carrying a method name plus the per-call payload so a single connection
// can serve any of the eight distinct call signatures.

// rpcMethod names the RPC being invoked, carried in every envelope so the
// receiving peer's service.go dispatcher can decode the right payload type.
type rpcMethod string

const (
	methodGetNodeId       rpcMethod = "GetNodeId"
	methodGetNodeState    rpcMethod = "GetNodeState"
	methodGetTableEntry   rpcMethod = "GetNodeTableEntry"
	methodJoin            rpcMethod = "Join"
	methodQuery           rpcMethod = "Query"
	methodAnnounceArrival rpcMethod = "AnnounceArrival"
	methodFixLeafSet      rpcMethod = "FixLeafSet"
	methodTransferKeys    rpcMethod = "TransferKeys"
)

// envelope is the single record written to the wire for a unary call: a
// method tag plus the opaque (already-marshaled) payload. The response uses
// the same shape, with Error set instead of Payload on failure.
type envelope struct {
	Method  rpcMethod       `json:"method,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NodeEntry is the wire form of a peer identity (§6).
type NodeEntry struct {
	Id      NodeId `json:"id"`
	PubAddr string `json:"pub_addr"`
}

func entryOf(n NodeInfo) NodeEntry { return NodeEntry{Id: n.Id, PubAddr: n.PubAddr} }
func infoOf(e NodeEntry) NodeInfo  { return NodeInfo{Id: e.Id, PubAddr: e.PubAddr} }

func entriesOf(ns []NodeInfo) []NodeEntry {
	out := make([]NodeEntry, len(ns))
	for i, n := range ns {
		out[i] = entryOf(n)
	}
	return out
}

func infosOf(es []NodeEntry) []NodeInfo {
	out := make([]NodeInfo, len(es))
	for i, e := range es {
		out[i] = infoOf(e)
	}
	return out
}

// GetNodeIdResponse is the reply to GetNodeId().
type GetNodeIdResponse struct {
	Id NodeId `json:"id"`
}

// GetNodeStateResponse is the reply to GetNodeState(): the full centered
// leaf set including self.
type GetNodeStateResponse struct {
	Id      NodeId      `json:"id"`
	LeafSet []NodeEntry `json:"leaf_set"`
}

// GetNodeTableEntryRequest selects a single routing table cell.
type GetNodeTableEntryRequest struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// GetNodeTableEntryResponse carries the cell's occupant, if any.
type GetNodeTableEntryResponse struct {
	Node *NodeEntry `json:"node,omitempty"`
}

// JoinRequest is carried along the join path, accumulating routing table
// rows as it is forwarded (§4.5).
type JoinRequest struct {
	Id           NodeId      `json:"id"`
	PubAddr      string      `json:"pub_addr"`
	MatchedDigits int        `json:"matched_digits"`
	RoutingTable []NodeEntry `json:"routing_table"`
	Hops         int         `json:"hops"`
}

// JoinResponse is returned by the terminal hop of a join.
type JoinResponse struct {
	Id           NodeId      `json:"id"`
	PubAddr      string      `json:"pub_addr"`
	Hops         int         `json:"hops"`
	LeafSet      []NodeEntry `json:"leaf_set"`
	RoutingTable []NodeEntry `json:"routing_table"`
}

// QueryType enumerates the three query operations (§4.8).
type QueryType string

const (
	QueryGet    QueryType = "Get"
	QuerySet    QueryType = "Set"
	QueryDelete QueryType = "Delete"
)

// QueryRequest carries one key/value operation through the routing engine.
type QueryRequest struct {
	FromId        NodeId    `json:"from_id"`
	MatchedDigits int       `json:"matched_digits"`
	Hops          int       `json:"hops"`
	Type          QueryType `json:"query_type"`
	Key           NodeId    `json:"key"`
	Value         []byte    `json:"value,omitempty"`
}

// QueryResponse carries the outcome, with application errors in-band
// (§7: application errors never surface as transport failures).
type QueryResponse struct {
	FromId NodeId           `json:"from_id"`
	Hops   int              `json:"hops"`
	Key    NodeId           `json:"key"`
	Value  []byte           `json:"value,omitempty"`
	Error  ApplicationError `json:"error,omitempty"`
}

// AnnounceArrivalRequest announces a new peer to an existing one (§4.5 step 5).
type AnnounceArrivalRequest struct {
	Id      NodeId `json:"id"`
	PubAddr string `json:"pub_addr"`
}

// FixLeafSetRequest notifies a surviving leaf entry to verify and repair
// around a departed peer (§4.6 step 6).
type FixLeafSetRequest struct {
	Id      NodeId `json:"id"`
	PubAddr string `json:"pub_addr"`
}

// TransferKeysRequest opens the server-streamed key handoff (§4.7).
type TransferKeysRequest struct {
	Id NodeId `json:"id"`
}

// TransferKeysEntry is one streamed (key, value) pair. Done marks the final
// record on the stream, since the wire framing here is a bare sequence of
// JSON values with no length-prefixing or explicit stream-close frame.
type TransferKeysEntry struct {
	Key   NodeId `json:"key,omitempty"`
	Value []byte `json:"value,omitempty"`
	Done  bool   `json:"done,omitempty"`
}
