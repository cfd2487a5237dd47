package overring

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Serve accepts connections on the Peer's own published address and
// dispatches each to handleConn, one goroutine per connection. Serve
// blocks until the listener errors or is closed; callers run it in its
// own goroutine.
func (p *Peer) Serve() error {
	ln, err := p.transport.Listen(p.self.PubAddr)
	if err != nil {
		return err
	}
	defer ln.Close()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go p.handleConn(conn)
	}
}

// handleConn decodes a single request envelope, dispatches it, and writes
// back a response envelope. RoutingRequests-gated RPCs block in dispatch
// until the peer reaches that state rather than rejecting early calls.
func (p *Peer) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(defaultDialPerAttempt))

	var req envelope
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		p.err("decoding request envelope: %v", err)
		return
	}

	resp, stream := p.dispatch(req)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		p.err("encoding response envelope: %v", err)
		return
	}
	if stream != nil {
		stream(conn)
	}
}

// dispatch runs the method named in req and returns the response envelope
// to write back. For TransferKeys it additionally returns a function that
// streams the key/value entries after the envelope handshake.
func (p *Peer) dispatch(req envelope) (envelope, func(net.Conn)) {
	switch req.Method {
	case methodGetNodeId:
		return okEnvelope(GetNodeIdResponse{Id: p.self.Id}), nil

	case methodGetNodeState:
		p.state.WaitFor(RoutingRequests)
		leaf, _ := p.snapshot()
		return okEnvelope(GetNodeStateResponse{Id: p.self.Id, LeafSet: entriesOf(leaf)}), nil

	case methodGetTableEntry:
		p.state.WaitFor(RoutingRequests)
		var q GetNodeTableEntryRequest
		if err := json.Unmarshal(req.Payload, &q); err != nil {
			return errEnvelope(err), nil
		}
		entry, ok := p.tableEntryAt(q.Row, q.Column)
		resp := GetNodeTableEntryResponse{}
		if ok {
			e := entryOf(entry)
			resp.Node = &e
		}
		return okEnvelope(resp), nil

	case methodJoin:
		p.state.WaitFor(RoutingRequests)
		var q JoinRequest
		if err := json.Unmarshal(req.Payload, &q); err != nil {
			return errEnvelope(err), nil
		}
		resp, err := p.handleJoin(q)
		if err != nil {
			return errEnvelope(err), nil
		}
		return okEnvelope(resp), nil

	case methodQuery:
		p.state.WaitFor(RoutingRequests)
		var q QueryRequest
		if err := json.Unmarshal(req.Payload, &q); err != nil {
			return errEnvelope(err), nil
		}
		resp, err := p.forwardQuery(q)
		if err != nil {
			return errEnvelope(err), nil
		}
		return okEnvelope(resp), nil

	case methodAnnounceArrival:
		p.state.WaitFor(RoutingRequests)
		var q AnnounceArrivalRequest
		if err := json.Unmarshal(req.Payload, &q); err != nil {
			return errEnvelope(err), nil
		}
		p.admit(NodeInfo{Id: q.Id, PubAddr: q.PubAddr})
		return okEnvelope(struct{}{}), nil

	case methodFixLeafSet:
		p.state.WaitFor(RoutingRequests)
		var q FixLeafSetRequest
		if err := json.Unmarshal(req.Payload, &q); err != nil {
			return errEnvelope(err), nil
		}
		go p.handleFixLeafSet(q)
		return okEnvelope(struct{}{}), nil

	case methodTransferKeys:
		p.state.WaitFor(RoutingRequests)
		var q TransferKeysRequest
		if err := json.Unmarshal(req.Payload, &q); err != nil {
			return errEnvelope(err), nil
		}
		return okEnvelope(struct{}{}), func(conn net.Conn) { p.streamTransferKeys(conn, q) }

	default:
		return errEnvelope(fmt.Errorf("unknown method %q", req.Method)), nil
	}
}

func okEnvelope(v interface{}) envelope {
	payload, err := json.Marshal(v)
	if err != nil {
		return errEnvelope(err)
	}
	return envelope{Payload: payload}
}

func errEnvelope(err error) envelope {
	return envelope{Error: err.Error()}
}

// call opens a connection to pubAddr, sends method/req as an envelope, and
// decodes the response payload into resp. A non-empty response Error is
// returned as a plain error, since transport-level RPC failures and
// in-band errors are distinct concerns here (§7): only QueryResponse.Error
// carries application errors across the wire un-translated.
func (p *Peer) call(pubAddr string, method rpcMethod, req interface{}, resp interface{}) error {
	conn, err := p.dial(pubAddr)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(defaultDialPerAttempt))

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(conn).Encode(envelope{Method: method, Payload: payload}); err != nil {
		return err
	}

	var respEnv envelope
	if err := json.NewDecoder(conn).Decode(&respEnv); err != nil {
		return err
	}
	if respEnv.Error != "" {
		return fmt.Errorf("%s", respEnv.Error)
	}
	if resp == nil {
		return nil
	}
	return json.Unmarshal(respEnv.Payload, resp)
}

// handleQuery executes a Get/Set/Delete against the local store. Routing
// (deciding whether this peer is actually the owner) happens in Query,
// which calls this only once routeLocal reports delivered.
func (p *Peer) handleQuery(q QueryRequest) QueryResponse {
	resp := QueryResponse{FromId: p.self.Id, Hops: q.Hops, Key: q.Key}
	switch q.Type {
	case QueryGet:
		v, ok := p.store.Get(q.Key)
		if !ok {
			resp.Error = ErrKeyNotFound
			return resp
		}
		resp.Value = v
	case QuerySet:
		if q.Value == nil {
			resp.Error = ErrValueNotProvided
			return resp
		}
		if prior, had := p.store.Set(q.Key, q.Value); had {
			resp.Value = prior
		}
	case QueryDelete:
		if _, ok := p.store.Delete(q.Key); !ok {
			resp.Error = ErrKeyNotFound
		}
	}
	return resp
}

// Query routes a key/value operation through the ring (§4.3/§4.8). It runs
// one hop of the cascade locally; if this peer isn't the owner it forwards
// the request on to the next hop and relays that peer's answer back, so the
// hop-by-hop walk happens as a chain of RPCs rather than the client polling
// for "what's your next hop" — each forwarding peer's dispatch calls back
// into this same function with the request's accumulated Hops/MatchedDigits.
func (p *Peer) Query(qtype QueryType, key NodeId, value []byte) (QueryResponse, error) {
	req := QueryRequest{FromId: p.self.Id, Type: qtype, Key: key, Value: value}
	return p.forwardQuery(req)
}

func (p *Peer) forwardQuery(req QueryRequest) (QueryResponse, error) {
	var resp QueryResponse
	delivered, err := p.forwardCascade(req.Key, req.MatchedDigits, func(hop NodeInfo, matched int) error {
		fwd := req
		fwd.MatchedDigits = matched
		fwd.Hops++
		if fwd.Hops > MaxHops {
			panic(throwInvariantViolation("route", "hop count exceeded MaxHops"))
		}
		var hopResp QueryResponse
		if err := p.call(hop.PubAddr, methodQuery, fwd, &hopResp); err != nil {
			return err
		}
		resp = hopResp
		return nil
	})
	if err != nil {
		return QueryResponse{}, err
	}
	if delivered {
		return p.handleQuery(req), nil
	}
	return resp, nil
}
