package overring

import (
	"encoding/json"
	"fmt"
	"net"
)

// pullHandoff opens the TransferKeys stream to the join's terminal peer and
// installs every received entry into the local store before returning
// (§4.5 step 3, §4.7). The connection is held open across the initial
// envelope handshake and the streamed entries that follow, so a single
// json.Decoder is reused for both — a second Decoder over the same conn
// would silently drop whatever the first had already buffered.
func (p *Peer) pullHandoff(terminal NodeInfo) error {
	conn, err := p.dial(terminal.PubAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	req := TransferKeysRequest{Id: p.self.Id}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(conn).Encode(envelope{Method: methodTransferKeys, Payload: payload}); err != nil {
		return err
	}

	dec := json.NewDecoder(conn)
	var ack envelope
	if err := dec.Decode(&ack); err != nil {
		return err
	}
	if ack.Error != "" {
		return fmt.Errorf("%s", ack.Error)
	}

	for {
		var entry TransferKeysEntry
		if err := dec.Decode(&entry); err != nil {
			return err
		}
		if entry.Done {
			return nil
		}
		p.store.Set(entry.Key, entry.Value)
	}
}

// streamTransferKeys is the server half of TransferKeys (§4.7). It computes
// the set of stored keys that fall outside (self.id, req.Id] — self being
// this peer's own id, the lower edge of the range it still owns once
// req.Id's peer has joined — and streams each (key, value) pair, deleting
// from the local store only once the send for that entry has succeeded. A
// send failure stops the stream; whatever wasn't sent stays at this peer,
// preserving durability over completeness.
func (p *Peer) streamTransferKeys(conn net.Conn, req TransferKeysRequest) {
	lowerBound := p.self.Id

	enc := json.NewEncoder(conn)
	for _, kv := range p.store.ScanNotIn(lowerBound, req.Id) {
		if err := enc.Encode(TransferKeysEntry{Key: kv.Key, Value: kv.Value}); err != nil {
			p.warn("transfer keys to %s interrupted: %v", req.Id, err)
			return
		}
		p.store.Delete(kv.Key)
	}
	enc.Encode(TransferKeysEntry{Done: true})
}
