package overring

import (
	"net"
	"time"
)

// Transport is the low-level network interface a Peer dials and listens on.
// PubAddrs throughout this package are multiaddr strings (e.g.
// "/ip4/127.0.0.1/tcp/4001"); Transport is the seam between that addressing
// scheme and a concrete net.Conn/net.Listener.
type Transport interface {
	Listen(pubAddr string) (net.Listener, error)
	DialTimeout(pubAddr string, timeout time.Duration) (net.Conn, error)
}
