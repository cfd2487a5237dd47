package overring

import (
	"net"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr-net"
)

// NewTCPTransport returns a Transport backed by manet, so any multiaddr
// wrapping a TCP transport (/ip4/.../tcp/..., /ip6/.../tcp/...) is accepted
// as both a listen and a dial address.
func NewTCPTransport() Transport {
	return &tcpTransport{}
}

type tcpTransport struct{}

func (t *tcpTransport) Listen(pubAddr string) (net.Listener, error) {
	addr, err := ma.NewMultiaddr(pubAddr)
	if err != nil {
		return nil, err
	}
	l, err := manet.Listen(addr)
	if err != nil {
		return nil, err
	}
	return manet.NetListener(l), nil
}

func (t *tcpTransport) DialTimeout(pubAddr string, timeout time.Duration) (net.Conn, error) {
	addr, err := ma.NewMultiaddr(pubAddr)
	if err != nil {
		return nil, err
	}
	network, host, err := manet.DialArgs(addr)
	if err != nil {
		return nil, err
	}
	return net.DialTimeout(network, host, timeout)
}
