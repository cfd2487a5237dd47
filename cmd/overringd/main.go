// Command overringd runs a single overring peer as a standalone server.
//
// Usage: overringd <leaf-set-k> <port> [bootstrap-addr]
//
// NODE_HOSTNAME overrides the hostname used to construct the peer's
// published multiaddr; it defaults to 0.0.0.0.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ringkv/overring"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "overringd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: overringd <leaf-set-k> <port> [bootstrap-addr]")
	}

	k, err := strconv.Atoi(args[0])
	if err != nil || k < 1 {
		return fmt.Errorf("leaf-set-k must be an integer >= 1, got %q", args[0])
	}

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("unparseable port %q: %w", args[1], err)
	}

	hostname := os.Getenv("NODE_HOSTNAME")
	if hostname == "" {
		hostname = "0.0.0.0"
	}
	pubAddr := fmt.Sprintf("/ip4/%s/tcp/%d", hostname, port)

	info, err := overring.NewNodeInfo(pubAddr)
	if err != nil {
		return fmt.Errorf("constructing node identity: %w", err)
	}

	peer := overring.NewPeer(info, k, overring.NewTCPTransport())
	peer.SetLogLevel(overring.LogLevelWarn)

	serveErr := make(chan error, 1)
	go func() { serveErr <- peer.Serve() }()

	if len(args) == 3 {
		if err := peer.Join(args[2]); err != nil {
			return fmt.Errorf("joining %s: %w", args[2], err)
		}
	} else {
		peer.Bootstrap()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case <-sig:
		return nil
	}
}
