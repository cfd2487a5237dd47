package overring

import (
	"fmt"
	"net"
	"time"
)

// dial attempts to connect to pubAddr, retrying on failure up to maxAttempts
// times with a fixed delay between attempts. A freshly joined or recovering
// peer's listener may not be up yet by the time another peer tries to reach
// it, so callers along the join and repair paths dial through this instead
// of Transport.DialTimeout directly. Grounded on the original source's
// connection retry loop (src/util.rs), which backed off a fixed delay
// across a bounded attempt count rather than failing on the first refusal.
func dial(t Transport, pubAddr string, perAttempt time.Duration, maxAttempts int, delay time.Duration) (net.Conn, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
		}
		conn, err := t.DialTimeout(pubAddr, perAttempt)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s: %w: %v", pubAddr, errDeadPeer, lastErr)
}

const (
	defaultDialAttempts   = 10
	defaultDialDelay      = time.Second
	defaultDialPerAttempt = 5 * time.Second
)

// dialDefault applies the package's default retry budget (§5).
func dialDefault(t Transport, pubAddr string) (net.Conn, error) {
	return dial(t, pubAddr, defaultDialPerAttempt, defaultDialAttempts, defaultDialDelay)
}
