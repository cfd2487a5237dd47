package overring

import (
	"crypto/sha256"
	"encoding/binary"
)

// hashID derives a peer or key id from an arbitrary byte string: the first
// eight bytes (big-endian) of the SHA-256 digest, per spec §6's id
// derivation rule. Every honest peer MUST compute ids this way, so this is
// specified behaviour, not a library choice — crypto/sha256 is the stdlib
// primitive the rule itself names.
func hashID(b []byte) uint64 {
	sum := sha256.Sum256(b)
	return binary.BigEndian.Uint64(sum[:8])
}
