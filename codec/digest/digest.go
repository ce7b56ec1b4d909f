// Package digest wraps the SHA-256 primitive firmware links against. It
// exists because the harness's ancillary codecs are commodity code the
// core depends on, not because SHA-256 semantics differ from any other
// implementation — the wrapper's only job is to source the fast SIMD
// implementation the rest of this module's lineage already uses.
package digest

import (
	"crypto/hmac"

	sha256simd "github.com/spacemeshos/sha256-simd"
)

// Size is the digest size, in bytes, of a SHA-256 hash.
const Size = sha256simd.Size

// Sum256 returns the SHA-256 digest of data.
func Sum256(data []byte) [Size]byte {
	return sha256simd.Sum256(data)
}

// HMACSum256 returns the HMAC-SHA-256 of message under key, per RFC 4231.
// HMAC construction itself has no interesting SIMD fast path, so it is
// built directly on stdlib crypto/hmac around the SIMD SHA-256 core.
func HMACSum256(key, message []byte) [Size]byte {
	mac := hmac.New(sha256simd.New, key)
	mac.Write(message)
	var out [Size]byte
	copy(out[:], mac.Sum(nil))
	return out
}
