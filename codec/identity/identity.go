// Package identity wraps the Ed25519 keypair operations firmware uses for
// node identity, over the same curve25519-voi implementation the rest of
// this module's lineage depends on.
package identity

import (
	"bytes"
	"crypto/rand"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/pkg/errors"
)

// PrivateKeySize and PublicKeySize match spec.md's wire-level Config
// layout: a 64-byte private key (seed + public half) and a 32-byte public
// key.
const (
	PrivateKeySize = ed25519.PrivateKeySize
	PublicKeySize  = ed25519.PublicKeySize
)

// ErrKeySize is returned when a caller supplies a key of the wrong length.
var ErrKeySize = errors.New("identity: wrong key size")

// KeyPair holds a node's Ed25519 identity.
type KeyPair struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// Generate creates a fresh random identity.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, errors.Wrap(err, "identity: generate key")
	}
	return KeyPair{Private: priv, Public: pub}, nil
}

// FromBytes reconstructs a KeyPair from the raw private/public key bytes
// carried in a node's Config, validating that the embedded public half of
// the private key matches the supplied public key.
func FromBytes(priv, pub []byte) (KeyPair, error) {
	if len(priv) != PrivateKeySize {
		return KeyPair{}, errors.Wrapf(ErrKeySize, "private key: got %d want %d", len(priv), PrivateKeySize)
	}
	if len(pub) != PublicKeySize {
		return KeyPair{}, errors.Wrapf(ErrKeySize, "public key: got %d want %d", len(pub), PublicKeySize)
	}
	if !bytes.Equal(priv[PrivateKeySize-PublicKeySize:], pub) {
		return KeyPair{}, errors.New("identity: public key does not match private key")
	}
	p := make(ed25519.PrivateKey, PrivateKeySize)
	copy(p, priv)
	q := make(ed25519.PublicKey, PublicKeySize)
	copy(q, pub)
	return KeyPair{Private: p, Public: q}, nil
}

// Sign signs message with the keypair's private key.
func (k KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.Private, message)
}

// Verify reports whether sig is a valid signature of message under pub.
func Verify(pub, message, sig []byte) bool {
	if len(pub) != PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}
