// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// x25519KEM adapts the X25519 Diffie-Hellman primitive into a KEM by
// generating a fresh ephemeral key pair per encapsulation and shipping
// the ephemeral public key as the ciphertext (a standard DHKEM
// construction). Decapsulation recomputes the shared secret
// deterministically from the recipient's static private key and the
// ephemeral public key carried in the ciphertext, so no cross-call
// state (such as a ciphertext-to-secret cache) is ever needed.
type x25519KEM struct{}

func init() {
	registerKEMScheme(TagX25519, x25519KEM{})
}

func (x25519KEM) generate() (pub, priv []byte, err error) {
	var sk [32]byte
	if _, err := rand.Read(sk[:]); err != nil {
		return nil, nil, err
	}
	pk, err := curve25519.X25519(sk[:], curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}
	return pk, sk[:], nil
}

func (x25519KEM) fromPrivate(priv []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, fmt.Errorf("x25519 private key must be 32 bytes, got %d", len(priv))
	}
	return curve25519.X25519(priv, curve25519.Basepoint)
}

func (x25519KEM) encapsulate(pub []byte) (ct, ss []byte, err error) {
	if len(pub) != 32 {
		return nil, nil, fmt.Errorf("x25519 public key must be 32 bytes, got %d", len(pub))
	}
	var esk [32]byte
	if _, err := rand.Read(esk[:]); err != nil {
		return nil, nil, err
	}
	epk, err := curve25519.X25519(esk[:], curve25519.Basepoint)
	if err != nil {
		return nil, nil, err
	}
	shared, err := curve25519.X25519(esk[:], pub)
	if err != nil {
		return nil, nil, err
	}
	return epk, shared, nil
}

func (x25519KEM) decapsulate(priv, ct []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, fmt.Errorf("x25519 private key must be 32 bytes, got %d", len(priv))
	}
	if len(ct) != 32 {
		return nil, fmt.Errorf("x25519 ciphertext (ephemeral public key) must be 32 bytes, got %d", len(ct))
	}
	return curve25519.X25519(priv, ct)
}
