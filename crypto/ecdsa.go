// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ecdsaSecp256k1 implements signScheme over secp256k1. Messages are
// hashed with SHA-256 before signing, matching the legacy chain.
type ecdsaSecp256k1 struct{}

func init() {
	registerSignScheme(TagECDSASecp256k1, ecdsaSecp256k1{})
}

func (ecdsaSecp256k1) generate() (pub, priv []byte, err error) {
	sk, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, err
	}
	return sk.PubKey().SerializeCompressed(), sk.Serialize(), nil
}

func (ecdsaSecp256k1) fromPrivate(priv []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, fmt.Errorf("secp256k1 private key must be 32 bytes, got %d", len(priv))
	}
	sk := secp256k1.PrivKeyFromBytes(priv)
	return sk.PubKey().SerializeCompressed(), nil
}

func (ecdsaSecp256k1) sign(priv, message []byte) ([]byte, error) {
	sk := secp256k1.PrivKeyFromBytes(priv)
	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(sk, digest[:])
	return sig.Serialize(), nil
}

func (ecdsaSecp256k1) verify(pub, message, sig []byte) (bool, error) {
	pk, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return false, fmt.Errorf("invalid secp256k1 public key: %w", err)
	}
	s, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, fmt.Errorf("invalid secp256k1 signature encoding: %w", err)
	}
	digest := sha256.Sum256(message)
	return s.Verify(digest[:], pk), nil
}
