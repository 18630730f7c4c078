// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	circlkem "github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/kyber/kyber1024"
	"github.com/cloudflare/circl/kem/kyber/kyber768"
)

// kyberKEM adapts a circl kem.Scheme (Kyber-768 or Kyber-1024) into
// this package's internal kemScheme contract.
type kyberKEM struct {
	scheme circlkem.Scheme
}

func init() {
	registerKEMScheme(TagKyber768, kyberKEM{scheme: kyber768.Scheme()})
	registerKEMScheme(TagKyber1024, kyberKEM{scheme: kyber1024.Scheme()})
}

func (k kyberKEM) generate() (pub, priv []byte, err error) {
	pk, sk, err := k.scheme.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	pubBytes, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	privBytes, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pubBytes, privBytes, nil
}

func (k kyberKEM) fromPrivate(priv []byte) ([]byte, error) {
	sk, err := k.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return sk.Public().MarshalBinary()
}

func (k kyberKEM) encapsulate(pub []byte) (ct, ss []byte, err error) {
	pk, err := k.scheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return nil, nil, err
	}
	return k.scheme.Encapsulate(pk)
}

func (k kyberKEM) decapsulate(priv, ct []byte) ([]byte, error) {
	sk, err := k.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return k.scheme.Decapsulate(sk, ct)
}
