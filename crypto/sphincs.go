// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/slhdsa"
)

// sphincsSign adapts a circl sign.Scheme (one SLH-DSA/SPHINCS+
// parameter set) into this package's internal signScheme contract.
//
// Each of the eight "simple" parameter sets gets a single, contiguous
// tag (0x10-0x17) ordered by hash family, then security level, then
// speed/size profile. The paramIDs table below is the only place the
// tag-to-parameter-set mapping is defined.
type sphincsSign struct {
	scheme sign.Scheme
}

var paramIDs = map[AlgorithmTag]slhdsa.ID{
	TagSphincsSHA2128sSimple:  slhdsa.SHA2_128s,
	TagSphincsSHA2128fSimple:  slhdsa.SHA2_128f,
	TagSphincsSHA2256sSimple:  slhdsa.SHA2_256s,
	TagSphincsSHA2256fSimple:  slhdsa.SHA2_256f,
	TagSphincsSHAKE128sSimple: slhdsa.SHAKE_128s,
	TagSphincsSHAKE128fSimple: slhdsa.SHAKE_128f,
	TagSphincsSHAKE256sSimple: slhdsa.SHAKE_256s,
	TagSphincsSHAKE256fSimple: slhdsa.SHAKE_256f,
}

func init() {
	for tag, id := range paramIDs {
		registerSignScheme(tag, sphincsSign{scheme: id.Scheme()})
	}
}

func (s sphincsSign) generate() (pub, priv []byte, err error) {
	pk, sk, err := s.scheme.GenerateKey()
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

func (s sphincsSign) fromPrivate(priv []byte) ([]byte, error) {
	sk, err := s.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return sk.Public().(sign.PublicKey).MarshalBinary()
}

func (s sphincsSign) sign(priv, message []byte) ([]byte, error) {
	sk, err := s.scheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, err
	}
	return s.scheme.Sign(sk, message, nil), nil
}

func (s sphincsSign) verify(pub, message, sig []byte) (bool, error) {
	pk, err := s.scheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return false, err
	}
	return s.scheme.Verify(pk, message, sig, nil), nil
}
