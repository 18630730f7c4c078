// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crypto implements the algorithm registry and hybrid
// classical+post-quantum composition behind the node's trust layer:
// key generation, signing/verification, and KEM encapsulation/
// decapsulation behind a self-describing tagged wire format. On the
// wire an algorithm is a tagged variant; the capability interfaces
// exist only for code reuse inside this package.
package crypto

import "fmt"

// AlgorithmTag is the single byte identifying a key, signature or KEM
// scheme on the wire. Tag assignment is fixed for the life of the wire
// format and MUST NOT be renumbered once persisted data exists.
type AlgorithmTag byte

const (
	TagECDSASecp256k1 AlgorithmTag = 0x01
	TagKyber768       AlgorithmTag = 0x02
	TagKyber1024      AlgorithmTag = 0x03
	TagX25519         AlgorithmTag = 0x04

	TagSphincsSHA2128sSimple  AlgorithmTag = 0x10
	TagSphincsSHA2128fSimple  AlgorithmTag = 0x11
	TagSphincsSHA2256sSimple  AlgorithmTag = 0x12
	TagSphincsSHA2256fSimple  AlgorithmTag = 0x13
	TagSphincsSHAKE128sSimple AlgorithmTag = 0x14
	TagSphincsSHAKE128fSimple AlgorithmTag = 0x15
	TagSphincsSHAKE256sSimple AlgorithmTag = 0x16
	TagSphincsSHAKE256fSimple AlgorithmTag = 0x17

	TagHybridSignature AlgorithmTag = 0x20
	TagHybridKEM       AlgorithmTag = 0x21
)

// sphincsVariants enumerates the eight SPHINCS+ parameter sets this
// registry supports, all "simple" variants.
var sphincsVariants = map[AlgorithmTag]struct{}{
	TagSphincsSHA2128sSimple:  {},
	TagSphincsSHA2128fSimple:  {},
	TagSphincsSHA2256sSimple:  {},
	TagSphincsSHA2256fSimple:  {},
	TagSphincsSHAKE128sSimple: {},
	TagSphincsSHAKE128fSimple: {},
	TagSphincsSHAKE256sSimple: {},
	TagSphincsSHAKE256fSimple: {},
}

// IsSphincs reports whether tag identifies one of the eight SPHINCS+
// parameter sets.
func (t AlgorithmTag) IsSphincs() bool {
	_, ok := sphincsVariants[t]
	return ok
}

// Valid reports whether tag is a recognized algorithm.
func (t AlgorithmTag) Valid() bool {
	switch t {
	case TagECDSASecp256k1, TagKyber768, TagKyber1024, TagX25519,
		TagHybridSignature, TagHybridKEM:
		return true
	}
	return t.IsSphincs()
}

func (t AlgorithmTag) String() string {
	switch t {
	case TagECDSASecp256k1:
		return "ecdsa-secp256k1"
	case TagKyber768:
		return "kyber768"
	case TagKyber1024:
		return "kyber1024"
	case TagX25519:
		return "x25519"
	case TagSphincsSHA2128sSimple:
		return "sphincs-sha2-128s-simple"
	case TagSphincsSHA2128fSimple:
		return "sphincs-sha2-128f-simple"
	case TagSphincsSHA2256sSimple:
		return "sphincs-sha2-256s-simple"
	case TagSphincsSHA2256fSimple:
		return "sphincs-sha2-256f-simple"
	case TagSphincsSHAKE128sSimple:
		return "sphincs-shake-128s-simple"
	case TagSphincsSHAKE128fSimple:
		return "sphincs-shake-128f-simple"
	case TagSphincsSHAKE256sSimple:
		return "sphincs-shake-256s-simple"
	case TagSphincsSHAKE256fSimple:
		return "sphincs-shake-256f-simple"
	case TagHybridSignature:
		return "hybrid-ecdsa-sphincs"
	case TagHybridKEM:
		return "hybrid-x25519-kyber1024"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}
