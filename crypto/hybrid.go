// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"crypto/subtle"
	"fmt"
)

// Hybrid signature fixes ECDSA-secp256k1 as its classical component
// and SPHINCS+ SHAKE-256s-simple as its post-quantum component. Hybrid
// KEM fixes X25519 + Kyber-1024.
const (
	hybridSigClassical AlgorithmTag = TagECDSASecp256k1
	hybridSigPQ        AlgorithmTag = TagSphincsSHAKE256sSimple
	hybridKEMClassical AlgorithmTag = TagX25519
	hybridKEMPQ        AlgorithmTag = TagKyber1024
)

// packComponents length-prefixes two byte slices together so a hybrid
// KeyPair can carry both components' public (or private) bytes in the
// single public/private field KeyPair exposes.
func packComponents(a, b []byte) []byte {
	out, _ := writeLP16(nil, a)
	out, _ = writeLP16(out, b)
	return out
}

func unpackComponents(b []byte) (a, bb []byte, err error) {
	a, rest, err := readLP16(b)
	if err != nil {
		return nil, nil, err
	}
	bb, rest, err = readLP16(rest)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("%w: trailing bytes in hybrid components", ErrInvalidKeyFormat)
	}
	return a, bb, nil
}

func generateHybridSignatureKey() (*KeyPair, error) {
	cl, err := Generate(hybridSigClassical)
	if err != nil {
		return nil, err
	}
	pq, err := Generate(hybridSigPQ)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Tag:     TagHybridSignature,
		public:  packComponents(cl.Public(), pq.Public()),
		private: packComponents(cl.PrivateBytes(), pq.PrivateBytes()),
	}, nil
}

func signHybrid(kp *KeyPair, message []byte) ([]byte, error) {
	if !kp.HasPrivate() {
		return nil, fmt.Errorf("%w: no private key", ErrSigning)
	}
	privCl, privPQ, err := unpackComponents(kp.private)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	clKP := &KeyPair{Tag: hybridSigClassical, private: privCl}
	pqKP := &KeyPair{Tag: hybridSigPQ, private: privPQ}
	sigCl, err := Sign(clKP, message)
	if err != nil {
		return nil, err
	}
	sigPQ, err := Sign(pqKP, message)
	if err != nil {
		return nil, err
	}
	// sigCl/sigPQ already carry their own component tag prefix; strip
	// it since the hybrid blob format carries only the hybrid tag.
	blob, err := encodeHybridSignature(TagHybridSignature, sigCl[1:], sigPQ[1:])
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// verifyHybrid passes iff *both* components verify - no OR fallback,
// so a broken classical primitive can never be used as a downgrade
// escape hatch once the post-quantum component is present.
func verifyHybrid(pub []byte, message, sigBlob []byte) (bool, error) {
	_, sigCl, sigPQ, err := decodeHybridSignature(sigBlob)
	if err != nil {
		return false, err
	}
	pubCl, pubPQ, err := unpackComponents(pub)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	okCl, err := Verify(pubCl, hybridSigClassical, message, append([]byte{byte(hybridSigClassical)}, sigCl...))
	if err != nil || !okCl {
		return false, nil
	}
	okPQ, err := Verify(pubPQ, hybridSigPQ, message, append([]byte{byte(hybridSigPQ)}, sigPQ...))
	if err != nil || !okPQ {
		return false, nil
	}
	return true, nil
}

func generateHybridKEMKey() (*KeyPair, error) {
	cl, err := Generate(hybridKEMClassical)
	if err != nil {
		return nil, err
	}
	pq, err := Generate(hybridKEMPQ)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		Tag:     TagHybridKEM,
		public:  packComponents(cl.Public(), pq.Public()),
		private: packComponents(cl.PrivateBytes(), pq.PrivateBytes()),
	}, nil
}

func encapsulateHybrid(pub []byte) (ciphertext, sharedSecret []byte, err error) {
	pubCl, pubPQ, err := unpackComponents(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	ctCl, ssCl, err := Encapsulate(pubCl, hybridKEMClassical)
	if err != nil {
		return nil, nil, err
	}
	ctPQ, ssPQ, err := Encapsulate(pubPQ, hybridKEMPQ)
	if err != nil {
		return nil, nil, err
	}
	ct := encodeHybridCiphertext(TagHybridKEM, ctCl[1:], ctPQ[1:])
	// The shared secret is the concatenation of the component secrets.
	// Callers needing symmetric key material should run it through
	// DeriveSymmetricKey rather than using the concatenation raw.
	return ct, append(append([]byte(nil), ssCl...), ssPQ...), nil
}

func decapsulateHybrid(kp *KeyPair, ciphertext []byte) ([]byte, error) {
	if !kp.HasPrivate() {
		return nil, fmt.Errorf("%w: no private key", ErrDecapsulation)
	}
	_, ctCl, ctPQ, err := decodeHybridCiphertext(ciphertext)
	if err != nil {
		return nil, err
	}
	privCl, privPQ, err := unpackComponents(kp.private)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	ssCl, err := Decapsulate(&KeyPair{Tag: hybridKEMClassical, private: privCl}, append([]byte{byte(hybridKEMClassical)}, ctCl...))
	if err != nil {
		return nil, err
	}
	ssPQ, err := Decapsulate(&KeyPair{Tag: hybridKEMPQ, private: privPQ}, append([]byte{byte(hybridKEMPQ)}, ctPQ...))
	if err != nil {
		return nil, err
	}
	return append(append([]byte(nil), ssCl...), ssPQ...), nil
}

// ConstantTimeEqual compares two secrets without leaking timing
// information. Use it for any equality check over secret material.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
