// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import "fmt"

// KeyPair is an {algorithm tag, public bytes, optional private bytes}
// triple. Private bytes zeroize on Destroy and are never emitted by
// the signature or ciphertext encodings (only the key-pair encoding
// itself may carry them).
type KeyPair struct {
	Tag     AlgorithmTag
	public  []byte
	private []byte
}

// Public returns the public key bytes. The returned slice is a copy;
// callers may not mutate the key pair's internal state through it.
func (kp *KeyPair) Public() []byte {
	return append([]byte(nil), kp.public...)
}

// HasPrivate reports whether this key pair carries private material.
func (kp *KeyPair) HasPrivate() bool {
	return len(kp.private) > 0
}

// PrivateBytes returns the private key bytes, or nil if this is a
// public-only key pair (e.g. one reconstructed from a peer's encoded
// public key).
func (kp *KeyPair) PrivateBytes() []byte {
	if len(kp.private) == 0 {
		return nil
	}
	return append([]byte(nil), kp.private...)
}

// Destroy zeroizes private key material in place. Safe to call
// multiple times and on a public-only key pair.
func (kp *KeyPair) Destroy() {
	for i := range kp.private {
		kp.private[i] = 0
	}
	kp.private = nil
}

// Keyable is the capability contract for key generation and
// reconstruction. The wire layer dispatches on the tag; this interface
// exists only for code reuse across the scheme implementations.
type Keyable interface {
	Generate(tag AlgorithmTag) (*KeyPair, error)
	FromPrivateBytes(tag AlgorithmTag, priv []byte) (*KeyPair, error)
}

// Signable is the capability contract for sign/verify.
type Signable interface {
	Sign(kp *KeyPair, message []byte) ([]byte, error)
	Verify(pub []byte, tag AlgorithmTag, message, sigBlob []byte) (bool, error)
}

// Kemable is the capability contract for KEM encapsulate/decapsulate.
type Kemable interface {
	Encapsulate(pub []byte, tag AlgorithmTag) (ciphertext, sharedSecret []byte, err error)
	Decapsulate(kp *KeyPair, ciphertext []byte) (sharedSecret []byte, err error)
}

// signScheme is the internal per-algorithm signing implementation.
type signScheme interface {
	generate() (pub, priv []byte, err error)
	fromPrivate(priv []byte) (pub []byte, err error)
	sign(priv, message []byte) ([]byte, error)
	verify(pub, message, sig []byte) (bool, error)
}

// kemScheme is the internal per-algorithm KEM implementation.
type kemScheme interface {
	generate() (pub, priv []byte, err error)
	fromPrivate(priv []byte) (pub []byte, err error)
	encapsulate(pub []byte) (ct, ss []byte, err error)
	decapsulate(priv, ct []byte) ([]byte, error)
}

var signSchemes = map[AlgorithmTag]signScheme{}
var kemSchemes = map[AlgorithmTag]kemScheme{}

func registerSignScheme(tag AlgorithmTag, s signScheme) { signSchemes[tag] = s }
func registerKEMScheme(tag AlgorithmTag, s kemScheme)   { kemSchemes[tag] = s }

// Generate creates a fresh key pair for tag, dispatching to the
// registered classical/PQ scheme or to the hybrid composition.
func Generate(tag AlgorithmTag) (*KeyPair, error) {
	if tag == TagHybridSignature {
		return generateHybridSignatureKey()
	}
	if tag == TagHybridKEM {
		return generateHybridKEMKey()
	}
	if s, ok := signSchemes[tag]; ok {
		pub, priv, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return &KeyPair{Tag: tag, public: pub, private: priv}, nil
	}
	if s, ok := kemSchemes[tag]; ok {
		pub, priv, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return &KeyPair{Tag: tag, public: pub, private: priv}, nil
	}
	return nil, fmt.Errorf("%w: tag 0x%02x", ErrInvalidAlgorithm, byte(tag))
}

// FromPrivateBytes reconstructs a key pair from raw private key bytes
// for a non-hybrid algorithm.
func FromPrivateBytes(tag AlgorithmTag, priv []byte) (*KeyPair, error) {
	if s, ok := signSchemes[tag]; ok {
		pub, err := s.fromPrivate(priv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return &KeyPair{Tag: tag, public: pub, private: append([]byte(nil), priv...)}, nil
	}
	if s, ok := kemSchemes[tag]; ok {
		pub, err := s.fromPrivate(priv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return &KeyPair{Tag: tag, public: pub, private: append([]byte(nil), priv...)}, nil
	}
	return nil, fmt.Errorf("%w: tag 0x%02x", ErrInvalidAlgorithm, byte(tag))
}

// Sign produces a tag-prefixed signature blob over message using kp's
// private key. Hybrid tags dispatch to the hybrid composition in
// hybrid.go; non-hybrid tags produce tag(1) || raw_signature.
func Sign(kp *KeyPair, message []byte) ([]byte, error) {
	if kp.Tag == TagHybridSignature {
		return signHybrid(kp, message)
	}
	s, ok := signSchemes[kp.Tag]
	if !ok {
		return nil, fmt.Errorf("%w: tag 0x%02x is not a signing algorithm", ErrInvalidAlgorithm, byte(kp.Tag))
	}
	if !kp.HasPrivate() {
		return nil, fmt.Errorf("%w: no private key", ErrSigning)
	}
	sig, err := s.sign(kp.private, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return append([]byte{byte(kp.Tag)}, sig...), nil
}

// Verify checks a tag-prefixed signature blob against pub and message.
// The blob's own tag byte (for hybrid blobs) or the caller-supplied
// tag (for classical/PQ blobs, where the blob carries no separate tag
// disambiguation beyond its own prefix) must match; mismatches fail
// with ErrInvalidAlgorithm.
func Verify(pub []byte, tag AlgorithmTag, message, sigBlob []byte) (bool, error) {
	if len(sigBlob) < 1 {
		return false, fmt.Errorf("%w: empty signature", ErrInvalidSigFormat)
	}
	blobTag := AlgorithmTag(sigBlob[0])
	if blobTag != tag {
		return false, fmt.Errorf("%w: signature tag 0x%02x != expected 0x%02x", ErrInvalidAlgorithm, byte(blobTag), byte(tag))
	}
	if tag == TagHybridSignature {
		return verifyHybrid(pub, message, sigBlob)
	}
	s, ok := signSchemes[tag]
	if !ok {
		return false, fmt.Errorf("%w: tag 0x%02x is not a signing algorithm", ErrInvalidAlgorithm, byte(tag))
	}
	ok2, err := s.verify(pub, message, sigBlob[1:])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return ok2, nil
}

// Encapsulate runs the KEM for tag against peer public key pub.
func Encapsulate(pub []byte, tag AlgorithmTag) (ciphertext, sharedSecret []byte, err error) {
	if tag == TagHybridKEM {
		return encapsulateHybrid(pub)
	}
	s, ok := kemSchemes[tag]
	if !ok {
		return nil, nil, fmt.Errorf("%w: tag 0x%02x is not a KEM algorithm", ErrInvalidAlgorithm, byte(tag))
	}
	ct, ss, err := s.encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEncapsulation, err)
	}
	return append([]byte{byte(tag)}, ct...), ss, nil
}

// Decapsulate reverses Encapsulate using kp's private key.
func Decapsulate(kp *KeyPair, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 1 {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrSerialization)
	}
	tag := AlgorithmTag(ciphertext[0])
	if tag != kp.Tag {
		return nil, fmt.Errorf("%w: ciphertext tag 0x%02x != key tag 0x%02x", ErrInvalidAlgorithm, byte(tag), byte(kp.Tag))
	}
	if tag == TagHybridKEM {
		return decapsulateHybrid(kp, ciphertext)
	}
	s, ok := kemSchemes[tag]
	if !ok {
		return nil, fmt.Errorf("%w: tag 0x%02x is not a KEM algorithm", ErrInvalidAlgorithm, byte(tag))
	}
	if !kp.HasPrivate() {
		return nil, fmt.Errorf("%w: no private key", ErrDecapsulation)
	}
	ss, err := s.decapsulate(kp.private, ciphertext[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecapsulation, err)
	}
	return ss, nil
}
