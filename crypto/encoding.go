// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"encoding/binary"
	"fmt"
)

// writeLP16 appends a big-endian uint16 length prefix followed by b.
func writeLP16(dst []byte, b []byte) ([]byte, error) {
	if len(b) > 0xFFFF {
		return nil, fmt.Errorf("%w: field too long for 2-byte length prefix (%d bytes)", ErrSerialization, len(b))
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...), nil
}

// readLP16 reads a big-endian uint16 length prefix and the following
// field from src, returning the field and the remaining bytes.
func readLP16(src []byte) (field, rest []byte, err error) {
	if len(src) < 2 {
		return nil, nil, fmt.Errorf("%w: truncated length prefix", ErrSerialization)
	}
	n := binary.BigEndian.Uint16(src)
	src = src[2:]
	if len(src) < int(n) {
		return nil, nil, fmt.Errorf("%w: truncated field (want %d, have %d)", ErrSerialization, n, len(src))
	}
	return src[:n], src[n:], nil
}

// writeLP32 is the 4-byte-prefix variant used for hybrid KEM
// ciphertexts, whose wire format fixes 4-byte length prefixes for both
// components.
func writeLP32(dst []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

func readLP32(src []byte) (field, rest []byte, err error) {
	if len(src) < 4 {
		return nil, nil, fmt.Errorf("%w: truncated length prefix", ErrSerialization)
	}
	n := binary.BigEndian.Uint32(src)
	src = src[4:]
	if uint64(len(src)) < uint64(n) {
		return nil, nil, fmt.Errorf("%w: truncated field (want %d, have %d)", ErrSerialization, n, len(src))
	}
	return src[:n], src[n:], nil
}

// EncodeKeyPair emits tag(1) | pk_len(2 BE) | pk_bytes | has_sk(1) |
// [sk_len(2 BE) | sk_bytes]. Length prefixes are uniformly 2 bytes:
// every supported scheme's keys fit comfortably under 64KiB.
func EncodeKeyPair(kp *KeyPair) ([]byte, error) {
	if !kp.Tag.Valid() {
		return nil, fmt.Errorf("%w: tag 0x%02x", ErrInvalidAlgorithm, byte(kp.Tag))
	}
	out := []byte{byte(kp.Tag)}
	out, err := writeLP16(out, kp.public)
	if err != nil {
		return nil, err
	}
	if len(kp.private) == 0 {
		return append(out, 0), nil
	}
	out = append(out, 1)
	return writeLP16(out, kp.private)
}

// DecodeKeyPair parses the format produced by EncodeKeyPair, rejecting
// unknown tags, truncated fields and trailing garbage.
func DecodeKeyPair(b []byte) (*KeyPair, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("%w: empty key pair", ErrInvalidKeyFormat)
	}
	tag := AlgorithmTag(b[0])
	if !tag.Valid() {
		return nil, fmt.Errorf("%w: tag 0x%02x", ErrInvalidAlgorithm, byte(tag))
	}
	pub, rest, err := readLP16(b[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	if len(rest) < 1 {
		return nil, fmt.Errorf("%w: missing has_sk flag", ErrInvalidKeyFormat)
	}
	hasSK, rest := rest[0], rest[1:]
	kp := &KeyPair{Tag: tag, public: append([]byte(nil), pub...)}
	switch hasSK {
	case 0:
		if len(rest) != 0 {
			return nil, fmt.Errorf("%w: trailing bytes after public-only key", ErrInvalidKeyFormat)
		}
	case 1:
		sk, rest2, err := readLP16(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
		}
		if len(rest2) != 0 {
			return nil, fmt.Errorf("%w: trailing bytes after private key", ErrInvalidKeyFormat)
		}
		kp.private = append([]byte(nil), sk...)
	default:
		return nil, fmt.Errorf("%w: invalid has_sk flag 0x%02x", ErrInvalidKeyFormat, hasSK)
	}
	return kp, nil
}

// encodeHybridSignature builds tag(1) | cl_len(2 BE) | cl_sig |
// pq_len(2 BE) | pq_sig.
func encodeHybridSignature(tag AlgorithmTag, sigCl, sigPQ []byte) ([]byte, error) {
	out := []byte{byte(tag)}
	out, err := writeLP16(out, sigCl)
	if err != nil {
		return nil, err
	}
	return writeLP16(out, sigPQ)
}

func decodeHybridSignature(b []byte) (tag AlgorithmTag, sigCl, sigPQ []byte, err error) {
	if len(b) < 1 {
		return 0, nil, nil, fmt.Errorf("%w: empty signature", ErrInvalidSigFormat)
	}
	tag = AlgorithmTag(b[0])
	sigCl, rest, err := readLP16(b[1:])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: %v", ErrInvalidSigFormat, err)
	}
	sigPQ, rest, err = readLP16(rest)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: %v", ErrInvalidSigFormat, err)
	}
	if len(rest) != 0 {
		return 0, nil, nil, fmt.Errorf("%w: trailing bytes", ErrInvalidSigFormat)
	}
	return tag, sigCl, sigPQ, nil
}

// encodeHybridCiphertext builds tag(1) | cl_len(4 BE) | cl_ct |
// pq_len(4 BE) | pq_ct.
func encodeHybridCiphertext(tag AlgorithmTag, ctCl, ctPQ []byte) []byte {
	out := []byte{byte(tag)}
	out = writeLP32(out, ctCl)
	return writeLP32(out, ctPQ)
}

func decodeHybridCiphertext(b []byte) (tag AlgorithmTag, ctCl, ctPQ []byte, err error) {
	if len(b) < 1 {
		return 0, nil, nil, fmt.Errorf("%w: empty ciphertext", ErrSerialization)
	}
	tag = AlgorithmTag(b[0])
	ctCl, rest, err := readLP32(b[1:])
	if err != nil {
		return 0, nil, nil, err
	}
	ctPQ, rest, err = readLP32(rest)
	if err != nil {
		return 0, nil, nil, err
	}
	if len(rest) != 0 {
		return 0, nil, nil, fmt.Errorf("%w: trailing bytes", ErrSerialization)
	}
	return tag, ctCl, ctPQ, nil
}
