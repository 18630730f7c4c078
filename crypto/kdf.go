// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// DeriveSymmetricKey expands a raw (possibly concatenated hybrid)
// shared secret into a uniform key of length n via HKDF-SHA3-256.
// Hybrid shared secrets are concatenations of component secrets and
// must pass through here before use as symmetric key material.
func DeriveSymmetricKey(sharedSecret, info []byte, n int) ([]byte, error) {
	reader := hkdf.New(sha3.New256, sharedSecret, nil, info)
	key := make([]byte, n)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}
