// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHybridDowngrade checks that a valid hybrid signature verifies
// and that zeroing either component alone makes verification fail, so
// neither half can be downgraded away.
func TestHybridDowngrade(t *testing.T) {
	kp, err := Generate(TagHybridSignature)
	require.NoError(t, err)

	msg := []byte("s6 hybrid downgrade block")
	sig, err := Sign(kp, msg)
	require.NoError(t, err)

	ok, err := Verify(kp.Public(), TagHybridSignature, msg, sig)
	require.NoError(t, err)
	require.True(t, ok)

	_, sigCl, sigPQ, err := decodeHybridSignature(sig)
	require.NoError(t, err)

	zeroedPQ, err := encodeHybridSignature(TagHybridSignature, sigCl, make([]byte, len(sigPQ)))
	require.NoError(t, err)
	ok, err = Verify(kp.Public(), TagHybridSignature, msg, zeroedPQ)
	require.NoError(t, err)
	require.False(t, ok)

	zeroedCl, err := encodeHybridSignature(TagHybridSignature, make([]byte, len(sigCl)), sigPQ)
	require.NoError(t, err)
	ok, err = Verify(kp.Public(), TagHybridSignature, msg, zeroedCl)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHybridKEMRoundTrip(t *testing.T) {
	kp, err := Generate(TagHybridKEM)
	require.NoError(t, err)

	ct, ss, err := Encapsulate(kp.Public(), TagHybridKEM)
	require.NoError(t, err)

	ss2, err := Decapsulate(kp, ct)
	require.NoError(t, err)
	require.Equal(t, ss, ss2)

	key, err := DeriveSymmetricKey(ss, []byte("poai-hybrid-kem"), 32)
	require.NoError(t, err)
	require.Len(t, key, 32)
}

func TestDestroyZeroizesPrivateKey(t *testing.T) {
	kp, err := Generate(TagECDSASecp256k1)
	require.NoError(t, err)
	require.True(t, kp.HasPrivate())
	kp.Destroy()
	require.False(t, kp.HasPrivate())
}
