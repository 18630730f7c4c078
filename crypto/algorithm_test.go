// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTagMappingUnambiguous(t *testing.T) {
	seen := map[AlgorithmTag]bool{}
	for tag := range paramIDs {
		require.False(t, seen[tag], "tag 0x%02x assigned to more than one SPHINCS+ parameter set", tag)
		seen[tag] = true
		require.True(t, tag.IsSphincs())
	}
	require.Len(t, paramIDs, 8, "all eight SPHINCS+ parameter sets must have a distinct tag")
}

func TestKeyPairRoundTrip(t *testing.T) {
	for _, tag := range []AlgorithmTag{TagECDSASecp256k1, TagX25519, TagKyber768, TagKyber1024} {
		tag := tag
		t.Run(tag.String(), func(t *testing.T) {
			kp, err := Generate(tag)
			require.NoError(t, err)

			encoded, err := EncodeKeyPair(kp)
			require.NoError(t, err)

			decoded, err := DecodeKeyPair(encoded)
			require.NoError(t, err)
			require.Equal(t, kp.Public(), decoded.Public())
			require.Equal(t, kp.PrivateBytes(), decoded.PrivateBytes())
		})
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, tag := range []AlgorithmTag{TagECDSASecp256k1, TagSphincsSHAKE128fSimple} {
		tag := tag
		t.Run(tag.String(), func(t *testing.T) {
			kp, err := Generate(tag)
			require.NoError(t, err)

			msg := []byte("block header digest")
			sig, err := Sign(kp, msg)
			require.NoError(t, err)

			ok, err := Verify(kp.Public(), tag, msg, sig)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = Verify(kp.Public(), tag, []byte("different message"), sig)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestKEMRoundTrip(t *testing.T) {
	for _, tag := range []AlgorithmTag{TagX25519, TagKyber1024} {
		tag := tag
		t.Run(tag.String(), func(t *testing.T) {
			kp, err := Generate(tag)
			require.NoError(t, err)

			ct, ss, err := Encapsulate(kp.Public(), tag)
			require.NoError(t, err)

			ss2, err := Decapsulate(kp, ct)
			require.NoError(t, err)
			require.Equal(t, ss, ss2)
		})
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, err := DecodeKeyPair([]byte{0xFF, 0, 0, 0})
	require.ErrorIs(t, err, ErrInvalidAlgorithm)
}

func TestDecodeRejectsTrailingGarbage(t *testing.T) {
	kp, err := Generate(TagECDSASecp256k1)
	require.NoError(t, err)
	encoded, err := EncodeKeyPair(kp)
	require.NoError(t, err)

	_, err = DecodeKeyPair(append(encoded, 0xAA))
	require.Error(t, err)
}
