// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// contentID computes a stable content address for data: storing
// identical bytes always yields the same id.
func contentID(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
