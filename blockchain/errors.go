// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package blockchain

import "errors"

var (
	ErrMalformedAddress  = errors.New("blockchain: malformed address")
	ErrNegativeAmount    = errors.New("blockchain: negative amount")
	ErrMissingSignature  = errors.New("blockchain: missing signature")
	ErrTimestampSkew     = errors.New("blockchain: timestamp too far in the future")
	ErrReplayedTx        = errors.New("blockchain: transaction id already seen")
	ErrSignatureMismatch = errors.New("blockchain: signature does not verify")
	ErrHashMismatch      = errors.New("blockchain: block hash does not match recomputed hash")
	ErrMalformedPrevHash = errors.New("blockchain: malformed previous hash")
	ErrTooManyTx         = errors.New("blockchain: transaction count exceeds MAX_TX_PER_BLOCK")
	ErrSizeMismatch      = errors.New("blockchain: declared size does not match serialized size")
	ErrResourceLimit     = errors.New("blockchain: block or transaction exceeds AI-scoring resource limit")
)
