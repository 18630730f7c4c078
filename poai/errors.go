// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poai

import "errors"

// Sentinel errors specific to this package; crypto, storage, and vote
// own their own.
var (
	ErrValidatorNotEligible = errors.New("poai: validator not eligible")
	ErrValidatorNotFound    = errors.New("poai: validator not found")
	ErrQuorumNotReached     = errors.New("poai: quorum not reached")
	ErrRoundExpired         = errors.New("poai: round expired")
	ErrInvalidVoteSignature = errors.New("poai: vote signature does not verify")
	ErrNotImplemented       = errors.New("poai: not implemented")
)
