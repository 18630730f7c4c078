// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import "errors"

var (
	ErrQuorumNotReached = errors.New("vote: quorum not reached")
	ErrRoundExpired     = errors.New("vote: round expired")
	ErrDuplicateVote    = errors.New("vote: duplicate vote")
	ErrUnknownVoter     = errors.New("vote: voter not part of this round")
	ErrRoundTerminal    = errors.New("vote: round already terminal")
)
