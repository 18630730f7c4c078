// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resilience

import (
	"math/rand"

	"github.com/luxfi/poai/vote"
)

// AttackMetrics tallies a Byzantine node's malicious activity across a
// test run.
type AttackMetrics struct {
	MaliciousVotes      int64
	DelayedResponses    int64
	ConflictingMessages int64
	DoubleSpendAttempts int64
}

// NodeMetrics tallies one simulated node's participation.
type NodeMetrics struct {
	BlocksValidated    int64
	ConsensusDecisions int64
	CorrectDecisions   int64
}

// Node is one simulated validator in the resilience harness: a
// registry identity plus an optional Byzantine behavior and an
// online/offline flag for partition simulation.
type Node struct {
	ID       string
	Behavior Behavior
	Online   bool

	Metrics NodeMetrics
	Attack  AttackMetrics

	rng *rand.Rand
}

// NewNode constructs an online, honest-by-default node. seed makes the
// node's randomized behaviors (ModeRandomVoting, Intensity rolls)
// reproducible across otherwise-identical test runs.
func NewNode(id string, seed int64) *Node {
	return &Node{
		ID:     id,
		Online: true,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// decideVote computes this node's score for a block whose actual
// validity (per the harness's ground truth, not the node's own
// belief) is valid, and whether it carries a flagged double-spend
// attempt. round is the 1-indexed round number, used to evaluate the
// node's Behavior activation window. conflict reports whether this
// node should additionally submit a second, conflicting vote this
// round (ModeConflictingMessages).
func (n *Node) decideVote(round int, valid bool, doubleSpend bool) (score uint64, abstain bool, conflict bool) {
	honestScore := func() uint64 {
		if valid {
			return vote.MaxScore
		}
		return 0
	}

	if !n.Behavior.activeAt(round, n.rng) {
		return honestScore(), false, false
	}

	n.Attack.MaliciousVotes++
	switch n.Behavior.Mode {
	case ModeAlwaysReject:
		return 0, false, false
	case ModeAlwaysAccept:
		return vote.MaxScore, false, false
	case ModeRandomVoting:
		return uint64(n.rng.Intn(int(vote.MaxScore) + 1)), false, false
	case ModeDelayedResponse:
		n.Attack.DelayedResponses++
		return 0, true, false
	case ModeInvalidBlocks:
		if valid {
			return honestScore(), false, false
		}
		return vote.MaxScore, false, false
	case ModeDoubleSpend:
		if doubleSpend {
			n.Attack.DoubleSpendAttempts++
			return vote.MaxScore, false, false
		}
		return honestScore(), false, false
	case ModeConflictingMessages:
		n.Attack.ConflictingMessages++
		return uint64(n.rng.Intn(int(vote.MaxScore) + 1)), false, true
	default:
		return honestScore(), false, false
	}
}
