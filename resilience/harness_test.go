// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/poai/vote"
)

func testConfig() Config {
	return Config{RoundTimeout: time.Second}
}

// TestHappyPathAllHonest: five honest nodes voting on twenty valid
// blocks reach unanimous accept every round.
func TestHappyPathAllHonest(t *testing.T) {
	h := NewHarness(5, testConfig(), nil)
	scenarios := GenerateScenarios(20, 0, 0)

	summary := h.Run(scenarios)
	require.Equal(t, 100.0, summary.ConsensusAccuracy)
	require.True(t, summary.Success())
	require.Zero(t, summary.TotalMaliciousVotes)
}

// TestMinorityByzantineAlwaysReject: a minority of Byzantine
// always-reject voters among N=7 cannot block consensus on valid
// blocks.
func TestMinorityByzantineAlwaysReject(t *testing.T) {
	h := NewHarness(7, testConfig(), nil)
	h.SetBehavior("node-0", Behavior{Mode: ModeAlwaysReject})
	h.SetBehavior("node-1", Behavior{Mode: ModeAlwaysReject})

	scenarios := GenerateScenarios(30, 0, 0)
	summary := h.Run(scenarios)

	require.GreaterOrEqual(t, summary.ConsensusAccuracy, 67.0)
	require.GreaterOrEqual(t, summary.ByzantineResistance, 75.0)
	require.True(t, summary.Success())
	require.Equal(t, int64(60), summary.TotalMaliciousVotes, "two Byzantine nodes firing every one of 30 rounds")
}

// TestMajorityByzantineDefeatsConsensus: a 3-of-5 Byzantine
// always-reject majority prevents valid blocks from ever reaching
// quorum, and the harness reports that failure rather than masking it.
func TestMajorityByzantineDefeatsConsensus(t *testing.T) {
	h := NewHarness(5, testConfig(), nil)
	h.SetBehavior("node-0", Behavior{Mode: ModeAlwaysReject})
	h.SetBehavior("node-1", Behavior{Mode: ModeAlwaysReject})
	h.SetBehavior("node-2", Behavior{Mode: ModeAlwaysReject})

	scenarios := GenerateScenarios(10, 0, 0)
	summary := h.Run(scenarios)

	require.Zero(t, summary.ConsensusAccuracy)
	require.False(t, summary.Success())
	require.NotEmpty(t, summary.Recommendations)
}

// TestPartitionReducesEligibleSet: a node taken offline mid-run no
// longer participates, and the partition is reflected in
// PartitionEvents.
func TestPartitionReducesEligibleSet(t *testing.T) {
	h := NewHarness(6, testConfig(), nil)

	first := h.Run(GenerateScenarios(5, 0, 0))
	require.Equal(t, 100.0, first.ConsensusAccuracy)

	h.SetOnline("node-0", false)
	h.SetOnline("node-1", false)
	h.SetOnline("node-1", false) // repeated partition of the same node must not double-count

	second := h.Run(GenerateScenarios(5, 0, 0))
	require.Equal(t, 100.0, second.ConsensusAccuracy)
	require.Equal(t, 2, h.partitionEvents, "node-0 and node-1 each transitioned online->offline once")

	require.Zero(t, second.NodeMetrics["node-0"].ConsensusDecisions-first.NodeMetrics["node-0"].ConsensusDecisions,
		"offline node must not accumulate further decisions")
}

// TestDelayedResponseAbstainsRatherThanRejects confirms
// ModeDelayedResponse nodes never contribute a counted vote, so a
// unanimous-otherwise block still reaches quorum.
func TestDelayedResponseAbstainsRatherThanRejects(t *testing.T) {
	h := NewHarness(5, testConfig(), nil)
	h.SetBehavior("node-4", Behavior{Mode: ModeDelayedResponse})

	summary := h.Run(GenerateScenarios(10, 0, 0))
	require.Equal(t, 100.0, summary.ConsensusAccuracy)
	require.Equal(t, int64(10), summary.TotalDelayedResponses)
	require.Zero(t, summary.NodeMetrics["node-4"].ConsensusDecisions)
}

// TestConflictingMessagesDoNotDoubleVote confirms a node attempting to
// cast two different scores in the same round only has its first vote
// counted, per vote.Round's duplicate-vote rule.
func TestConflictingMessagesDoNotDoubleVote(t *testing.T) {
	h := NewHarness(5, testConfig(), nil)
	h.SetBehavior("node-0", Behavior{Mode: ModeConflictingMessages})

	summary := h.Run(GenerateScenarios(15, 0, 0))
	require.Equal(t, int64(15), summary.TotalConflictingMessages)
	require.Equal(t, int64(15), summary.NodeMetrics["node-0"].ConsensusDecisions,
		"only the first of two conflicting votes counts toward this node's decisions")
}

// TestInvalidBlocksModeSmugglesBadBlocks confirms a node running
// ModeInvalidBlocks votes to accept blocks that are actually invalid,
// lowering consensus accuracy when it forms part of a majority.
func TestInvalidBlocksModeSmugglesBadBlocks(t *testing.T) {
	h := NewHarness(3, testConfig(), nil)
	h.SetBehavior("node-0", Behavior{Mode: ModeInvalidBlocks})
	h.SetBehavior("node-1", Behavior{Mode: ModeInvalidBlocks})

	// every block invalid: a 2-of-3 majority smuggling them through
	// defeats consensus accuracy entirely.
	summary := h.Run(GenerateScenarios(10, 1, 0))
	require.Zero(t, summary.ConsensusAccuracy)
}

// TestPartitionNeitherHalfReachesQuorum: a 3/3 split of a 6-voter
// round leaves each half short of the >N/2 quorum over the full voter
// set; the round expires rather than double-accepting.
func TestPartitionNeitherHalfReachesQuorum(t *testing.T) {
	deadline := time.Now().Add(time.Second)

	half := vote.NewRound("partitioned-block", 6, deadline, vote.AcceptThreshold)
	for _, id := range []string{"node-0", "node-1", "node-2"} {
		_, err := half.Add(vote.Vote{BlockHash: "partitioned-block", ValidatorID: id, Score: vote.MaxScore, Timestamp: time.Now()})
		require.NoError(t, err)
	}
	require.Equal(t, vote.StatusOpen, half.Status(), "3 of 6 accept votes must not reach quorum")

	st := half.Close()
	require.Equal(t, vote.StatusExpired, st, "a partitioned half that never reaches quorum expires")
	require.False(t, half.Snapshot().Approved)
}

func TestGenerateScenariosDeterministic(t *testing.T) {
	a := GenerateScenarios(10, 3, 4)
	b := GenerateScenarios(10, 3, 4)
	require.Equal(t, a, b)
	require.False(t, a[2].Valid) // index 3 invalid
	require.True(t, a[3].DoubleSpend) // index 4 double-spend
}
