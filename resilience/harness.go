// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resilience

import (
	"fmt"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/poai/vote"
)

// Config tunes the harness's round-driving behavior.
type Config struct {
	// RoundTimeout bounds each simulated voting round, mirroring
	// poai.Config.RoundTimeout.
	RoundTimeout time.Duration
	// AcceptThreshold is the per-vote score cutoff; 0 uses
	// vote.AcceptThreshold.
	AcceptThreshold uint64
}

func (c Config) withDefaults() Config {
	if c.RoundTimeout <= 0 {
		c.RoundTimeout = time.Second
	}
	return c
}

// BlockScenario is one round's input: a block identity, its actual
// (harness-known) validity, and whether it carries a flagged
// double-spend attempt.
type BlockScenario struct {
	Hash        string
	Valid       bool
	DoubleSpend bool
}

// GenerateScenarios deterministically builds n block scenarios, every
// invalidEvery-th block (1-indexed) marked invalid and every
// doubleSpendEvery-th marked as a flagged double-spend attempt. Pass 0
// for either to never trigger that condition. Scenario validity is
// harness-known ground truth, so no live AI endpoint is needed.
func GenerateScenarios(n int, invalidEvery, doubleSpendEvery int) []BlockScenario {
	out := make([]BlockScenario, 0, n)
	for i := 1; i <= n; i++ {
		valid := invalidEvery <= 0 || i%invalidEvery != 0
		doubleSpend := doubleSpendEvery > 0 && i%doubleSpendEvery == 0
		out = append(out, BlockScenario{
			Hash:        fmt.Sprintf("resilience-block-%04d", i),
			Valid:       valid,
			DoubleSpend: doubleSpend,
		})
	}
	return out
}

// Harness drives N simulated nodes through a sequence of voting
// rounds, injecting Byzantine behavior and partitions. It reuses
// vote.Round directly rather than poai.Engine, since resilience
// testing exercises the consensus quorum rule under adversarial
// voting, not the AI-scoring transport.
type Harness struct {
	cfg   Config
	nodes map[string]*Node
	order []string // stable iteration order, for deterministic vote arrival

	partitionEvents int
	log             log.Logger
}

// NewHarness builds a harness with nodeCount nodes, all online and
// honest by default. Node ids are "node-0".."node-{n-1}".
func NewHarness(nodeCount int, cfg Config, logger log.Logger) *Harness {
	h := &Harness{
		cfg:   cfg.withDefaults(),
		nodes: make(map[string]*Node, nodeCount),
		order: make([]string, 0, nodeCount),
		log:   logger,
	}
	for i := 0; i < nodeCount; i++ {
		id := fmt.Sprintf("node-%d", i)
		h.nodes[id] = NewNode(id, int64(i+1))
		h.order = append(h.order, id)
	}
	return h
}

// SetBehavior marks node id as Byzantine with the given behavior.
// Passing the zero Behavior (ModeHonest) reverts it to honest voting.
func (h *Harness) SetBehavior(id string, b Behavior) {
	if n, ok := h.nodes[id]; ok {
		n.Behavior = b
	}
}

// SetOnline simulates a network partition by taking node id offline
// (online=false) or healing it (online=true). Offline nodes neither
// vote nor count toward a round's eligible voter set.
func (h *Harness) SetOnline(id string, online bool) {
	n, ok := h.nodes[id]
	if !ok {
		return
	}
	if n.Online && !online {
		h.partitionEvents++
	}
	n.Online = online
}

// NodeIDs returns the harness's node ids in stable order.
func (h *Harness) NodeIDs() []string {
	return append([]string(nil), h.order...)
}

func (h *Harness) onlineNodes() []*Node {
	out := make([]*Node, 0, len(h.order))
	for _, id := range h.order {
		if n := h.nodes[id]; n.Online {
			out = append(out, n)
		}
	}
	return out
}

// Run drives one round per scenario in order and returns the
// aggregated TestSummary; its success criteria are surfaced via
// TestSummary.Success.
func (h *Harness) Run(scenarios []BlockScenario) TestSummary {
	var (
		correctDecisions int
		dissentingRounds int
		dissentCorrect   int
		latencies        []float64
	)

	nodeMetrics := make(map[string]NodeMetrics, len(h.order))

	for i, scenario := range scenarios {
		roundNum := i + 1
		online := h.onlineNodes()

		deadline := time.Now().Add(h.cfg.RoundTimeout)
		round := vote.NewRound(scenario.Hash, len(online), deadline, h.cfg.AcceptThreshold)
		threshold := h.cfg.AcceptThreshold
		if threshold == 0 {
			threshold = vote.AcceptThreshold
		}

		start := time.Now()
		dissented := false

		for _, n := range online {
			score, abstain, conflict := n.decideVote(roundNum, scenario.Valid, scenario.DoubleSpend)
			if abstain {
				continue
			}

			v := vote.Vote{BlockHash: scenario.Hash, ValidatorID: n.ID, Score: score, Timestamp: time.Now()}
			if _, err := round.Add(v); err != nil {
				continue
			}

			n.Metrics.BlocksValidated++
			n.Metrics.ConsensusDecisions++
			nodeCorrect := (score >= threshold) == scenario.Valid
			if nodeCorrect {
				n.Metrics.CorrectDecisions++
			} else if n.Behavior.Mode != ModeHonest {
				dissented = true
			}

			if conflict {
				// A second, differently-scored vote from the same
				// validator this round: vote.Round's duplicate-vote
				// rule must drop it.
				conflicting := vote.Vote{BlockHash: scenario.Hash, ValidatorID: n.ID, Score: vote.MaxScore - score, Timestamp: time.Now()}
				_, _ = round.Add(conflicting)
			}
		}

		round.Close()
		result := round.Snapshot()
		latencies = append(latencies, float64(time.Since(start).Microseconds()))

		if result.Approved == scenario.Valid {
			correctDecisions++
		}
		if dissented {
			dissentingRounds++
			if result.Approved == scenario.Valid {
				dissentCorrect++
			}
		}
	}

	for id, n := range h.nodes {
		nodeMetrics[id] = n.Metrics
	}

	consensusAccuracy := 0.0
	if len(scenarios) > 0 {
		consensusAccuracy = float64(correctDecisions) / float64(len(scenarios)) * 100
	}

	byzantineResistance := 100.0
	if dissentingRounds > 0 {
		byzantineResistance = float64(dissentCorrect) / float64(dissentingRounds) * 100
	}

	summary := TestSummary{
		Rounds:               len(scenarios),
		ConsensusAccuracy:    consensusAccuracy,
		ByzantineResistance:  byzantineResistance,
		DissentingRounds:     dissentingRounds,
		RoundDecisionLatency: computeResourceStats(latencies),
		PartitionEvents:      h.partitionEvents,
		NodeMetrics:          nodeMetrics,
	}

	for _, n := range h.nodes {
		summary.TotalMaliciousVotes += n.Attack.MaliciousVotes
		summary.TotalDelayedResponses += n.Attack.DelayedResponses
		summary.TotalConflictingMessages += n.Attack.ConflictingMessages
		summary.TotalDoubleSpendAttempts += n.Attack.DoubleSpendAttempts
	}

	if consensusAccuracy < 67.0 {
		summary.Recommendations = append(summary.Recommendations, "consider increasing the Byzantine fault tolerance threshold")
	}
	if byzantineResistance < 75.0 {
		summary.Recommendations = append(summary.Recommendations, "improve malicious validator detection")
	}
	if summary.TotalDelayedResponses > 0 {
		summary.Recommendations = append(summary.Recommendations, "add timeout handling for delayed voter responses")
	}
	if summary.TotalDoubleSpendAttempts > 0 {
		summary.Recommendations = append(summary.Recommendations, "strengthen double-spend detection ahead of consensus")
	}

	return summary
}
