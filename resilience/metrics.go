// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resilience

import "sort"

// ResourceStats summarizes a distribution of observed samples, e.g.
// per-round decision latency.
type ResourceStats struct {
	Min float64
	Max float64
	Avg float64
	P95 float64
	P99 float64
}

// computeResourceStats reduces raw samples to a ResourceStats. An
// empty input yields the zero value.
func computeResourceStats(samples []float64) ResourceStats {
	if len(samples) == 0 {
		return ResourceStats{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, s := range sorted {
		sum += s
	}

	return ResourceStats{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P95: percentile(sorted, 0.95),
		P99: percentile(sorted, 0.99),
	}
}

// percentile assumes sorted is already sorted ascending.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// TestSummary is the harness's final report.
type TestSummary struct {
	Rounds int

	// ConsensusAccuracy is the percentage of rounds whose final
	// decision matched the block's actual (harness-known) validity.
	ConsensusAccuracy float64
	// ByzantineResistance is the percentage of rounds, among those
	// where at least one Byzantine node actively dissented from the
	// ground truth, that still reached the correct decision.
	ByzantineResistance float64
	// DissentingRounds is the denominator behind ByzantineResistance;
	// 0 means no Byzantine node ever actively dissented (so
	// ByzantineResistance is reported as 100).
	DissentingRounds int

	RoundDecisionLatency ResourceStats

	TotalMaliciousVotes      int64
	TotalDelayedResponses    int64
	TotalConflictingMessages int64
	TotalDoubleSpendAttempts int64

	PartitionEvents int

	NodeMetrics map[string]NodeMetrics

	// Recommendations carries advisory text emitted when a specific
	// failure signature is observed.
	Recommendations []string
}

// Success reports whether this run meets the fixed criteria:
// consensus accuracy ≥ 67% and Byzantine resistance ≥ 75%.
func (s TestSummary) Success() bool {
	return s.ConsensusAccuracy >= 67.0 && s.ByzantineResistance >= 75.0
}
