// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validators implements the validator registry:
// stake/activity/score eligibility and reputation updates over an
// RWMutex-guarded map of validator state keyed by id.
package validators

import (
	"math"
	"sync"
	"time"
)

// MinScore is the minimum validation score an eligible validator must
// carry. It doubles as the seed score for validators without history.
const MinScore = 100

// UsageStats accumulates a validator's cumulative AI-scoring
// participation.
type UsageStats struct {
	TotalValidations      int64
	SuccessfulValidations int64
	AvgResponseMS         float64
}

// State is one validator's registered state.
type State struct {
	ID              string
	PublicKey       []byte
	Stake           uint64
	LastUpdate      time.Time
	ValidationScore int
	Usage           UsageStats
}

// Eligibility tunables. These are deployment parameters, not
// invariants.
type Eligibility struct {
	MinStake       uint64
	MinActiveHours float64
}

// DefaultEligibility returns the stock eligibility parameters.
func DefaultEligibility() Eligibility {
	return Eligibility{MinStake: 1000, MinActiveHours: 24}
}

// Registry is a single RWMutex-guarded map keyed by validator id. All
// mutations take the write lock; all reads take the read lock. The
// lock is never held across a suspension point such as an AI call.
type Registry struct {
	mu          sync.RWMutex
	validators  map[string]*State
	eligibility Eligibility
	now         func() time.Time
}

// NewRegistry creates an empty validator registry.
func NewRegistry(eligibility Eligibility) *Registry {
	return &Registry{
		validators:  make(map[string]*State),
		eligibility: eligibility,
		now:         time.Now,
	}
}

// Add registers a new validator with the seed score and the current
// time as its last-update.
func (r *Registry) Add(id string, publicKey []byte, stake uint64) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &State{
		ID:              id,
		PublicKey:       append([]byte(nil), publicKey...),
		Stake:           stake,
		LastUpdate:      r.now(),
		ValidationScore: MinScore,
	}
	r.validators[id] = s
	return s
}

// Remove deregisters a validator.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.validators, id)
}

// Get returns a copy of the validator's state.
func (r *Registry) Get(id string) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.validators[id]
	if !ok {
		return State{}, false
	}
	return *s, true
}

// List returns a snapshot of every registered validator.
func (r *Registry) List() []State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]State, 0, len(r.validators))
	for _, s := range r.validators {
		out = append(out, *s)
	}
	return out
}

// IsEligible reports whether s may vote:
//
//	state.stake ≥ min_stake
//	∧ (now − state.last_update) ≤ min_active_hours·3600
//	∧ state.validation_score ≥ MIN_SCORE
func (e Eligibility) IsEligible(s State, now time.Time) bool {
	if s.Stake < e.MinStake {
		return false
	}
	maxAge := time.Duration(e.MinActiveHours * float64(time.Hour))
	if now.Sub(s.LastUpdate) > maxAge {
		return false
	}
	return s.ValidationScore >= MinScore
}

// ListEligible returns every validator currently satisfying the
// eligibility predicate.
func (r *Registry) ListEligible() []State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	out := make([]State, 0, len(r.validators))
	for _, s := range r.validators {
		if r.eligibility.IsEligible(*s, now) {
			out = append(out, *s)
		}
	}
	return out
}

// UpdateStake sets a validator's stake. Returns false if the validator
// is not registered.
func (r *Registry) UpdateStake(id string, newStake uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.validators[id]
	if !ok {
		return false
	}
	s.Stake = newStake
	s.LastUpdate = r.now()
	return true
}

// RecordValidation folds one validation outcome (success + observed
// response latency) into a validator's usage stats, ahead of the next
// UpdateReputation call.
func (r *Registry) RecordValidation(id string, success bool, responseMS float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.validators[id]
	if !ok {
		return
	}
	s.Usage.TotalValidations++
	if success {
		s.Usage.SuccessfulValidations++
	}
	n := float64(s.Usage.TotalValidations)
	s.Usage.AvgResponseMS = s.Usage.AvgResponseMS + (responseMS-s.Usage.AvgResponseMS)/n
}

// UpdateReputation recomputes a validator's validation score from its
// cumulative usage stats:
//
//	success_rate  = successful / max(1, total) · 100
//	latency_bonus = 1000 / max(1, avg_response_ms)
//	score         = round(0.7·success_rate + 0.3·latency_bonus)
//
// clamped to [0, 1000]. New validators without history (total == 0)
// keep the seed score.
func (r *Registry) UpdateReputation(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.validators[id]
	if !ok {
		return 0, false
	}
	if s.Usage.TotalValidations == 0 {
		s.ValidationScore = MinScore
		s.LastUpdate = r.now()
		return s.ValidationScore, true
	}

	total := float64(s.Usage.TotalValidations)
	successRate := float64(s.Usage.SuccessfulValidations) / maxF(1, total) * 100
	avgMS := maxF(1, s.Usage.AvgResponseMS)
	latencyBonus := 1000 / avgMS
	score := int(math.Round(0.7*successRate + 0.3*latencyBonus))
	if score < 0 {
		score = 0
	}
	if score > 1000 {
		score = 1000
	}
	s.ValidationScore = score
	s.LastUpdate = r.now()
	return score, true
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
