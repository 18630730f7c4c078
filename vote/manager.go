// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"sync"
	"time"

	"github.com/luxfi/log"
)

// Manager owns the process-wide table of in-flight voting rounds,
// enforcing at most one voting round per block hash at a time. It is
// the sole writer of round state.
type Manager struct {
	mu     sync.Mutex
	rounds map[string]*Round
	log    log.Logger
}

// NewManager constructs an empty round table.
func NewManager(logger log.Logger) *Manager {
	return &Manager{
		rounds: make(map[string]*Round),
		log:    logger,
	}
}

// Open starts a new round for blockHash, or returns the existing round
// if one is already in flight for that hash.
func (m *Manager) Open(blockHash string, eligibleN int, deadline time.Time, acceptThreshold uint64) *Round {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rounds[blockHash]; ok {
		return existing
	}
	r := NewRound(blockHash, eligibleN, deadline, acceptThreshold)
	m.rounds[blockHash] = r
	return r
}

// Get returns the round for blockHash, if one exists.
func (m *Manager) Get(blockHash string) (*Round, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[blockHash]
	return r, ok
}

// Submit records a vote against the round for its BlockHash, dropping
// it with a logged warning if no round is open or the round is
// already terminal.
func (m *Manager) Submit(v Vote) (Status, error) {
	m.mu.Lock()
	r, ok := m.rounds[v.BlockHash]
	m.mu.Unlock()
	if !ok {
		if m.log != nil {
			m.log.Warn("vote dropped: no open round", "block_hash", v.BlockHash, "validator", v.ValidatorID)
		}
		return StatusOpen, ErrUnknownVoter
	}

	status, err := r.Add(v)
	if err != nil && m.log != nil {
		m.log.Warn("vote dropped", "block_hash", v.BlockHash, "validator", v.ValidatorID, "reason", err)
	}
	return status, err
}

// Finalize closes the round for blockHash, computing Decided-Reject
// where warranted, and removes it from the table so a later block
// reusing the same hash (which should not happen in practice, but is
// not assumed away) opens a fresh round.
func (m *Manager) Finalize(blockHash string) (Result, bool) {
	m.mu.Lock()
	r, ok := m.rounds[blockHash]
	if ok {
		delete(m.rounds, blockHash)
	}
	m.mu.Unlock()
	if !ok {
		return Result{}, false
	}
	r.Close()
	return r.Snapshot(), true
}

// OpenRounds returns the block hashes with a round currently in
// flight (Open status, not yet expired by wall-clock check).
func (m *Manager) OpenRounds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	hashes := make([]string, 0, len(m.rounds))
	for hash, r := range m.rounds {
		if !r.Status().Terminal() {
			hashes = append(hashes, hash)
		}
	}
	return hashes
}
