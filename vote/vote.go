// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vote implements the voting round lifecycle and quorum tally:
// string-keyed voter ids, scored votes, a three-way terminal status,
// and a deadline-driven lifecycle.
package vote

import (
	"sync"
	"time"
)

// MaxScore is the upper bound of the AI-derived confidence score
// carried by a Vote. 100 is chosen so AcceptThreshold's half-of-max
// default reads as a familiar percentage.
const MaxScore = 100

// AcceptThreshold is the default score at or above which a vote counts
// as an accept-vote.
const AcceptThreshold = MaxScore / 2

// Status is a voting round's lifecycle state.
type Status int

const (
	StatusOpen Status = iota
	StatusDecidedAccept
	StatusDecidedReject
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusDecidedAccept:
		return "Decided-Accept"
	case StatusDecidedReject:
		return "Decided-Reject"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

func (s Status) Terminal() bool {
	return s != StatusOpen
}

// Vote is one validator's ballot on a proposed block.
type Vote struct {
	BlockHash   string
	ValidatorID string
	Score       uint64
	Timestamp   time.Time
	Signature   []byte
}

// Accept reports whether this vote counts toward quorum acceptance,
// using threshold as the accept/reject cutoff.
func (v Vote) Accept(threshold uint64) bool {
	return v.Score >= threshold
}

// Result summarizes a voting round at or after its terminal
// transition.
type Result struct {
	BlockHash    string
	TotalVotes   int
	Participants int
	AverageScore float64
	Approved     bool
	Votes        map[string]Vote
}

// Round is one block hash's voting round: a bounded-lifetime
// collection of at most one vote per validator, tallied in arrival
// order until every eligible voter has spoken or the deadline passes.
type Round struct {
	mu sync.Mutex

	blockHash string
	threshold uint64 // accept-vote score cutoff, per vote
	eligible  int    // N, size of the eligible voter set
	start     time.Time
	deadline  time.Time

	votes []Vote         // in arrival order, for deterministic tally
	byID  map[string]int // validator id -> index into votes

	status    Status
	decidedAt time.Time

	now func() time.Time
}

// NewRound opens a voting round for blockHash over an eligible voter
// set of size eligibleN, terminating no later than deadline.
// acceptThreshold is the per-vote score cutoff; pass 0 to use
// AcceptThreshold.
func NewRound(blockHash string, eligibleN int, deadline time.Time, acceptThreshold uint64) *Round {
	if acceptThreshold == 0 {
		acceptThreshold = AcceptThreshold
	}
	return &Round{
		blockHash: blockHash,
		threshold: acceptThreshold,
		eligible:  eligibleN,
		start:     time.Now(),
		deadline:  deadline,
		byID:      make(map[string]int),
		status:    StatusOpen,
		now:       time.Now,
	}
}

// BlockHash returns the block hash this round is voting on.
func (r *Round) BlockHash() string {
	return r.blockHash
}

// Status returns the round's current lifecycle status, expiring it in
// place if the deadline has passed and quorum was never reached.
func (r *Round) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireIfOverdueLocked()
	return r.status
}

// expireIfOverdueLocked settles an Open round whose deadline has
// passed: Decided-Accept if the accept tally already reached quorum,
// Expired otherwise. The transition is atomic under the round mutex;
// votes arriving afterwards are dropped.
func (r *Round) expireIfOverdueLocked() {
	if r.status == StatusOpen && r.now().After(r.deadline) {
		if r.tallyAcceptsLocked() >= r.quorumThreshold() {
			r.status = StatusDecidedAccept
		} else {
			r.status = StatusExpired
		}
		r.decidedAt = r.now()
	}
}

// quorumThreshold is the minimum accept-vote count required: strictly
// more than ⌊N/2⌋.
func (r *Round) quorumThreshold() int {
	return r.eligible/2 + 1
}

// Add records validatorID's vote. Duplicate votes from the same
// validator are ignored after the first, and votes arriving after a
// terminal state are dropped. Returns the round's status after
// applying the vote, and an error describing why the vote was not
// counted (if any). Once the last eligible voter's vote is in, the
// round transitions atomically to Decided-Accept or Decided-Reject by
// quorum tally; the round otherwise stays Open until Close or the
// deadline so every voter's score is captured for reputation.
func (r *Round) Add(v Vote) (Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expireIfOverdueLocked()
	if r.status.Terminal() {
		if r.status == StatusExpired {
			return r.status, ErrRoundExpired
		}
		return r.status, ErrRoundTerminal
	}

	if _, dup := r.byID[v.ValidatorID]; dup {
		return r.status, ErrDuplicateVote
	}

	r.byID[v.ValidatorID] = len(r.votes)
	r.votes = append(r.votes, v)

	if len(r.votes) >= r.eligible {
		if r.tallyAcceptsLocked() >= r.quorumThreshold() {
			r.status = StatusDecidedAccept
		} else {
			r.status = StatusDecidedReject
		}
		r.decidedAt = r.now()
	}
	return r.status, nil
}

func (r *Round) tallyAcceptsLocked() int {
	accepts := 0
	for _, v := range r.votes {
		if v.Accept(r.threshold) {
			accepts++
		}
	}
	return accepts
}

// Close finalizes the round: no further votes will be considered.
// Decided-Accept if the accept tally reached quorum, Decided-Reject if
// rejection is mathematically certain from the votes cast, Expired
// otherwise (the outstanding voters abstained and quorum was never
// met). Idempotent once the round is terminal.
func (r *Round) Close() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireIfOverdueLocked()
	if r.status.Terminal() {
		return r.status
	}

	accepts := r.tallyAcceptsLocked()
	remaining := r.eligible - len(r.votes)
	switch {
	case accepts >= r.quorumThreshold():
		r.status = StatusDecidedAccept
	case accepts+remaining < r.quorumThreshold():
		r.status = StatusDecidedReject
	default:
		r.status = StatusExpired
	}
	r.decidedAt = r.now()
	return r.status
}

// Snapshot returns the round's current result. It is safe to call at
// any point in the round's lifecycle, not only once terminal.
func (r *Round) Snapshot() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireIfOverdueLocked()

	votes := make(map[string]Vote, len(r.votes))
	var sum uint64
	for _, v := range r.votes {
		votes[v.ValidatorID] = v
		sum += v.Score
	}

	avg := 0.0
	if len(r.votes) > 0 {
		avg = float64(sum) / float64(len(r.votes))
	}

	return Result{
		BlockHash:    r.blockHash,
		TotalVotes:   len(r.votes),
		Participants: len(r.votes),
		AverageScore: avg,
		Approved:     r.status == StatusDecidedAccept,
		Votes:        votes,
	}
}
