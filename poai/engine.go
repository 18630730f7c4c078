// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package poai implements the PoAI consensus engine: it orchestrates
// the validator registry, AI scoring client, vote and round manager,
// and block validator behind a single validate-block operation. Its
// concurrency shape is a bounded worker fan-out over per-voter scoring
// calls, joined before the round is finalized.
package poai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/poai/aiscore"
	"github.com/luxfi/poai/blockchain"
	"github.com/luxfi/poai/crypto"
	"github.com/luxfi/poai/metrics"
	"github.com/luxfi/poai/storage"
	"github.com/luxfi/poai/validators"
	"github.com/luxfi/poai/vote"
)

// Config tunes the engine's per-round behavior. Zero values are
// replaced with the defaults below by NewEngine.
type Config struct {
	// RoundTimeout is how long a voting round stays Open before
	// expiring.
	RoundTimeout time.Duration
	// MaxConcurrentScoring bounds the number of simultaneous AI
	// scoring calls in flight.
	MaxConcurrentScoring int
	// AcceptThreshold is the per-vote score cutoff; 0 uses
	// vote.AcceptThreshold.
	AcceptThreshold uint64
}

func (c Config) withDefaults() Config {
	if c.RoundTimeout <= 0 {
		c.RoundTimeout = 10 * time.Second
	}
	if c.MaxConcurrentScoring <= 0 {
		c.MaxConcurrentScoring = 8
	}
	return c
}

// Engine is the PoAI consensus engine. The registry, round manager,
// and storage adapter are the sole sources of truth; there are no
// package-level singletons, every collaborator arrives through the
// constructor.
type Engine struct {
	cfg Config

	registry       *validators.Registry
	ai             *aiscore.Client
	rounds         *vote.Manager
	blockValidator *blockchain.Validator
	store          storage.Adapter

	// localKey signs votes this node casts itself; nil means this
	// engine only aggregates externally-gathered, already-signed
	// votes.
	localKey *crypto.KeyPair

	// pendingPersist holds blocks whose round decided Accept but whose
	// write to storage failed; they are not canonical until
	// RetryPendingPersists flushes them.
	pendingMu      sync.Mutex
	pendingPersist []blockchain.Block

	log     log.Logger
	metrics *engineMetrics
}

type engineMetrics struct {
	accepted     metrics.Counter
	rejected     metrics.Counter
	expired      metrics.Counter
	abstained    metrics.Counter
	votesTotal   metrics.Counter
	roundLatency metrics.Averager
}

func newEngineMetrics(reg metrics.Registry) *engineMetrics {
	if reg == nil {
		reg = metrics.NewRegistry(nil)
	}
	return &engineMetrics{
		accepted:     reg.NewCounter("poai_blocks_accepted"),
		rejected:     reg.NewCounter("poai_blocks_rejected"),
		expired:      reg.NewCounter("poai_rounds_expired"),
		abstained:    reg.NewCounter("poai_votes_abstained"),
		votesTotal:   reg.NewCounter("poai_votes_total"),
		roundLatency: reg.NewAverager("poai_round_latency_ms"),
	}
}

// NewEngine constructs a PoAI engine from its collaborator components.
// localKey, if non-nil, signs votes this node casts for itself.
func NewEngine(
	cfg Config,
	registry *validators.Registry,
	ai *aiscore.Client,
	rounds *vote.Manager,
	blockValidator *blockchain.Validator,
	store storage.Adapter,
	localKey *crypto.KeyPair,
	logger log.Logger,
	metricsReg metrics.Registry,
) *Engine {
	return &Engine{
		cfg:            cfg.withDefaults(),
		registry:       registry,
		ai:             ai,
		rounds:         rounds,
		blockValidator: blockValidator,
		store:          store,
		localKey:       localKey,
		log:            logger,
		metrics:        newEngineMetrics(metricsReg),
	}
}

// ValidateBlock runs the top-level validate-block algorithm:
// eligibility sampling, structural/crypto pre-checks, concurrent
// AI-scored voting, quorum aggregation, and on accept persistence plus
// reputation updates. It never persists a block whose transactions
// fail structural or signature checks, regardless of how the AI
// scoring would have gone.
func (e *Engine) ValidateBlock(ctx context.Context, block blockchain.Block) (vote.Result, error) {
	// Resource limits are checked first and cheaply: an oversized
	// block bypasses AI scoring (and the cost of full crypto
	// validation) and is rejected outright.
	if err := e.blockValidator.WithinAIResourceLimits(block); err != nil {
		return vote.Result{}, err
	}
	if err := e.blockValidator.ValidateBlockStructural(block); err != nil {
		return vote.Result{}, err
	}

	eligible := e.registry.ListEligible()
	if len(eligible) == 0 {
		return vote.Result{}, fmt.Errorf("%w: no eligible voters", ErrValidatorNotEligible)
	}

	deadline := time.Now().Add(e.cfg.RoundTimeout)
	round := e.rounds.Open(block.Hash, len(eligible), deadline, e.cfg.AcceptThreshold)

	roundCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	roundStart := time.Now()
	e.collectVotes(roundCtx, block, eligible)
	e.metrics.roundLatency.Observe(float64(time.Since(roundStart).Milliseconds()))

	result, ok := e.rounds.Finalize(block.Hash)
	if !ok {
		// Another caller already finalized this hash's round; fall
		// back to the in-memory snapshot so the caller still gets a
		// coherent result.
		result = round.Snapshot()
	}

	switch {
	case result.Approved:
		e.metrics.accepted.Inc()
		if err := e.persist(ctx, block); err != nil {
			// The round's accept decision stands but the block is not
			// yet canonical; queue it for RetryPendingPersists.
			// Reputation updates still apply since the decision
			// itself stands.
			e.enqueuePending(block)
			e.updateReputations(result)
			return result, fmt.Errorf("block accepted but not persisted: %w", err)
		}
		e.updateReputations(result)
	case round.Status() == vote.StatusExpired:
		e.metrics.expired.Inc()
	default:
		e.metrics.rejected.Inc()
	}

	return result, nil
}

// collectVotes runs one scoring call per eligible voter, bounded by
// the MaxConcurrentScoring semaphore. It returns once every voter has
// either cast a vote or abstained (AI failure, or round
// deadline/cancellation).
func (e *Engine) collectVotes(ctx context.Context, block blockchain.Block, eligible []validators.State) {
	sem := make(chan struct{}, e.cfg.MaxConcurrentScoring)
	var wg sync.WaitGroup
	for _, voter := range eligible {
		voter := voter
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			e.scoreOne(ctx, block, voter)
		}()
	}
	wg.Wait()
}

// scoreOne performs one voter's AI scoring call and, on success, casts
// its vote. On a terminal (post-retry) AI failure it records an
// abstention: the voter simply does not count toward participants,
// which is not the same as a reject vote.
func (e *Engine) scoreOne(ctx context.Context, block blockchain.Block, voter validators.State) {
	start := time.Now()
	prompt := buildPrompt(block, voter)
	resp, err := e.ai.Score(ctx, prompt)
	elapsedMS := float64(time.Since(start).Milliseconds())
	if err != nil {
		e.metrics.abstained.Inc()
		if e.log != nil {
			e.log.Warn("voter abstained", "validator", voter.ID, "block_hash", block.Hash, "error", err)
		}
		return
	}

	score := normalizeScore(resp.Content)
	v := vote.Vote{
		BlockHash:   block.Hash,
		ValidatorID: voter.ID,
		Score:       score,
		Timestamp:   time.Now(),
	}
	if e.localKey != nil {
		if sig, err := crypto.Sign(e.localKey, voteMessage(v)); err == nil {
			v.Signature = sig
		}
	}

	if status, err := e.rounds.Submit(v); err != nil {
		if e.log != nil {
			e.log.Warn("vote dropped", "validator", voter.ID, "block_hash", block.Hash, "status", status, "error", err)
		}
		return
	}
	e.metrics.votesTotal.Inc()
	e.registry.RecordValidation(voter.ID, true, elapsedMS)
}

// voteMessage is the canonical byte sequence a vote's signature
// commits to.
func voteMessage(v vote.Vote) []byte {
	return []byte(fmt.Sprintf("%s|%s|%d|%d", v.BlockHash, v.ValidatorID, v.Score, v.Timestamp.Unix()))
}

// VerifyVote checks an externally-gathered vote's signature against
// the claimed validator's registered public key. A vote with no
// signature (locally produced without a signing key configured) is
// treated as valid by convention; single-process tests and the
// resilience harness rely on this to avoid wiring a full
// key-distribution path.
func VerifyVote(registry *validators.Registry, tag crypto.AlgorithmTag, v vote.Vote) (bool, error) {
	if len(v.Signature) == 0 {
		return true, nil
	}
	state, ok := registry.Get(v.ValidatorID)
	if !ok {
		return false, ErrValidatorNotFound
	}
	return crypto.Verify(state.PublicKey, tag, voteMessage(v), v.Signature)
}

// SubmitExternalVote verifies and submits a vote gathered from a peer.
// A vote whose signature does not verify is dropped and the claimed
// sender's reputation is penalized; the round continues.
func (e *Engine) SubmitExternalVote(tag crypto.AlgorithmTag, v vote.Vote) (vote.Status, error) {
	ok, err := VerifyVote(e.registry, tag, v)
	if err != nil || !ok {
		e.registry.RecordValidation(v.ValidatorID, false, 0)
		if e.log != nil {
			e.log.Warn("external vote rejected", "validator", v.ValidatorID, "block_hash", v.BlockHash, "error", err)
		}
		if err == nil {
			err = ErrInvalidVoteSignature
		}
		return vote.StatusOpen, err
	}
	return e.rounds.Submit(v)
}

// enqueuePending records a block that was accepted but could not be
// persisted.
func (e *Engine) enqueuePending(block blockchain.Block) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.pendingPersist = append(e.pendingPersist, block)
}

// RetryPendingPersists re-attempts persistence of accepted blocks
// whose earlier write failed. Blocks that fail again stay queued.
// Returns the number still pending.
func (e *Engine) RetryPendingPersists(ctx context.Context) int {
	e.pendingMu.Lock()
	queued := e.pendingPersist
	e.pendingPersist = nil
	e.pendingMu.Unlock()

	var still []blockchain.Block
	for _, b := range queued {
		if err := e.persist(ctx, b); err != nil {
			still = append(still, b)
			if e.log != nil {
				e.log.Warn("persist retry failed", "block_hash", b.Hash, "error", err)
			}
		}
	}

	e.pendingMu.Lock()
	e.pendingPersist = append(still, e.pendingPersist...)
	n := len(e.pendingPersist)
	e.pendingMu.Unlock()
	return n
}

// persist stores an accepted block into the storage adapter's
// `blocks` collection.
func (e *Engine) persist(ctx context.Context, block blockchain.Block) error {
	body, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}
	_, err = e.store.StoreDocument(ctx, storage.CollectionBlocks, storage.Document{
		ID:   block.Hash,
		Body: body,
	})
	return err
}

// updateReputations applies the reputation update exactly once per
// terminal round transition, for every validator that participated
// (cast a counted vote).
func (e *Engine) updateReputations(result vote.Result) {
	for id := range result.Votes {
		e.registry.UpdateReputation(id)
	}
}
