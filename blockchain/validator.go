// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package blockchain

import (
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/poai/crypto"
)

// replayWindow bounds how long a transaction id is remembered for
// duplicate detection. A validator need not remember ids forever; this
// mirrors the finite mempool/recent-block lookback a real chain client
// keeps.
const replayWindow = 10 * time.Minute

// Resolver looks up the public key and declared algorithm tag for an
// address, so the validator can verify a signature without embedding
// a key-distribution mechanism itself. A production node backs this
// with the storage adapter's `peers`/validator-registry lookups;
// tests back it with a plain map.
type Resolver interface {
	PublicKey(address string) (pub []byte, tag crypto.AlgorithmTag, ok bool)
}

// MapResolver is a Resolver backed by an in-memory map, useful for
// tests and for a single-process node that keeps its known public
// keys in the validator registry.
type MapResolver map[string]struct {
	Public []byte
	Tag    crypto.AlgorithmTag
}

func (m MapResolver) PublicKey(address string) ([]byte, crypto.AlgorithmTag, bool) {
	e, ok := m[address]
	if !ok {
		return nil, 0, false
	}
	return e.Public, e.Tag, true
}

// Validator performs structural, cryptographic and replay validation
// of transactions, and structural, per-transaction, signature and
// resource-limit validation of blocks.
type Validator struct {
	resolver Resolver
	log      log.Logger

	mu   sync.Mutex
	seen map[string]time.Time

	now func() time.Time
}

// NewValidator constructs a block/transaction validator resolving
// sender and producer public keys via resolver.
func NewValidator(resolver Resolver, logger log.Logger) *Validator {
	return &Validator{
		resolver: resolver,
		log:      logger,
		seen:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// ValidateTransaction runs structural checks, cryptographic signature
// verification, and replay detection against the recent-seen window.
func (v *Validator) ValidateTransaction(tx Transaction) error {
	if !ValidAddress(tx.Sender) {
		return fmt.Errorf("%w: sender %q", ErrMalformedAddress, tx.Sender)
	}
	if !ValidAddress(tx.Receiver) {
		return fmt.Errorf("%w: receiver %q", ErrMalformedAddress, tx.Receiver)
	}
	if len(tx.Signature) == 0 {
		return fmt.Errorf("%w: tx %s", ErrMissingSignature, tx.ID)
	}
	now := v.now().Unix()
	if tx.Timestamp > now+Skew {
		return fmt.Errorf("%w: tx %s timestamp %d exceeds now+SKEW (%d)", ErrTimestampSkew, tx.ID, tx.Timestamp, now+Skew)
	}

	pub, tag, ok := v.resolver.PublicKey(tx.Sender)
	if !ok || tag != crypto.AlgorithmTag(tx.SenderAlgorithm) {
		return fmt.Errorf("%w: tx %s sender key unresolvable", ErrSignatureMismatch, tx.ID)
	}
	verified, err := crypto.Verify(pub, tag, signedTransactionBytes(tx), tx.Signature)
	if err != nil || !verified {
		return fmt.Errorf("%w: tx %s", ErrSignatureMismatch, tx.ID)
	}

	if err := v.checkAndRecordReplay(tx.ID); err != nil {
		return err
	}
	return nil
}

// signedTransactionBytes is the canonical message a transaction's
// signature is computed over: every field except the signature
// itself.
func signedTransactionBytes(tx Transaction) []byte {
	tx.Signature = nil
	b, _ := jsonMarshalStable(tx)
	return b
}

func (v *Validator) checkAndRecordReplay(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := v.now()
	if seenAt, ok := v.seen[id]; ok && now.Sub(seenAt) <= replayWindow {
		return fmt.Errorf("%w: %s", ErrReplayedTx, id)
	}
	v.seen[id] = now
	v.evictExpiredLocked(now)
	return nil
}

func (v *Validator) evictExpiredLocked(now time.Time) {
	for id, seenAt := range v.seen {
		if now.Sub(seenAt) > replayWindow {
			delete(v.seen, id)
		}
	}
}

// ValidateBlockStructural checks hash recomputation, previous-hash
// well-formedness, tx-count/size bounds, header timestamp skew, every
// transaction's validity, and the producer's block signature. It does
// not perform AI scoring, which is the PoAI engine's responsibility
// once structural/crypto validity is established.
func (v *Validator) ValidateBlockStructural(b Block) error {
	if len(b.Transactions) > MaxTxPerBlock {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTx, len(b.Transactions), MaxTxPerBlock)
	}
	if b.Meta.TxCount != len(b.Transactions) {
		return fmt.Errorf("%w: meta.tx_count=%d != len(transactions)=%d", ErrSizeMismatch, b.Meta.TxCount, len(b.Transactions))
	}
	if b.Header.PreviousHash != "" && !ValidPreviousHash(b.Header.PreviousHash) {
		return fmt.Errorf("%w: %q", ErrMalformedPrevHash, b.Header.PreviousHash)
	}
	now := v.now().Unix()
	if b.Header.Timestamp > now+Skew {
		return fmt.Errorf("%w: header timestamp %d exceeds now+SKEW (%d)", ErrTimestampSkew, b.Header.Timestamp, now+Skew)
	}

	wantHash, err := ComputeHash(b.Header, b.Transactions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHashMismatch, err)
	}
	if wantHash != b.Hash {
		return fmt.Errorf("%w: got %s want %s", ErrHashMismatch, b.Hash, wantHash)
	}

	wantSize, err := SerializedSize(b.Header, b.Transactions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSizeMismatch, err)
	}
	if wantSize != b.Meta.Size {
		return fmt.Errorf("%w: got %d want %d", ErrSizeMismatch, b.Meta.Size, wantSize)
	}

	seenTxIDs := make(map[string]struct{}, len(b.Transactions))
	for _, tx := range b.Transactions {
		if _, dup := seenTxIDs[tx.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s within block", ErrReplayedTx, tx.ID)
		}
		seenTxIDs[tx.ID] = struct{}{}
		if err := v.ValidateTransaction(tx); err != nil {
			return err
		}
	}

	if len(b.Meta.ValidatorSignature) > 0 {
		pub, tag, ok := v.resolver.PublicKey(b.Meta.ValidatorID)
		if !ok || tag != crypto.AlgorithmTag(b.Meta.ValidatorAlgorithm) {
			return fmt.Errorf("%w: block %s producer key unresolvable", ErrSignatureMismatch, b.Hash)
		}
		verified, err := crypto.Verify(pub, tag, []byte(b.Hash), b.Meta.ValidatorSignature)
		if err != nil || !verified {
			return fmt.Errorf("%w: block %s producer signature", ErrSignatureMismatch, b.Hash)
		}
	}

	return nil
}

// WithinAIResourceLimits reports whether b is small enough to be
// scored by the AI layer: a block exceeding MaxBlockSizeForAI, or any
// transaction whose serialized size exceeds MaxTxDataForAI, bypasses
// AI scoring and is rejected with ErrResourceLimit before a prompt is
// ever constructed.
func (v *Validator) WithinAIResourceLimits(b Block) error {
	size, err := SerializedSize(b.Header, b.Transactions)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResourceLimit, err)
	}
	if size > MaxBlockSizeForAI {
		return fmt.Errorf("%w: block size %d exceeds %d", ErrResourceLimit, size, MaxBlockSizeForAI)
	}
	for _, tx := range b.Transactions {
		raw, err := jsonMarshalStable(tx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrResourceLimit, err)
		}
		if int64(len(raw)) > MaxTxDataForAI {
			return fmt.Errorf("%w: tx %s data %d exceeds %d", ErrResourceLimit, tx.ID, len(raw), MaxTxDataForAI)
		}
	}
	return nil
}
