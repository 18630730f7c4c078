// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package blockchain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/poai/crypto"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func signedTx(t *testing.T, kp *crypto.KeyPair, tx Transaction) Transaction {
	t.Helper()
	msg := signedTransactionBytes(tx)
	sig, err := crypto.Sign(kp, msg)
	require.NoError(t, err)
	tx.Signature = sig
	return tx
}

func newTestValidator(t *testing.T) (*Validator, *crypto.KeyPair, string) {
	t.Helper()
	kp, err := crypto.Generate(crypto.TagECDSASecp256k1)
	require.NoError(t, err)
	sender := strings.Repeat("a", 40)
	resolver := MapResolver{
		sender: {Public: kp.Public(), Tag: crypto.TagECDSASecp256k1},
	}
	v := NewValidator(resolver, nil)
	return v, kp, sender
}

func TestValidateTransactionHappyPath(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	tx := signedTx(t, kp, Transaction{
		ID:              "tx-1",
		Sender:          sender,
		Receiver:        strings.Repeat("b", 40),
		Amount:          100,
		Timestamp:       time.Now().Unix(),
		SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
	})
	require.NoError(t, v.ValidateTransaction(tx))
}

func TestValidateTransactionRejectsMalformedAddress(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	tx := signedTx(t, kp, Transaction{
		ID:              "tx-2",
		Sender:          sender,
		Receiver:        "not-an-address",
		Amount:          1,
		Timestamp:       time.Now().Unix(),
		SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
	})
	require.ErrorIs(t, v.ValidateTransaction(tx), ErrMalformedAddress)
}

func TestValidateTransactionRejectsBadSignature(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	tx := signedTx(t, kp, Transaction{
		ID:              "tx-3",
		Sender:          sender,
		Receiver:        strings.Repeat("b", 40),
		Amount:          1,
		Timestamp:       time.Now().Unix(),
		SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
	})
	tx.Amount = 999999 // mutate after signing
	require.ErrorIs(t, v.ValidateTransaction(tx), ErrSignatureMismatch)
}

// TestTimestampSkewBoundary: a timestamp of now+Skew is accepted,
// now+Skew+1 is rejected.
func TestTimestampSkewBoundary(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	now := time.Now()
	v.now = fixedClock(now)

	okTx := signedTx(t, kp, Transaction{
		ID:              "tx-skew-ok",
		Sender:          sender,
		Receiver:        strings.Repeat("b", 40),
		Amount:          1,
		Timestamp:       now.Unix() + Skew,
		SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
	})
	require.NoError(t, v.ValidateTransaction(okTx))

	badTx := signedTx(t, kp, Transaction{
		ID:              "tx-skew-bad",
		Sender:          sender,
		Receiver:        strings.Repeat("b", 40),
		Amount:          1,
		Timestamp:       now.Unix() + Skew + 1,
		SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
	})
	require.ErrorIs(t, v.ValidateTransaction(badTx), ErrTimestampSkew)
}

// TestReplayDetection: the same transaction id submitted twice is
// rejected the second time.
func TestReplayDetection(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	tx := signedTx(t, kp, Transaction{
		ID:              "tx-replay",
		Sender:          sender,
		Receiver:        strings.Repeat("b", 40),
		Amount:          1,
		Timestamp:       time.Now().Unix(),
		SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
	})
	require.NoError(t, v.ValidateTransaction(tx))
	require.ErrorIs(t, v.ValidateTransaction(tx), ErrReplayedTx)
}

func buildValidBlock(t *testing.T, v *Validator, kp *crypto.KeyPair, sender string, n int) Block {
	t.Helper()
	txs := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, signedTx(t, kp, Transaction{
			ID:              "tx-" + string(rune('a'+i)),
			Sender:          sender,
			Receiver:        strings.Repeat("b", 40),
			Amount:          uint64(i + 1),
			Timestamp:       time.Now().Unix(),
			SenderAlgorithm: byte(crypto.TagECDSASecp256k1),
		}))
	}
	header := Header{Index: 1, Timestamp: time.Now().Unix(), PreviousHash: "", Nonce: 0, Difficulty: 1}
	hash, err := ComputeHash(header, txs)
	require.NoError(t, err)
	size, err := SerializedSize(header, txs)
	require.NoError(t, err)
	return Block{
		Header:       header,
		Transactions: txs,
		Meta:         Meta{Height: 1, Size: size, TxCount: len(txs)},
		Hash:         hash,
	}
}

func TestValidateBlockStructuralHappyPath(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	block := buildValidBlock(t, v, kp, sender, 3)
	require.NoError(t, v.ValidateBlockStructural(block))
}

func TestValidateBlockRejectsHashMismatch(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	block := buildValidBlock(t, v, kp, sender, 1)
	block.Hash = strings.Repeat("0", 64)
	require.ErrorIs(t, v.ValidateBlockStructural(block), ErrHashMismatch)
}

func TestValidateBlockRejectsTooManyTx(t *testing.T) {
	v, _, _ := newTestValidator(t)
	txs := make([]Transaction, MaxTxPerBlock+1)
	block := Block{
		Header:       Header{Index: 1},
		Transactions: txs,
		Meta:         Meta{TxCount: len(txs)},
	}
	require.ErrorIs(t, v.ValidateBlockStructural(block), ErrTooManyTx)
}

func TestValidateBlockRejectsMalformedPreviousHash(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	block := buildValidBlock(t, v, kp, sender, 1)
	block.Header.PreviousHash = "deadbeef"
	hash, err := ComputeHash(block.Header, block.Transactions)
	require.NoError(t, err)
	block.Hash = hash
	require.ErrorIs(t, v.ValidateBlockStructural(block), ErrMalformedPrevHash)
}

// TestBlockWithDuplicateTxIDRejected: a block carrying the same
// transaction id twice fails structurally before any AI scoring.
func TestBlockWithDuplicateTxIDRejected(t *testing.T) {
	v, kp, sender := newTestValidator(t)
	block := buildValidBlock(t, v, kp, sender, 1)
	block.Transactions = append(block.Transactions, block.Transactions[0])
	block.Meta.TxCount = len(block.Transactions)
	hash, err := ComputeHash(block.Header, block.Transactions)
	require.NoError(t, err)
	block.Hash = hash
	size, err := SerializedSize(block.Header, block.Transactions)
	require.NoError(t, err)
	block.Meta.Size = size
	require.ErrorIs(t, v.ValidateBlockStructural(block), ErrReplayedTx)
}

func TestResourceLimitBypassesAIScoring(t *testing.T) {
	v, _, _ := newTestValidator(t)
	oversized := Block{
		Transactions: []Transaction{{ID: "big", Signature: make([]byte, MaxTxDataForAI+1)}},
	}
	require.ErrorIs(t, v.WithinAIResourceLimits(oversized), ErrResourceLimit)
}
