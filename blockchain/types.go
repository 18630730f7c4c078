// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package blockchain implements the block and transaction validator:
// structural, cryptographic, and replay validation of transactions,
// and structural, transaction, signature and resource-limit validation
// of blocks, ahead of AI scoring.
package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
)

// MaxTxPerBlock caps how many transactions a single block may carry.
const MaxTxPerBlock = 1000

// Skew is the maximum allowed forward clock drift for a transaction or
// block header timestamp, in seconds.
const Skew = 300

// MaxBlockSizeForAI and MaxTxDataForAI are security limits surfaced to
// the AI layer: a block or transaction exceeding these bypasses AI
// scoring and is rejected outright.
const (
	MaxBlockSizeForAI = 1 << 20  // 1 MiB
	MaxTxDataForAI    = 64 << 10 // 64 KiB
)

var addressPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// Transaction is one transfer between two addresses.
type Transaction struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Amount    uint64 `json:"amount"`
	Timestamp int64  `json:"timestamp"`
	Signature []byte `json:"signature"`

	// SenderAlgorithm names the crypto.AlgorithmTag the sender's
	// signature was produced under, so the validator can dispatch to
	// the right verifier without an implicit default.
	SenderAlgorithm byte `json:"sender_algorithm"`
}

// Header is the hashed portion of a block's identity.
type Header struct {
	Index        uint64 `json:"index"`
	Timestamp    int64  `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Nonce        uint64 `json:"nonce"`
	Difficulty   uint32 `json:"difficulty"`
}

// Meta carries derived block metadata and the producer's attestation.
type Meta struct {
	Height             uint64 `json:"height"`
	Size               int64  `json:"size"`
	TxCount            int    `json:"tx_count"`
	ValidatorID        string `json:"validator_id"`
	ValidatorSignature []byte `json:"validator_signature"`
	ValidatorAlgorithm byte   `json:"validator_algorithm"`
}

// Block is an ordered sequence of transactions under one header.
type Block struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
	Meta         Meta          `json:"meta"`
	Hash         string        `json:"hash"`
}

// hashingView is the subset of a block's fields the hash commits to:
// header and transactions. Meta.ValidatorID/ValidatorSignature are
// produced after the hash, so cannot be part of its preimage, and
// Meta.Size/TxCount are themselves derived from this same view.
type hashingView struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// ComputeHash deterministically derives a block's hash from its header
// and transactions.
func ComputeHash(header Header, txs []Transaction) (string, error) {
	b, err := json.Marshal(hashingView{Header: header, Transactions: txs})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// SerializedSize returns the canonical serialized size of a block's
// header+transactions view. Meta itself is excluded, for the same
// reason it is excluded from the hash preimage.
func SerializedSize(header Header, txs []Transaction) (int64, error) {
	b, err := json.Marshal(hashingView{Header: header, Transactions: txs})
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// ValidAddress reports whether s matches the `^[0-9a-f]{40}$` address
// pattern.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ValidPreviousHash reports whether s is a well-formed 64-hex-char
// previous-block hash.
func ValidPreviousHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
