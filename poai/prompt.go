// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poai

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/luxfi/poai/blockchain"
	"github.com/luxfi/poai/validators"
)

// buildPrompt constructs the per-voter AI scoring prompt: a block
// summary, transaction digests, and per-voter context (reputation,
// recent validations).
func buildPrompt(block blockchain.Block, voter validators.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluate blockchain block %s for validity.\n", block.Hash)
	fmt.Fprintf(&sb, "Height: %d  Transactions: %d  Difficulty: %d\n",
		block.Meta.Height, block.Meta.TxCount, block.Header.Difficulty)
	sb.WriteString("Transaction digests:\n")
	for _, tx := range block.Transactions {
		fmt.Fprintf(&sb, "- %s\n", txDigest(tx))
	}
	fmt.Fprintf(&sb, "Voter reputation score: %d  Total validations: %d  Successful: %d\n",
		voter.ValidationScore, voter.Usage.TotalValidations, voter.Usage.SuccessfulValidations)
	sb.WriteString("Respond with an integer validity score from 0 to 100 and whether the block should be accepted.\n")
	return sb.String()
}

// txDigest summarizes one transaction without exposing its full
// signature bytes to the AI prompt.
func txDigest(tx blockchain.Transaction) string {
	sum := sha256.Sum256(tx.Signature)
	return fmt.Sprintf("id=%s sender=%s receiver=%s amount=%d sig_digest=%s",
		tx.ID, tx.Sender, tx.Receiver, tx.Amount, hex.EncodeToString(sum[:8]))
}
