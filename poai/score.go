// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poai

import (
	"regexp"
	"strconv"

	"github.com/luxfi/poai/vote"
)

var scorePattern = regexp.MustCompile(`-?\d+`)

// normalizeScore turns the AI-returned content into an integer score
// in [0, vote.MaxScore]. The raw content is free-form model text; the
// first integer found in it is taken as the intended score. Content
// carrying no integer normalizes to 0, which conservatively counts as
// a reject vote rather than an abstention (the call itself succeeded;
// the model just declined to give a usable number).
func normalizeScore(content string) uint64 {
	m := scorePattern.FindString(content)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 0 {
		return 0
	}
	if uint64(n) > vote.MaxScore {
		return vote.MaxScore
	}
	return uint64(n)
}
