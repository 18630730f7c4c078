// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aiscore

import "errors"

var (
	ErrRateLimited    = errors.New("aiscore: rate limited")
	ErrCircuitOpen    = errors.New("aiscore: circuit open")
	ErrTimeout        = errors.New("aiscore: timeout")
	ErrUpstream       = errors.New("aiscore: upstream error")
	ErrNotImplemented = errors.New("aiscore: not implemented")
)
