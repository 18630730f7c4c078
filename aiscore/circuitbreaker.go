// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aiscore

import (
	"sync"
	"time"
)

// breakerState is the Closed/Open/HalfOpen circuit breaker machine
// guarding a single endpoint.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker guards one AI endpoint. Its entire state transition
// logic runs under a short mutex critical section, never held across
// the HTTP call itself.
type circuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	successThreshold int
	recoveryTimeout  time.Duration

	state           breakerState
	consecutiveFail int
	consecutiveOK   int
	openedAt        time.Time

	now func() time.Time
}

func newCircuitBreaker(failureThreshold int, recoveryTimeout time.Duration, successThreshold int) *circuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if successThreshold < 1 {
		successThreshold = 1
	}
	return &circuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		recoveryTimeout:  recoveryTimeout,
		now:              time.Now,
	}
}

// allow reports whether a call may proceed, transitioning Open →
// HalfOpen once recoveryTimeout has elapsed.
func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerClosed, breakerHalfOpen:
		return true
	case breakerOpen:
		if b.now().Sub(b.openedAt) >= b.recoveryTimeout {
			b.state = breakerHalfOpen
			b.consecutiveOK = 0
			return true
		}
		return false
	}
	return true
}

func (b *circuitBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFail = 0
	switch b.state {
	case breakerHalfOpen:
		b.consecutiveOK++
		if b.consecutiveOK >= b.successThreshold {
			b.state = breakerClosed
		}
	case breakerOpen:
		// A call slipped through a race with allow(); treat as
		// half-open progress.
		b.state = breakerHalfOpen
		b.consecutiveOK = 1
	}
}

func (b *circuitBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveOK = 0
	switch b.state {
	case breakerHalfOpen:
		b.state = breakerOpen
		b.openedAt = b.now()
	case breakerClosed:
		b.consecutiveFail++
		if b.consecutiveFail >= b.failureThreshold {
			b.state = breakerOpen
			b.openedAt = b.now()
		}
	}
}
