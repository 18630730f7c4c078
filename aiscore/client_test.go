// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aiscore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"
)

func testConfig() EndpointConfig {
	return EndpointConfig{
		Model:            "poai-scorer",
		MaxTokens:        256,
		Temperature:      0.2,
		TimeoutMS:        1000,
		RetryAttempts:    2,
		FailureThreshold: 2,
		SuccessThreshold: 1,
		RecoveryTimeout:  50 * time.Millisecond,
		CircuitEnabled:   true,
	}
}

func TestScoreHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": "accept 92",
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 4},
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.APIKey = "secret"
	c := New(log.NewNoOpLogger(), cfg, srv.URL, nil)

	resp, err := c.Score(context.Background(), "score this block")
	require.NoError(t, err)
	require.Equal(t, "accept 92", resp.Content)

	usage := c.GetUsage()
	require.Equal(t, int64(10), usage.PromptTokens)
	require.Equal(t, int64(4), usage.CompletionTokens)

	c.ResetUsage()
	require.Zero(t, c.GetUsage().PromptTokens)
}

func TestScoreFallsBackToBackupEndpoint(t *testing.T) {
	var primaryHits int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryHits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": "ok", "usage": map[string]any{}})
	}))
	defer backup.Close()

	cfg := testConfig()
	cfg.RetryAttempts = 1
	c := New(log.NewNoOpLogger(), cfg, primary.URL, []string{backup.URL})

	resp, err := c.Score(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Content)
	require.EqualValues(t, 1, atomic.LoadInt32(&primaryHits))
}

func TestCircuitOpensAfterFailureThreshold(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.RetryAttempts = 1
	cfg.FailureThreshold = 2
	cfg.RecoveryTimeout = time.Hour
	c := New(log.NewNoOpLogger(), cfg, srv.URL, nil)

	for i := 0; i < 2; i++ {
		_, err := c.Score(context.Background(), "p")
		require.Error(t, err)
	}
	before := atomic.LoadInt32(&hits)

	_, err := c.Score(context.Background(), "p")
	require.Error(t, err)
	require.Equal(t, before, atomic.LoadInt32(&hits), "breaker should skip the call once open")
}
