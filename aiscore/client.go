// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package aiscore implements the AI scoring client: an HTTP client
// wrapping a model endpoint with retry/backoff, per-endpoint circuit
// breaking, rate limiting, and cumulative token usage accounting.
package aiscore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/time/rate"

	"github.com/luxfi/log"
)

// Response is the normalized result of one scoring call.
type Response struct {
	Content string
	Usage   UsageStats
}

// UsageStats counts tokens consumed across scoring calls.
type UsageStats struct {
	PromptTokens     int64
	CompletionTokens int64
}

// EndpointConfig configures one AI endpoint call and its resilience
// envelope.
type EndpointConfig struct {
	Model             string
	MaxTokens         int
	Temperature       float64
	TimeoutMS         int
	RetryAttempts     int
	APIKey            string
	FailureThreshold  int
	RecoveryTimeout   time.Duration
	SuccessThreshold  int
	CircuitEnabled    bool
	RequestsPerMinute float64
	BurstCapacity     int
	RateLimitEnabled  bool
}

// Client is the AI scoring client. It selects among a primary
// endpoint and ordered backups, retrying within policy and tripping a
// per-endpoint circuit breaker on sustained failure.
type Client struct {
	httpClient *http.Client
	log        log.Logger
	cfg        EndpointConfig
	endpoints  []string // primary first, then backups

	limiter *rate.Limiter

	mu       sync.Mutex
	usage    UsageStats
	breakers map[string]*circuitBreaker
}

// New constructs a scoring client against primary (first) and backup
// endpoints, wiring the configured rate limiter and per-endpoint
// circuit breakers.
func New(logger log.Logger, cfg EndpointConfig, primary string, backups []string) *Client {
	endpoints := append([]string{primary}, backups...)
	c := &Client{
		httpClient: &http.Client{},
		log:        logger,
		cfg:        cfg,
		endpoints:  endpoints,
		breakers:   make(map[string]*circuitBreaker, len(endpoints)),
	}
	for _, ep := range endpoints {
		c.breakers[ep] = newCircuitBreaker(cfg.FailureThreshold, cfg.RecoveryTimeout, cfg.SuccessThreshold)
	}
	if cfg.RateLimitEnabled {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), cfg.BurstCapacity)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Content string `json:"content"`
	Usage   struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Score sends prompt to the first healthy endpoint and returns its
// normalized response. Retries occur within policy against the *same*
// endpoint before rotating to the next; while an endpoint's breaker is
// open it is skipped entirely.
func (c *Client) Score(ctx context.Context, prompt string) (*Response, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	var lastErr error = ErrCircuitOpen
	for _, ep := range c.endpoints {
		breaker := c.breakers[ep]
		if c.cfg.CircuitEnabled && !breaker.allow() {
			lastErr = ErrCircuitOpen
			continue
		}

		resp, err := c.callWithRetry(ctx, ep, prompt)
		if err == nil {
			breaker.recordSuccess()
			c.recordUsage(resp.Usage)
			return resp, nil
		}
		breaker.recordFailure()
		if c.log != nil {
			c.log.Warn("ai scoring call failed", "endpoint", ep, "error", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all endpoints exhausted: %w", lastErr)
}

// callWithRetry retries a single endpoint up to cfg.RetryAttempts
// times with exponential backoff.
func (c *Client) callWithRetry(ctx context.Context, endpoint, prompt string) (*Response, error) {
	attempts := c.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	bo := backoff.NewExponentialBackOff()

	var resp *Response
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err = c.callOnce(ctx, endpoint, prompt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		if attempt < attempts-1 {
			select {
			case <-time.After(bo.NextBackOff()):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
		}
	}
	return nil, err
}

// callOnce performs a single HTTP attempt within the configured
// per-attempt timeout.
func (c *Client) callOnce(ctx context.Context, endpoint, prompt string) (*Response, error) {
	timeout := time.Duration(c.cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, httpResp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &Response{
		Content: parsed.Content,
		Usage: UsageStats{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
		},
	}, nil
}

func (c *Client) recordUsage(u UsageStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage.PromptTokens += u.PromptTokens
	c.usage.CompletionTokens += u.CompletionTokens
}

// GetUsage returns a snapshot of cumulative usage across all calls.
func (c *Client) GetUsage() UsageStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

// ResetUsage zeroes the cumulative usage counters.
func (c *Client) ResetUsage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = UsageStats{}
}
