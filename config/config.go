// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config implements the node's environment-scoped
// configuration: a typed record, development defaults, an env-var
// Load entry point, and a Validate method returning sentinel errors.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env is the deployment environment.
type Env int

const (
	Development Env = iota
	Staging
	Production
)

func (e Env) String() string {
	switch e {
	case Development:
		return "development"
	case Staging:
		return "staging"
	case Production:
		return "production"
	default:
		return "unknown"
	}
}

// parseEnv recognizes every accepted SELF_CHAIN_ENV spelling.
func parseEnv(s string) Env {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

var (
	ErrInvalidMaxTokens      = errors.New("config: max_tokens must be >= 1")
	ErrInvalidTemperature    = errors.New("config: temperature must be in [0.0, 2.0]")
	ErrInvalidTimeout        = errors.New("config: timeout_ms must be > 0")
	ErrMissingPrimary        = errors.New("config: primary_endpoint must be set")
	ErrProductionNeedsKey    = errors.New("config: production environment requires api_key")
	ErrProductionNeedsTLS    = errors.New("config: production environment requires tls.enabled")
	ErrInvalidStorageBackend = errors.New("config: storage_backend must be \"memory\" or \"distributed\"")
)

// CircuitBreakerConfig tunes the per-endpoint circuit breaker.
type CircuitBreakerConfig struct {
	FailureThreshold   int
	RecoveryTimeoutSec int
	SuccessThreshold   int
	Enabled            bool
}

// RateLimitConfig tunes the process-wide token bucket.
type RateLimitConfig struct {
	RequestsPerMinute float64
	BurstCapacity     int
	Enabled           bool
}

// TLSConfig carries TLS material paths and verification switches.
type TLSConfig struct {
	Enabled        bool
	VerifySSL      bool
	CACertPath     string
	ClientCertPath string
	ClientKeyPath  string
}

// StorageBackend selects the storage adapter implementation.
type StorageBackend string

const (
	StorageMemory      StorageBackend = "memory"
	StorageDistributed StorageBackend = "distributed"
)

// Config is the node's full runtime configuration.
type Config struct {
	Env Env

	PrimaryEndpoint string
	BackupEndpoints []string

	Model       string
	MaxTokens   int
	Temperature float64

	TimeoutMS     int
	RetryAttempts int

	CircuitBreaker CircuitBreakerConfig
	RateLimit      RateLimitConfig
	TLS            TLSConfig

	APIKey string

	StorageBackend StorageBackend

	JWTSecret string
	IPFSAPI   string
}

// Default returns development defaults. Env-specific tuning is
// applied by Load from the process environment rather than named
// constructors, since the environment axis is runtime-selected.
func Default() Config {
	return Config{
		Env:           Development,
		Model:         "gpt-4",
		MaxTokens:     1024,
		Temperature:   0.2,
		TimeoutMS:     30_000,
		RetryAttempts: 3,
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold:   5,
			RecoveryTimeoutSec: 30,
			SuccessThreshold:   2,
			Enabled:            true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstCapacity:     10,
			Enabled:           true,
		},
		TLS: TLSConfig{
			Enabled:   false,
			VerifySSL: true,
		},
		StorageBackend: StorageMemory,
	}
}

// Load builds a Config from the process environment. Unset variables
// keep Default's value; env-conditioned defaults (TLS on/off, auth
// requirement) are applied after the environment itself is resolved.
func Load() (Config, error) {
	cfg := Default()
	cfg.Env = parseEnv(os.Getenv("SELF_CHAIN_ENV"))

	switch cfg.Env {
	case Production:
		cfg.PrimaryEndpoint = os.Getenv("AI_PRODUCTION_ENDPOINT")
		cfg.Model = firstNonEmpty(os.Getenv("AI_PRODUCTION_MODEL"), cfg.Model)
		cfg.APIKey = os.Getenv("AI_PRODUCTION_API_KEY")
		cfg.TLS.Enabled = true
		cfg.CircuitBreaker.Enabled = true
	case Staging:
		cfg.PrimaryEndpoint = os.Getenv("AI_STAGING_ENDPOINT")
		cfg.Model = firstNonEmpty(os.Getenv("AI_STAGING_MODEL"), cfg.Model)
		cfg.APIKey = os.Getenv("AI_STAGING_API_KEY")
	default:
		cfg.PrimaryEndpoint = firstNonEmpty(os.Getenv("AI_STAGING_ENDPOINT"), "http://localhost:8080/v1/score")
	}

	if raw := os.Getenv("AI_BACKUP_ENDPOINTS"); raw != "" {
		for _, ep := range strings.Split(raw, ",") {
			ep = strings.TrimSpace(ep)
			if ep != "" {
				cfg.BackupEndpoints = append(cfg.BackupEndpoints, ep)
			}
		}
	}

	if v := os.Getenv("AI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("AI_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutMS = n
		}
	}
	if v := os.Getenv("AI_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryAttempts = n
		}
	}

	cfg.TLS.CACertPath = os.Getenv("AI_CA_CERT_PATH")
	cfg.TLS.ClientCertPath = os.Getenv("AI_CLIENT_CERT_PATH")
	cfg.TLS.ClientKeyPath = os.Getenv("AI_CLIENT_KEY_PATH")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.IPFSAPI = os.Getenv("IPFS_API")

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.StorageBackend = StorageBackend(v)
	} else if ok, _ := strconv.ParseBool(os.Getenv("USE_REAL_ORBITDB")); ok {
		cfg.StorageBackend = StorageDistributed
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Validate enforces the configuration rules, including the production
// invariant: a production environment requires an api_key and TLS.
// Validation failures are fatal at startup.
func (c Config) Validate() error {
	if c.PrimaryEndpoint == "" {
		return ErrMissingPrimary
	}
	if c.MaxTokens < 1 {
		return ErrInvalidMaxTokens
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return ErrInvalidTemperature
	}
	if c.TimeoutMS <= 0 {
		return ErrInvalidTimeout
	}
	switch c.StorageBackend {
	case StorageMemory, StorageDistributed:
	default:
		return ErrInvalidStorageBackend
	}
	if c.Env == Production {
		if c.APIKey == "" {
			return ErrProductionNeedsKey
		}
		if !c.TLS.Enabled {
			return ErrProductionNeedsTLS
		}
	}
	return nil
}

// RecoveryTimeout returns the circuit breaker's recovery timeout as a
// time.Duration, for direct use by aiscore.EndpointConfig.
func (c CircuitBreakerConfig) RecoveryTimeout() time.Duration {
	return time.Duration(c.RecoveryTimeoutSec) * time.Second
}
