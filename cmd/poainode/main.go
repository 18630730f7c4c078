// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command poainode is a thin wrapper wiring the configuration,
// crypto, storage, validator, and PoAI packages together into a
// single process: flag-parsed options, slog.Default() for CLI-facing
// output, a single main wiring collaborators before entering a run
// loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/poai/aiscore"
	"github.com/luxfi/poai/blockchain"
	"github.com/luxfi/poai/config"
	"github.com/luxfi/poai/crypto"
	"github.com/luxfi/poai/metrics"
	"github.com/luxfi/poai/poai"
	"github.com/luxfi/poai/storage"
	"github.com/luxfi/poai/validators"
	"github.com/luxfi/poai/vote"
)

var logger = slog.Default().With("module", "poainode")

func main() {
	nodeID := flag.String("node-id", "node-1", "this node's identifier")
	keyAlgorithm := flag.String("key-algorithm", "hybrid-signature", "signing algorithm: ecdsa-secp256k1, hybrid-signature")
	minStake := flag.Uint64("min-stake", 1000, "minimum stake for validator eligibility")
	minActiveHours := flag.Float64("min-active-hours", 24, "maximum validator inactivity window, in hours")
	roundTimeoutMS := flag.Int("round-timeout-ms", 10_000, "voting round timeout, in milliseconds")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	tag, err := parseKeyAlgorithm(*keyAlgorithm)
	if err != nil {
		logger.Error("invalid key algorithm", "error", err)
		os.Exit(1)
	}
	localKey, err := crypto.Generate(tag)
	if err != nil {
		logger.Error("key generation failed", "error", err)
		os.Exit(1)
	}
	defer localKey.Destroy()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := newStorageAdapter(cfg.StorageBackend)
	if err := store.Initialize(ctx, *nodeID); err != nil {
		logger.Error("storage initialization failed", "error", err)
		os.Exit(1)
	}
	defer store.Shutdown(context.Background())

	registry := validators.NewRegistry(validators.Eligibility{
		MinStake:       *minStake,
		MinActiveHours: *minActiveHours,
	})
	registry.Add(*nodeID, localKey.Public(), *minStake)

	aiClient := aiscore.New(log.NewNoOpLogger(), aiscore.EndpointConfig{
		Model:             cfg.Model,
		MaxTokens:         cfg.MaxTokens,
		Temperature:       cfg.Temperature,
		TimeoutMS:         cfg.TimeoutMS,
		RetryAttempts:     cfg.RetryAttempts,
		APIKey:            cfg.APIKey,
		FailureThreshold:  cfg.CircuitBreaker.FailureThreshold,
		RecoveryTimeout:   cfg.CircuitBreaker.RecoveryTimeout(),
		SuccessThreshold:  cfg.CircuitBreaker.SuccessThreshold,
		CircuitEnabled:    cfg.CircuitBreaker.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
		RateLimitEnabled:  cfg.RateLimit.Enabled,
	}, cfg.PrimaryEndpoint, cfg.BackupEndpoints)

	blockValidator := blockchain.NewValidator(blockchain.MapResolver{
		*nodeID: {Public: localKey.Public(), Tag: tag},
	}, log.NewNoOpLogger())

	engine := poai.NewEngine(
		poai.Config{
			RoundTimeout:    time.Duration(*roundTimeoutMS) * time.Millisecond,
			AcceptThreshold: vote.AcceptThreshold,
		},
		registry,
		aiClient,
		vote.NewManager(log.NewNoOpLogger()),
		blockValidator,
		store,
		localKey,
		log.NewNoOpLogger(),
		metrics.NewRegistry(prometheus.DefaultRegisterer),
	)

	logger.Info("poai node started",
		"node_id", *nodeID,
		"env", cfg.Env.String(),
		"key_algorithm", tag.String(),
		"storage_backend", string(cfg.StorageBackend),
		"ai_endpoint", cfg.PrimaryEndpoint,
	)

	<-ctx.Done()
	logger.Info("poai node shutting down")
	_ = engine // engine is wired and ready to accept ValidateBlock calls from a transport not in scope here.
}

func newStorageAdapter(backend config.StorageBackend) storage.Adapter {
	if backend == config.StorageDistributed {
		return storage.NewDistributed(3)
	}
	return storage.NewLocal()
}

func parseKeyAlgorithm(name string) (crypto.AlgorithmTag, error) {
	switch name {
	case "ecdsa-secp256k1":
		return crypto.TagECDSASecp256k1, nil
	case "hybrid-signature":
		return crypto.TagHybridSignature, nil
	default:
		return 0, fmt.Errorf("unknown key algorithm %q", name)
	}
}
