// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsDevelopment(t *testing.T) {
	cfg := Default()
	require.Equal(t, Development, cfg.Env)
	require.Equal(t, StorageMemory, cfg.StorageBackend)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing endpoint", func(c *Config) { c.PrimaryEndpoint = "" }, ErrMissingPrimary},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, ErrInvalidMaxTokens},
		{"temperature too high", func(c *Config) { c.Temperature = 2.1 }, ErrInvalidTemperature},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"zero timeout", func(c *Config) { c.TimeoutMS = 0 }, ErrInvalidTimeout},
		{"bad storage backend", func(c *Config) { c.StorageBackend = "carrier-pigeon" }, ErrInvalidStorageBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.PrimaryEndpoint = "https://ai.example.com/score"
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestProductionRequiresAPIKeyAndTLS(t *testing.T) {
	cfg := Default()
	cfg.Env = Production
	cfg.PrimaryEndpoint = "https://ai.example.com/score"

	require.ErrorIs(t, cfg.Validate(), ErrProductionNeedsKey)

	cfg.APIKey = "secret"
	require.ErrorIs(t, cfg.Validate(), ErrProductionNeedsTLS)

	cfg.TLS.Enabled = true
	require.NoError(t, cfg.Validate())
}

func TestLoadRecognizesLegacyOrbitDBAlias(t *testing.T) {
	t.Setenv("SELF_CHAIN_ENV", "development")
	t.Setenv("AI_STAGING_ENDPOINT", "https://ai.example.com/score")
	t.Setenv("USE_REAL_ORBITDB", "true")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageDistributed, cfg.StorageBackend)
}

func TestLoadExplicitStorageBackendWins(t *testing.T) {
	t.Setenv("SELF_CHAIN_ENV", "development")
	t.Setenv("AI_STAGING_ENDPOINT", "https://ai.example.com/score")
	t.Setenv("USE_REAL_ORBITDB", "true")
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.StorageBackend)
}

func TestLoadParsesBackupEndpoints(t *testing.T) {
	t.Setenv("SELF_CHAIN_ENV", "staging")
	t.Setenv("AI_STAGING_ENDPOINT", "https://primary.example.com")
	t.Setenv("AI_BACKUP_ENDPOINTS", "https://b1.example.com, https://b2.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://b1.example.com", "https://b2.example.com"}, cfg.BackupEndpoints)
}
