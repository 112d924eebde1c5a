package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "STORAGE_DRIVER", "MARKETPLACE_CONFIG", "JWT_SECRET", "CORS_ALLOWED_ORIGINS",
		"ACCESS_TOKEN_TTL", "RATE_LIMIT_LIMIT", "RATE_LIMIT_PERIOD", "DISPUTE_QUORUM",
		"DISPUTE_TIE_BREAK", "DISPUTE_AUTO_RESOLVE", "DISPUTE_ARBITERS", "DISPUTE_AUTHORITIES",
		"DISPUTE_EXCLUDE_PARTIES",
		"MAX_MILESTONES", "MAX_TITLE_LENGTH", "MAX_DESCRIPTION_LENGTH", "MAX_PROPOSAL_LENGTH",
		"MAX_REASON_LENGTH", "DATABASE_URL", "POSTGRESQL_HOST", "POSTGRESQL_PORT",
		"POSTGRESQL_USER", "POSTGRESQL_PASSWORD", "POSTGRESQL_DBNAME",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketplace.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, int64(10), cfg.RateLimitLimit)
	assert.Equal(t, validation.DefaultLimits(), cfg.Limits)
	assert.Equal(t, uint64(3), cfg.Dispute.Quorum)
	assert.Equal(t, valueobject.DisputeOutcomeRefund, cfg.Dispute.TieBreak)
	assert.True(t, cfg.Dispute.AutoResolve)
	assert.Empty(t, cfg.Arbiters)
	assert.False(t, cfg.ExcludeParties)
}

func TestLoad_ProductionRequiresSecretAndOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_UnknownStorageDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PolicyFileThenEnvOverride(t *testing.T) {
	clearEnv(t)
	arbiter := uuid.New()
	authority := uuid.New()

	path := writePolicy(t, `
[dispute]
quorum = 5
tie_break = "release"
arbiters = ["`+arbiter.String()+`"]
exclude_parties = true
authorities = ["`+authority.String()+`"]

[limits]
max_milestones = 4
max_title_length = 60
`)
	t.Setenv("MARKETPLACE_CONFIG", path)
	t.Setenv("DISPUTE_QUORUM", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Dispute.Quorum)
	assert.Equal(t, valueobject.DisputeOutcomeRelease, cfg.Dispute.TieBreak)
	assert.Equal(t, []uuid.UUID{arbiter}, cfg.Arbiters)
	assert.True(t, cfg.ExcludeParties)
	assert.True(t, cfg.Dispute.CanResolve(authority))
	assert.Equal(t, 4, cfg.Limits.MaxMilestones)
	assert.Equal(t, 60, cfg.Limits.MaxTitleLength)
	assert.Equal(t, validation.DefaultMaxProposalLength, cfg.Limits.MaxProposalLength)
}

func TestLoad_PolicyFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: "[dispute]\nquorom = 2\n"},
		{name: "bad tie break", body: "[dispute]\ntie_break = \"split\"\n"},
		{name: "bad arbiter", body: "[dispute]\narbiters = [\"nobody\"]\n"},
		{name: "zero limit", body: "[limits]\nmax_milestones = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MARKETPLACE_CONFIG", writePolicy(t, tt.body))

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_PolicyEnv(t *testing.T) {
	clearEnv(t)
	a, b := uuid.New(), uuid.New()
	t.Setenv("DISPUTE_ARBITERS", a.String()+", "+b.String())
	t.Setenv("DISPUTE_AUTO_RESOLVE", "false")
	t.Setenv("DISPUTE_TIE_BREAK", "release")
	t.Setenv("MAX_REASON_LENGTH", "200")
	t.Setenv("DISPUTE_EXCLUDE_PARTIES", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, cfg.Arbiters)
	assert.True(t, cfg.ExcludeParties)
	assert.False(t, cfg.Dispute.AutoResolve)
	assert.Equal(t, valueobject.DisputeOutcomeRelease, cfg.Dispute.TieBreak)
	assert.Equal(t, 200, cfg.Limits.MaxReasonLength)

	t.Setenv("MAX_MILESTONES", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MAX_MILESTONES", "3")
	t.Setenv("DISPUTE_AUTHORITIES", "not-a-uuid")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "market")

	assert.Equal(t, "postgres://app:p%40ss@db:5432/market?sslmode=disable", getDatabaseURL())
}

func TestLoad_LimitEnvOutOfRange(t *testing.T) {
	for _, v := range []string{"18446744073709551615", "99999999999999999999", "-5", "ten"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MAX_MILESTONES", v)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
