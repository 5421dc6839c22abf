package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.ACATimeout)
	assert.Equal(t, 256, cfg.AuditBuffer)
	assert.True(t, cfg.EventOpensAt.IsZero())
	assert.True(t, cfg.EventClosesAt.IsZero())
	assert.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VOTEAUTH_ADDR", ":9999")
	t.Setenv("VOTEAUTH_API_KEY", "key")
	t.Setenv("VOTEAUTH_ACA_TIMEOUT", "2s")
	t.Setenv("VOTEAUTH_EVENT_OPENS_AT", "2026-03-14T08:00:00Z")
	t.Setenv("VOTEAUTH_EVENT_CLOSES_AT", "2026-03-14T18:00:00Z")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, 2*time.Second, cfg.ACATimeout)
	assert.Equal(t, time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC), cfg.EventOpensAt)
	assert.Equal(t, time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC), cfg.EventClosesAt)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("VOTEAUTH_EVENT_OPENS_AT", "tomorrow")
	_, err := FromEnv()
	assert.Error(t, err)
}
