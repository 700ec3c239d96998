package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token-123")
	t.Setenv("GUILD_ID", "1111")
	t.Setenv("ROLE_ID", "2222")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.Token)
	assert.Equal(t, "1111", cfg.GuildID)
	assert.Equal(t, "2222", cfg.RoleID)
	assert.Equal(t, "VerifyGate", cfg.Issuer)
	assert.Equal(t, "verified_users.json", cfg.LedgerPath)
	assert.Empty(t, cfg.LedgerDSN)
	assert.Equal(t, 15*time.Minute, cfg.PendingTTL)
	assert.Equal(t, 6, cfg.MaxAttempts)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ISSUER", "MyGuild")
	t.Setenv("LEDGER_PATH", "/var/lib/bot/ledger.json")
	t.Setenv("PENDING_TTL", "5m")
	t.Setenv("MAX_ATTEMPTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "MyGuild", cfg.Issuer)
	assert.Equal(t, "/var/lib/bot/ledger.json", cfg.LedgerPath)
	assert.Equal(t, 5*time.Minute, cfg.PendingTTL)
	assert.Equal(t, 3, cfg.MaxAttempts)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("GUILD_ID", "1111")
	t.Setenv("ROLE_ID", "2222")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISCORD_TOKEN")
}

func TestLoad_BadValues(t *testing.T) {
	setRequired(t)

	t.Run("ttl", func(t *testing.T) {
		t.Setenv("PENDING_TTL", "soon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("attempts", func(t *testing.T) {
		t.Setenv("MAX_ATTEMPTS", "0")
		_, err := Load()
		require.Error(t, err)
	})
}
