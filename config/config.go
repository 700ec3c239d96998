package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the bot.
//
// Fields:
//   - Token: Discord bot token.
//   - GuildID / RoleID: the guild being gated and the role granted on success.
//   - Issuer: issuer name shown in authenticator apps.
//   - LedgerPath: flat-file location of the verified-user ledger.
//   - LedgerDSN: optional MySQL DSN; when set it replaces the flat file.
//   - PendingTTL: how long a minted secret stays valid before the user must
//     re-initiate.
//   - MaxAttempts: wrong codes allowed per enrollment before lockout.
type Config struct {
	Token       string
	GuildID     string
	RoleID      string
	Issuer      string
	LedgerPath  string
	LedgerDSN   string
	PendingTTL  time.Duration
	MaxAttempts int
	Env         string
}

// Load reads configuration from the environment, overlaying an optional
// .env file first. Missing required variables are an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:       os.Getenv("DISCORD_TOKEN"),
		GuildID:     os.Getenv("GUILD_ID"),
		RoleID:      os.Getenv("ROLE_ID"),
		Issuer:      getenvDefault("ISSUER", "VerifyGate"),
		LedgerPath:  getenvDefault("LEDGER_PATH", "verified_users.json"),
		LedgerDSN:   os.Getenv("LEDGER_DSN"),
		Env:         getenvDefault("ENV", "production"),
		PendingTTL:  15 * time.Minute,
		MaxAttempts: 6,
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is not set")
	}
	if cfg.GuildID == "" {
		return nil, fmt.Errorf("GUILD_ID environment variable is not set")
	}
	if cfg.RoleID == "" {
		return nil, fmt.Errorf("ROLE_ID environment variable is not set")
	}

	if v := os.Getenv("PENDING_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PENDING_TTL %q: %w", v, err)
		}
		cfg.PendingTTL = d
	}
	if v := os.Getenv("MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_ATTEMPTS %q", v)
		}
		cfg.MaxAttempts = n
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
