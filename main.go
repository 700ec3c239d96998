package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/verifygate/verifygate/config"
	"github.com/verifygate/verifygate/discord"
	"github.com/verifygate/verifygate/ledger"
	"github.com/verifygate/verifygate/provision"
	"github.com/verifygate/verifygate/store"
	"github.com/verifygate/verifygate/verify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	led, err := openLedger(cfg)
	if err != nil {
		logger.Fatal("ledger open failed", zap.Error(err))
	}
	defer led.Close()

	bot, err := discord.New(cfg, logger)
	if err != nil {
		logger.Fatal("discord session failed", zap.Error(err))
	}

	machine := verify.New(logger, store.New(), led, provision.New(cfg.Issuer), bot,
		cfg.PendingTTL, cfg.MaxAttempts)

	if err := bot.Start(machine); err != nil {
		logger.Fatal("gateway connect failed", zap.Error(err))
	}
	defer bot.Close()

	logger.Info("verifygate running",
		zap.String("guild", cfg.GuildID),
		zap.String("issuer", cfg.Issuer))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openLedger(cfg *config.Config) (ledger.Ledger, error) {
	if cfg.LedgerDSN != "" {
		return ledger.OpenMySQL(cfg.LedgerDSN)
	}
	return ledger.OpenFile(cfg.LedgerPath)
}
