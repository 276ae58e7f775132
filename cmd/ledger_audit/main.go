package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/jobs"
	"hotelbooking/internal/modules/wallet"
	"hotelbooking/internal/pkg/logger"
)

// ledger_audit replays every wallet ledger once and exits 1 on any mismatch.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL, database.Options{MaxOpenConns: 2})
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bad, err := jobs.RunLedgerAudit(ctx, wallet.NewLedger(db))
	if err != nil {
		log.WithError(err).Fatal("ledger audit failed")
	}
	if bad > 0 {
		log.WithField("inconsistent_users", bad).Error("ledger audit found mismatches")
		os.Exit(1)
	}
	log.Info("ledger audit passed")
}
