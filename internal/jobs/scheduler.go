// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/modules/wallet"
)

// LedgerVerifier replays user ledgers and reports the inconsistent ones.
type LedgerVerifier interface {
	VerifyAll(ctx context.Context) ([]wallet.ReplayResult, error)
}

type Scheduler struct {
	cron     *cron.Cron
	verifier LedgerVerifier
	spec     string
}

// NewScheduler validates the standard five-field cron spec up front.
// An empty spec yields a scheduler that never runs the audit.
func NewScheduler(verifier LedgerVerifier, auditSpec string) (*Scheduler, error) {
	auditSpec = strings.TrimSpace(auditSpec)
	if auditSpec != "" {
		if _, err := cron.ParseStandard(auditSpec); err != nil {
			return nil, fmt.Errorf("invalid ledger audit schedule %q: %w", auditSpec, err)
		}
	}
	return &Scheduler{
		cron:     cron.New(),
		verifier: verifier,
		spec:     auditSpec,
	}, nil
}

// Enabled reports whether a schedule was configured.
func (s *Scheduler) Enabled() bool {
	return s.spec != ""
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		log.Info("ledger audit disabled")
		return nil
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		log.Info("[CRON] ledger audit")
		if _, err := s.RunLedgerAudit(ctx); err != nil {
			log.WithError(err).Error("[CRON] ledger audit failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.WithField("schedule", s.spec).Info("scheduler started")
	return nil
}

func (s *Scheduler) RunLedgerAudit(ctx context.Context) (int, error) {
	return RunLedgerAudit(ctx, s.verifier)
}

// RunLedgerAudit verifies every ledger once and returns how many users failed replay.
func RunLedgerAudit(ctx context.Context, verifier LedgerVerifier) (int, error) {
	bad, err := verifier.VerifyAll(ctx)
	if err != nil {
		return len(bad), err
	}
	for _, r := range bad {
		log.WithFields(log.Fields{
			"user_id":      r.UserID,
			"ledger_cash":  r.LedgerCash,
			"stored_cash":  r.StoredCash,
			"ledger_bonus": r.LedgerBonus,
			"stored_bonus": r.StoredBonus,
		}).Warn("ledger audit mismatch")
	}
	return len(bad), nil
}

func (s *Scheduler) Stop() {
	if !s.Enabled() {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("scheduler stopped")
}
