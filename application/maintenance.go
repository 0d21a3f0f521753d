package application

import (
	"context"
	"fmt"
	"time"

	"veilbot/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	// StaleCheckoutAge is how long an unfulfilled checkout session is kept
	StaleCheckoutAge = 7 * 24 * time.Hour

	pruneCheckoutsJob      = "prune_checkouts"
	pruneCheckoutsSchedule = "0 4 * * *"
)

// MaintenanceScheduler runs periodic housekeeping across every guild
type MaintenanceScheduler struct {
	uowFactory UnitOfWorkFactory
	cron       *cron.Cron
	now        func() time.Time
}

// NewMaintenanceScheduler creates a new maintenance scheduler. Jobs run in UTC.
func NewMaintenanceScheduler(uowFactory UnitOfWorkFactory) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		uowFactory: uowFactory,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		now:        time.Now,
	}
}

// Start schedules the jobs and returns a function that stops them
func (m *MaintenanceScheduler) Start(ctx context.Context) (func(), error) {
	_, err := m.cron.AddFunc(pruneCheckoutsSchedule, func() {
		if _, err := m.PruneStaleCheckouts(ctx); err != nil {
			log.WithError(err).Error("Failed to prune stale checkout sessions")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", pruneCheckoutsJob, err)
	}

	m.cron.Start()
	log.WithField("schedule", pruneCheckoutsSchedule).Info("Maintenance scheduler started")

	return func() {
		<-m.cron.Stop().Done()
		log.Info("Maintenance scheduler stopped")
	}, nil
}

// PruneStaleCheckouts deletes unfulfilled checkout sessions older than StaleCheckoutAge
func (m *MaintenanceScheduler) PruneStaleCheckouts(ctx context.Context) (deleted int64, err error) {
	defer func() { observability.RecordJobRun(pruneCheckoutsJob, err) }()

	uow := m.uowFactory.CreateForGuild(SystemScope)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cutoff := m.now().UTC().Add(-StaleCheckoutAge)
	deleted, err = uow.CheckoutSessionRepository().DeleteStaleUnfulfilled(uow.Context(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale checkout sessions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit checkout pruning: %w", err)
	}

	log.WithFields(log.Fields{
		"deleted": deleted,
		"cutoff":  cutoff,
	}).Info("Pruned stale checkout sessions")
	return deleted, nil
}
