package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veilbot/application/dto"
	"veilbot/observability"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultHydrationRate     = rate.Limit(2)
	defaultHydrationAttempts = 3
)

// HydrationReport counts how each channel's latest veil was handled
type HydrationReport struct {
	Refreshed int
	Missing   int
	Failed    int
}

// RecoveryHydrator redraws every channel's latest veil from stored state after a restart
type RecoveryHydrator struct {
	uowFactory  UnitOfWorkFactory
	presenter   VeilPresenter
	limiter     *rate.Limiter
	maxAttempts uint64
	newBackOff  func() backoff.BackOff
}

// HydratorOption configures a RecoveryHydrator
type HydratorOption func(*RecoveryHydrator)

// WithHydrationRate sets how many edits per second the hydrator issues
func WithHydrationRate(perSecond float64) HydratorOption {
	return func(h *RecoveryHydrator) {
		if perSecond > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithHydrationBackOff overrides the retry policy for a single edit
func WithHydrationBackOff(maxAttempts uint64, newBackOff func() backoff.BackOff) HydratorOption {
	return func(h *RecoveryHydrator) {
		if maxAttempts == 0 {
			maxAttempts = 1
		}
		h.maxAttempts = maxAttempts
		h.newBackOff = newBackOff
	}
}

// NewRecoveryHydrator creates a new recovery hydrator
func NewRecoveryHydrator(uowFactory UnitOfWorkFactory, presenter VeilPresenter, opts ...HydratorOption) *RecoveryHydrator {
	h := &RecoveryHydrator{
		uowFactory:  uowFactory,
		presenter:   presenter,
		limiter:     rate.NewLimiter(defaultHydrationRate, 1),
		maxAttempts: defaultHydrationAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs hydration once in the background
func (h *RecoveryHydrator) Start(ctx context.Context) {
	go func() {
		report, err := h.Run(ctx)
		if err != nil {
			log.WithError(err).Error("Veil hydration failed")
			return
		}
		log.WithFields(log.Fields{
			"refreshed": report.Refreshed,
			"missing":   report.Missing,
			"failed":    report.Failed,
		}).Info("Veil hydration completed")
	}()
}

// Run walks every latest veil and redraws its controls. Channels are handled one at
// a time; a missing message or a failed edit never stops the walk.
func (h *RecoveryHydrator) Run(ctx context.Context) (*HydrationReport, error) {
	states, err := h.loadTargets(ctx)
	if err != nil {
		return nil, err
	}

	report := &HydrationReport{}
	for _, state := range states {
		if err := h.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("hydration interrupted: %w", err)
		}

		logger := log.WithFields(log.Fields{
			"guild_id":   state.GuildID,
			"channel_id": state.ChannelID,
			"veil_id":    state.VeilID,
		})

		err := h.refresh(ctx, state)
		switch {
		case err == nil:
			report.Refreshed++
			observability.RecordHydration(observability.ResultSuccess)
		case errors.Is(err, ErrMessageNotFound):
			report.Missing++
			observability.RecordHydration(observability.ResultNotFound)
			logger.Warn("Latest veil message no longer exists, skipping")
		default:
			report.Failed++
			observability.RecordHydration(observability.ResultFailure)
			logger.WithError(err).Error("Failed to hydrate veil")
		}
	}

	return report, nil
}

func (h *RecoveryHydrator) loadTargets(ctx context.Context) ([]dto.VeilDisplayState, error) {
	uow := h.uowFactory.CreateForGuild(SystemScope)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	targets, err := uow.LatestPointerRepository().ListHydrationTargets(uow.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to list hydration targets: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit hydration read: %w", err)
	}

	states := make([]dto.VeilDisplayState, 0, len(targets))
	for _, target := range targets {
		states = append(states, dto.NewVeilDisplayState(&target.Veil, target.GuessCap, true))
	}
	return states, nil
}

func (h *RecoveryHydrator) refresh(ctx context.Context, state dto.VeilDisplayState) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(h.newBackOff(), h.maxAttempts-1), ctx)

	return backoff.Retry(func() error {
		err := h.presenter.EditVeil(ctx, state)
		if errors.Is(err, ErrMessageNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
