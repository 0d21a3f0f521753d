package application

import (
	"context"
	"fmt"
	"time"

	"veilbot/application/dto"
	"veilbot/domain/entities"
	"veilbot/domain/interfaces"
	"veilbot/domain/services"
	"veilbot/observability"

	log "github.com/sirupsen/logrus"
)

// GuessSettlement is the committed outcome of a guess plus the veil's new display state
type GuessSettlement struct {
	*interfaces.SettlementResult

	// Display is nil when the veil was not found
	Display *dto.VeilDisplayState

	// photo is the original photo of a won photo veil, read inside the settling transaction
	photo []byte
}

// SettlementEngine is the single entry point for guesses. Every guess runs in its own
// unit of work; the presenter is only called after commit.
type SettlementEngine struct {
	uowFactory UnitOfWorkFactory
	presenter  VeilPresenter
	unveil     UnveilRenderer
	guessCost  int64
}

// EngineOption configures a SettlementEngine
type EngineOption func(*SettlementEngine)

// WithUnveilRenderer swaps the veil image for its unveiled render when a guess wins
func WithUnveilRenderer(renderer UnveilRenderer) EngineOption {
	return func(e *SettlementEngine) {
		e.unveil = renderer
	}
}

// NewSettlementEngine creates a new settlement engine. presenter may be nil.
func NewSettlementEngine(uowFactory UnitOfWorkFactory, presenter VeilPresenter, guessCost int64, opts ...EngineOption) *SettlementEngine {
	e := &SettlementEngine{
		uowFactory: uowFactory,
		presenter:  presenter,
		guessCost:  guessCost,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitGuess settles one guess. A returned error means nothing was written.
func (e *SettlementEngine) SubmitGuess(ctx context.Context, sub interfaces.GuessSubmission) (*GuessSettlement, error) {
	start := time.Now()

	settlement, err := e.settle(ctx, sub)
	if err != nil {
		observability.RecordSettlement("", time.Since(start), err)
		log.WithFields(log.Fields{
			"guild_id":   sub.GuildID,
			"veil_id":    sub.VeilID,
			"guesser_id": sub.GuesserID,
			"error":      err,
		}).Error("Guess settlement failed")
		return nil, err
	}
	observability.RecordSettlement(string(settlement.Outcome), time.Since(start), nil)

	if settlement.Outcome.ChangesVeil() && settlement.Display != nil && e.presenter != nil {
		if err := e.refresh(ctx, settlement); err != nil {
			// The guess is committed; the next accepted guess or restart redraws the veil
			log.WithFields(log.Fields{
				"guild_id": sub.GuildID,
				"veil_id":  sub.VeilID,
				"error":    err,
			}).Warn("Failed to refresh veil after guess")
		}
	}

	return settlement, nil
}

// refresh redraws the veil message. The winning guess also swaps in the unveiled image
// when a renderer is configured; if that render fails only the controls are redrawn.
func (e *SettlementEngine) refresh(ctx context.Context, settlement *GuessSettlement) error {
	display := *settlement.Display
	if e.unveil == nil || settlement.Outcome != entities.OutcomeWon || !display.AuthorRevealed() {
		return e.presenter.EditVeil(ctx, display)
	}

	image, err := e.renderUnveiled(settlement)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": display.GuildID,
			"veil_id":  display.VeilID,
			"error":    err,
		}).Warn("Failed to render unveiled veil")
		return e.presenter.EditVeil(ctx, display)
	}
	return e.presenter.RevealVeil(ctx, display, image)
}

func (e *SettlementEngine) renderUnveiled(settlement *GuessSettlement) ([]byte, error) {
	veil := settlement.Veil
	if !veil.IsPhoto {
		return e.unveil.RenderUnveiledText(veil.Content)
	}
	if len(settlement.photo) == 0 {
		return nil, fmt.Errorf("veil %d has no stored photo", veil.ID)
	}
	return e.unveil.RenderUnveiledPhoto(settlement.photo)
}

func (e *SettlementEngine) settle(ctx context.Context, sub interfaces.GuessSubmission) (*GuessSettlement, error) {
	uow := e.uowFactory.CreateForGuild(sub.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txCtx := uow.Context()

	ledger := services.NewLedgerService(uow.LedgerRepository(), uow.EventBus(), sub.GuildID)
	settlementService := services.NewSettlementService(
		uow.VeilRepository(),
		uow.GuessRepository(),
		uow.GuildSettingsRepository(),
		ledger,
		uow.EventBus(),
		e.guessCost,
	)

	result, err := settlementService.SubmitGuess(txCtx, sub)
	if err != nil {
		return nil, err
	}

	settlement := &GuessSettlement{SettlementResult: result}
	if result.Veil != nil {
		pointer, err := uow.LatestPointerRepository().Get(txCtx, result.Veil.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest veil pointer: %w", err)
		}
		isLatest := pointer != nil && pointer.VeilID == result.Veil.ID
		display := dto.NewVeilDisplayState(result.Veil, result.GuessCap, isLatest)
		settlement.Display = &display

		if e.unveil != nil && result.Outcome == entities.OutcomeWon && result.Veil.IsPhoto {
			settlement.photo, err = uow.VeilRepository().GetPhoto(txCtx, result.Veil.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to get veil photo: %w", err)
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	return settlement, nil
}
