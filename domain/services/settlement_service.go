package services

import (
	"context"
	"fmt"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// DefaultGuessCost is the number of coins charged per guess
const DefaultGuessCost int64 = 5

// SettlementService settles a single guess against the repositories of one
// transaction. It holds no state of its own between calls.
type SettlementService struct {
	veilRepo       interfaces.VeilRepository
	guessRepo      interfaces.GuessRepository
	settingsRepo   interfaces.GuildSettingsRepository
	ledger         interfaces.LedgerService
	eventPublisher interfaces.EventPublisher
	guessCost      int64
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	veilRepo interfaces.VeilRepository,
	guessRepo interfaces.GuessRepository,
	settingsRepo interfaces.GuildSettingsRepository,
	ledger interfaces.LedgerService,
	eventPublisher interfaces.EventPublisher,
	guessCost int64,
) *SettlementService {
	if guessCost <= 0 {
		guessCost = DefaultGuessCost
	}
	return &SettlementService{
		veilRepo:       veilRepo,
		guessRepo:      guessRepo,
		settingsRepo:   settingsRepo,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		guessCost:      guessCost,
	}
}

// SubmitGuess runs the settlement state machine for one guess. Rejections are
// reported through the result outcome; a returned error means the caller must
// roll back the transaction.
func (s *SettlementService) SubmitGuess(ctx context.Context, sub interfaces.GuessSubmission) (*interfaces.SettlementResult, error) {
	veil, err := s.veilRepo.GetByID(ctx, sub.VeilID)
	if err != nil {
		return nil, fmt.Errorf("failed to load veil %d: %w", sub.VeilID, err)
	}
	if veil == nil {
		result := &interfaces.SettlementResult{Outcome: entities.OutcomeNotFound}
		s.publishSettled(sub, result)
		return result, nil
	}

	settings, err := s.settingsRepo.GetOrCreateGuildSettings(ctx, sub.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	guessCap := settings.GuessCap()
	policy := settings.Tier.Policy()

	result := &interfaces.SettlementResult{
		Veil:       veil,
		GuessCount: veil.GuessCount,
		GuessCap:   guessCap,
		Tier:       settings.Tier,
	}

	if veil.IsAuthor(sub.GuesserID) {
		return s.finish(sub, result, entities.OutcomeSelfGuess), nil
	}

	exists, err := s.guessRepo.Exists(ctx, sub.VeilID, sub.GuesserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing guess: %w", err)
	}
	if exists {
		return s.finish(sub, result, entities.OutcomeAlreadyGuessed), nil
	}

	if !policy.Unlimited {
		paid, err := s.spend(ctx, sub.GuesserID, settings.Tier)
		if err != nil {
			return nil, err
		}
		if !paid {
			return s.finish(sub, result, entities.OutcomeInsufficientFunds), nil
		}
		result.Spent = s.guessCost
	}

	if !veil.IsOpen(guessCap) {
		if err := s.refund(ctx, sub.GuesserID, result); err != nil {
			return nil, err
		}
		return s.finish(sub, result, entities.OutcomeNoAttemptsLeft), nil
	}

	isCorrect := veil.IsAuthor(sub.CandidateID)
	inserted, err := s.guessRepo.Insert(ctx, &entities.Guess{
		VeilID:      sub.VeilID,
		GuesserID:   sub.GuesserID,
		CandidateID: sub.CandidateID,
		IsCorrect:   isCorrect,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record guess: %w", err)
	}
	if !inserted {
		if err := s.refund(ctx, sub.GuesserID, result); err != nil {
			return nil, err
		}
		return s.finish(sub, result, entities.OutcomeAlreadyGuessed), nil
	}

	if !isCorrect {
		return s.settleIncorrect(ctx, sub, result)
	}
	return s.settleCorrect(ctx, sub, result, policy)
}

// spend ensures the account exists, applies any due refill and debits the guess cost
func (s *SettlementService) spend(ctx context.Context, userID int64, tier entities.Tier) (bool, error) {
	if _, err := s.ledger.EnsureAccount(ctx, userID); err != nil {
		return false, err
	}
	if _, err := s.ledger.Refill(ctx, userID, tier); err != nil {
		return false, err
	}
	return s.ledger.Debit(ctx, userID, s.guessCost, events.ReasonGuessCost)
}

func (s *SettlementService) refund(ctx context.Context, userID int64, result *interfaces.SettlementResult) error {
	if result.Spent == 0 {
		return nil
	}
	if _, err := s.ledger.Credit(ctx, userID, result.Spent, events.ReasonGuessRefund); err != nil {
		return fmt.Errorf("failed to refund guess: %w", err)
	}
	result.Spent = 0
	return nil
}

func (s *SettlementService) settleIncorrect(ctx context.Context, sub interfaces.GuessSubmission, result *interfaces.SettlementResult) (*interfaces.SettlementResult, error) {
	count, applied, err := s.veilRepo.IncrementGuessCount(ctx, sub.VeilID, result.GuessCap)
	if err != nil {
		return nil, fmt.Errorf("failed to increment guess count: %w", err)
	}
	if !applied {
		// Closed by a concurrent guess after our check
		return s.rejectClosed(ctx, sub, result)
	}

	result.Veil.GuessCount = count
	result.GuessCount = count
	if count >= result.GuessCap {
		return s.finish(sub, result, entities.OutcomeExhausted), nil
	}
	return s.finish(sub, result, entities.OutcomeIncorrect), nil
}

func (s *SettlementService) settleCorrect(ctx context.Context, sub interfaces.GuessSubmission, result *interfaces.SettlementResult, policy entities.TierPolicy) (*interfaces.SettlementResult, error) {
	count, applied, err := s.veilRepo.TryUnveil(ctx, sub.VeilID, sub.GuesserID, result.GuessCap)
	if err != nil {
		return nil, fmt.Errorf("failed to unveil: %w", err)
	}

	if applied {
		winner := sub.GuesserID
		result.Veil.IsUnveiled = true
		result.Veil.UnveiledBy = &winner
		result.Veil.GuessCount = count
		result.GuessCount = count

		if err := s.ledger.RecordUnveil(ctx, sub.GuesserID); err != nil {
			return nil, err
		}
		if !policy.Unlimited && policy.WinReward > 0 {
			if _, err := s.ledger.Credit(ctx, sub.GuesserID, policy.WinReward, events.ReasonWinReward); err != nil {
				return nil, err
			}
			result.Reward = policy.WinReward
		}

		s.publish(events.VeilUnveiledEvent{
			GuildID:    sub.GuildID,
			ChannelID:  result.Veil.ChannelID,
			VeilID:     sub.VeilID,
			VeilNumber: result.Veil.VeilNumber,
			AuthorID:   result.Veil.AuthorID,
			WinnerID:   sub.GuesserID,
			Reward:     result.Reward,
		})
		return s.finish(sub, result, entities.OutcomeWon), nil
	}

	current, err := s.veilRepo.GetByID(ctx, sub.VeilID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload veil %d: %w", sub.VeilID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("veil %d disappeared during settlement", sub.VeilID)
	}
	result.Veil = current
	result.GuessCount = current.GuessCount

	if !current.IsUnveiled {
		// Exhausted by concurrent incorrect guesses rather than solved
		return s.rejectClosed(ctx, sub, result)
	}

	// Someone else flipped the veil first
	if err := s.guessRepo.MarkIncorrect(ctx, sub.VeilID, sub.GuesserID); err != nil {
		return nil, fmt.Errorf("failed to correct losing guess: %w", err)
	}
	count, err = s.veilRepo.IncrementGuessCountCapped(ctx, sub.VeilID, result.GuessCap)
	if err != nil {
		return nil, fmt.Errorf("failed to increment guess count: %w", err)
	}
	current.GuessCount = count
	result.GuessCount = count

	if err := s.refund(ctx, sub.GuesserID, result); err != nil {
		return nil, err
	}
	return s.finish(sub, result, entities.OutcomeTooLate), nil
}

// rejectClosed undoes the guess recorded in this transaction and refunds the spend
func (s *SettlementService) rejectClosed(ctx context.Context, sub interfaces.GuessSubmission, result *interfaces.SettlementResult) (*interfaces.SettlementResult, error) {
	if err := s.guessRepo.Delete(ctx, sub.VeilID, sub.GuesserID); err != nil {
		return nil, fmt.Errorf("failed to discard rejected guess: %w", err)
	}
	if err := s.refund(ctx, sub.GuesserID, result); err != nil {
		return nil, err
	}
	return s.finish(sub, result, entities.OutcomeNoAttemptsLeft), nil
}

func (s *SettlementService) finish(sub interfaces.GuessSubmission, result *interfaces.SettlementResult, outcome entities.GuessOutcome) *interfaces.SettlementResult {
	result.Outcome = outcome

	log.WithFields(log.Fields{
		"guild_id":    sub.GuildID,
		"veil_id":     sub.VeilID,
		"guesser_id":  sub.GuesserID,
		"outcome":     outcome,
		"guess_count": result.GuessCount,
		"guess_cap":   result.GuessCap,
		"spent":       result.Spent,
		"reward":      result.Reward,
	}).Info("Guess settled")

	s.publishSettled(sub, result)
	return result
}

func (s *SettlementService) publishSettled(sub interfaces.GuessSubmission, result *interfaces.SettlementResult) {
	s.publish(events.GuessSettledEvent{
		GuildID:     sub.GuildID,
		VeilID:      sub.VeilID,
		GuesserID:   sub.GuesserID,
		CandidateID: sub.CandidateID,
		Outcome:     result.Outcome,
		GuessCount:  result.GuessCount,
		GuessCap:    result.GuessCap,
	})
}

func (s *SettlementService) publish(event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Warn("Failed to publish event")
	}
}
