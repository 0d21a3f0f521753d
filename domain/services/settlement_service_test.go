package services

import (
	"context"
	"errors"
	"testing"

	"veilbot/domain/entities"
	"veilbot/domain/events"
	"veilbot/domain/interfaces"
	"veilbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID   int64 = 111
	testVeilID    int64 = 9001
	testAuthorID  int64 = 1
	testGuesserID int64 = 2
	testOtherID   int64 = 3
)

type settlementFixture struct {
	veilRepo     *testhelpers.MockVeilRepository
	guessRepo    *testhelpers.MockGuessRepository
	settingsRepo *testhelpers.MockGuildSettingsRepository
	ledger       *testhelpers.MockLedgerService
	publisher    *testhelpers.MockEventPublisher
	service      *SettlementService
}

func newSettlementFixture(tier entities.Tier, guessCap int) *settlementFixture {
	f := &settlementFixture{
		veilRepo:     new(testhelpers.MockVeilRepository),
		guessRepo:    new(testhelpers.MockGuessRepository),
		settingsRepo: new(testhelpers.MockGuildSettingsRepository),
		ledger:       new(testhelpers.MockLedgerService),
		publisher:    new(testhelpers.MockEventPublisher),
	}
	f.service = NewSettlementService(f.veilRepo, f.guessRepo, f.settingsRepo, f.ledger, f.publisher, DefaultGuessCost)

	f.settingsRepo.On("GetOrCreateGuildSettings", mock.Anything, testGuildID).Return(&entities.GuildSettings{
		GuildID:    testGuildID,
		MaxGuesses: guessCap,
		Tier:       tier,
	}, nil).Maybe()
	f.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	return f
}

func (f *settlementFixture) expectSpend(paid bool) {
	f.ledger.On("EnsureAccount", mock.Anything, testGuesserID).Return(&entities.LedgerEntry{UserID: testGuesserID}, nil).Once()
	f.ledger.On("Refill", mock.Anything, testGuesserID, mock.Anything).Return(false, nil).Once()
	f.ledger.On("Debit", mock.Anything, testGuesserID, DefaultGuessCost, events.ReasonGuessCost).Return(paid, nil).Once()
}

func (f *settlementFixture) expectRefund() {
	f.ledger.On("Credit", mock.Anything, testGuesserID, DefaultGuessCost, events.ReasonGuessRefund).Return(int64(100), nil).Once()
}

func (f *settlementFixture) assertExpectations(t *testing.T) {
	f.veilRepo.AssertExpectations(t)
	f.guessRepo.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func openVeil(guessCount int) *entities.Veil {
	return &entities.Veil{
		ID:         testVeilID,
		GuildID:    testGuildID,
		ChannelID:  500,
		AuthorID:   testAuthorID,
		Content:    "who wrote this",
		VeilNumber: 7,
		GuessCount: guessCount,
	}
}

func submission(candidateID int64) interfaces.GuessSubmission {
	return interfaces.GuessSubmission{
		GuildID:     testGuildID,
		VeilID:      testVeilID,
		GuesserID:   testGuesserID,
		CandidateID: candidateID,
	}
}

func settledOutcome(t *testing.T, publisher *testhelpers.MockEventPublisher) entities.GuessOutcome {
	t.Helper()
	var outcome entities.GuessOutcome
	found := false
	for _, event := range publisher.Published() {
		if settled, ok := event.(events.GuessSettledEvent); ok {
			outcome = settled.Outcome
			found = true
		}
	}
	require.True(t, found, "expected a GuessSettledEvent")
	return outcome
}

func TestSettlementService_SubmitGuess_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(nil, nil)

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeNotFound, result.Outcome)
	assert.Equal(t, entities.ErrorKindNotFound, result.Outcome.Kind())
	assert.Nil(t, result.Veil)
	assert.Equal(t, entities.OutcomeNotFound, settledOutcome(t, f.publisher))
	f.ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_SelfGuess(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	veil := openVeil(0)
	veil.AuthorID = testGuesserID
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(veil, nil)

	result, err := f.service.SubmitGuess(ctx, submission(testGuesserID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeSelfGuess, result.Outcome)
	assert.Equal(t, int64(0), result.Spent)
	f.guessRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_AlreadyGuessed(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(1), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(true, nil)

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeAlreadyGuessed, result.Outcome)
	assert.Equal(t, 1, result.GuessCount)
	f.ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(0), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(false)

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeInsufficientFunds, result.Outcome)
	assert.Equal(t, entities.ErrorKindEconomic, result.Outcome.Kind())
	assert.Equal(t, int64(0), result.Spent)
	f.guessRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_Won(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierBasic, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(1), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(true)
	f.guessRepo.On("Insert", ctx, mock.MatchedBy(func(g *entities.Guess) bool {
		return g.VeilID == testVeilID && g.GuesserID == testGuesserID && g.CandidateID == testAuthorID && g.IsCorrect
	})).Return(true, nil)
	f.veilRepo.On("TryUnveil", ctx, testVeilID, testGuesserID, 3).Return(2, true, nil)
	f.ledger.On("RecordUnveil", ctx, testGuesserID).Return(nil)
	f.ledger.On("Credit", ctx, testGuesserID, int64(10), events.ReasonWinReward).Return(int64(105), nil)

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeWon, result.Outcome)
	assert.Equal(t, 2, result.GuessCount)
	assert.True(t, result.Veil.IsUnveiled)
	require.NotNil(t, result.Veil.UnveiledBy)
	assert.Equal(t, testGuesserID, *result.Veil.UnveiledBy)
	assert.Equal(t, DefaultGuessCost, result.Spent)
	assert.Equal(t, int64(10), result.Reward)

	var unveiled []events.VeilUnveiledEvent
	for _, event := range f.publisher.Published() {
		if e, ok := event.(events.VeilUnveiledEvent); ok {
			unveiled = append(unveiled, e)
		}
	}
	require.Len(t, unveiled, 1)
	assert.Equal(t, testGuesserID, unveiled[0].WinnerID)
	assert.Equal(t, int64(7), unveiled[0].VeilNumber)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_WonOnFreeTierHasNoReward(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(0), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(true)
	f.guessRepo.On("Insert", ctx, mock.Anything).Return(true, nil)
	f.veilRepo.On("TryUnveil", ctx, testVeilID, testGuesserID, 3).Return(1, true, nil)
	f.ledger.On("RecordUnveil", ctx, testGuesserID).Return(nil)

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeWon, result.Outcome)
	assert.Equal(t, int64(0), result.Reward)
	f.ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_UnlimitedTierSkipsLedger(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierElite, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(0), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.guessRepo.On("Insert", ctx, mock.Anything).Return(true, nil)
	f.veilRepo.On("TryUnveil", ctx, testVeilID, testGuesserID, 3).Return(1, true, nil)
	f.ledger.On("RecordUnveil", ctx, testGuesserID).Return(nil)

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeWon, result.Outcome)
	assert.Equal(t, int64(0), result.Spent)
	assert.Equal(t, int64(0), result.Reward)
	f.ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_IncorrectGuesses(t *testing.T) {
	tests := []struct {
		name         string
		guessCap     int
		countBefore  int
		countAfter   int
		wantOutcome  entities.GuessOutcome
		wantOpenLeft int
	}{
		{
			name:         "first wrong guess leaves attempts",
			guessCap:     3,
			countBefore:  0,
			countAfter:   1,
			wantOutcome:  entities.OutcomeIncorrect,
			wantOpenLeft: 2,
		},
		{
			name:         "last wrong guess exhausts the veil",
			guessCap:     3,
			countBefore:  2,
			countAfter:   3,
			wantOutcome:  entities.OutcomeExhausted,
			wantOpenLeft: 0,
		},
		{
			name:         "single guess cap exhausts immediately",
			guessCap:     1,
			countBefore:  0,
			countAfter:   1,
			wantOutcome:  entities.OutcomeExhausted,
			wantOpenLeft: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newSettlementFixture(entities.TierFree, tt.guessCap)
			f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(tt.countBefore), nil)
			f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
			f.expectSpend(true)
			f.guessRepo.On("Insert", ctx, mock.MatchedBy(func(g *entities.Guess) bool {
				return !g.IsCorrect && g.CandidateID == testOtherID
			})).Return(true, nil)
			f.veilRepo.On("IncrementGuessCount", ctx, testVeilID, tt.guessCap).Return(tt.countAfter, true, nil)

			result, err := f.service.SubmitGuess(ctx, submission(testOtherID))

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.countAfter, result.GuessCount)
			assert.Equal(t, tt.wantOpenLeft, result.Veil.RemainingGuesses(tt.guessCap))
			assert.Equal(t, DefaultGuessCost, result.Spent)
			assert.True(t, result.Outcome.Accepted())
			f.assertExpectations(t)
		})
	}
}

func TestSettlementService_SubmitGuess_ClosedVeilIsRefunded(t *testing.T) {
	tests := []struct {
		name string
		veil *entities.Veil
	}{
		{
			name: "veil already unveiled",
			veil: func() *entities.Veil {
				v := openVeil(1)
				v.IsUnveiled = true
				return v
			}(),
		},
		{
			name: "veil already exhausted",
			veil: openVeil(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newSettlementFixture(entities.TierFree, 3)
			f.veilRepo.On("GetByID", ctx, testVeilID).Return(tt.veil, nil)
			f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
			f.expectSpend(true)
			f.expectRefund()

			result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

			require.NoError(t, err)
			assert.Equal(t, entities.OutcomeNoAttemptsLeft, result.Outcome)
			assert.Equal(t, int64(0), result.Spent)
			f.guessRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestSettlementService_SubmitGuess_DuplicateInsertIsRefunded(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(0), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(true)
	f.guessRepo.On("Insert", ctx, mock.Anything).Return(false, nil)
	f.expectRefund()

	result, err := f.service.SubmitGuess(ctx, submission(testOtherID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeAlreadyGuessed, result.Outcome)
	assert.Equal(t, int64(0), result.Spent)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_TooLate(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 1)
	winner := testOtherID
	solved := openVeil(1)
	solved.IsUnveiled = true
	solved.UnveiledBy = &winner

	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(0), nil).Once()
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(true)
	f.guessRepo.On("Insert", ctx, mock.Anything).Return(true, nil)
	f.veilRepo.On("TryUnveil", ctx, testVeilID, testGuesserID, 1).Return(0, false, nil)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(solved, nil).Once()
	f.guessRepo.On("MarkIncorrect", ctx, testVeilID, testGuesserID).Return(nil)
	f.veilRepo.On("IncrementGuessCountCapped", ctx, testVeilID, 1).Return(1, nil)
	f.expectRefund()

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeTooLate, result.Outcome)
	assert.Equal(t, entities.ErrorKindConcurrencyLoss, result.Outcome.Kind())
	assert.Equal(t, 1, result.GuessCount)
	assert.Equal(t, int64(0), result.Spent)
	require.NotNil(t, result.Veil.UnveiledBy)
	assert.Equal(t, testOtherID, *result.Veil.UnveiledBy)
	f.ledger.AssertNotCalled(t, "RecordUnveil", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_CorrectGuessAfterExhaustion(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)

	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(2), nil).Once()
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(true)
	f.guessRepo.On("Insert", ctx, mock.Anything).Return(true, nil)
	f.veilRepo.On("TryUnveil", ctx, testVeilID, testGuesserID, 3).Return(0, false, nil)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(3), nil).Once()
	f.guessRepo.On("Delete", ctx, testVeilID, testGuesserID).Return(nil)
	f.expectRefund()

	result, err := f.service.SubmitGuess(ctx, submission(testAuthorID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeNoAttemptsLeft, result.Outcome)
	assert.Equal(t, 3, result.GuessCount)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_IncorrectAfterConcurrentClose(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture(entities.TierFree, 3)
	f.veilRepo.On("GetByID", ctx, testVeilID).Return(openVeil(2), nil)
	f.guessRepo.On("Exists", ctx, testVeilID, testGuesserID).Return(false, nil)
	f.expectSpend(true)
	f.guessRepo.On("Insert", ctx, mock.Anything).Return(true, nil)
	f.veilRepo.On("IncrementGuessCount", ctx, testVeilID, 3).Return(0, false, nil)
	f.guessRepo.On("Delete", ctx, testVeilID, testGuesserID).Return(nil)
	f.expectRefund()

	result, err := f.service.SubmitGuess(ctx, submission(testOtherID))

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeNoAttemptsLeft, result.Outcome)
	assert.Equal(t, int64(0), result.Spent)
	f.assertExpectations(t)
}

func TestSettlementService_SubmitGuess_StoreErrors(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name        string
		setup       func(f *settlementFixture)
		errContains string
	}{
		{
			name: "loading the veil fails",
			setup: func(f *settlementFixture) {
				f.veilRepo.On("GetByID", mock.Anything, testVeilID).Return(nil, dbErr)
			},
			errContains: "failed to load veil",
		},
		{
			name: "existence check fails",
			setup: func(f *settlementFixture) {
				f.veilRepo.On("GetByID", mock.Anything, testVeilID).Return(openVeil(0), nil)
				f.guessRepo.On("Exists", mock.Anything, testVeilID, testGuesserID).Return(false, dbErr)
			},
			errContains: "failed to check existing guess",
		},
		{
			name: "recording the guess fails",
			setup: func(f *settlementFixture) {
				f.veilRepo.On("GetByID", mock.Anything, testVeilID).Return(openVeil(0), nil)
				f.guessRepo.On("Exists", mock.Anything, testVeilID, testGuesserID).Return(false, nil)
				f.expectSpend(true)
				f.guessRepo.On("Insert", mock.Anything, mock.Anything).Return(false, dbErr)
			},
			errContains: "failed to record guess",
		},
		{
			name: "unveil update fails",
			setup: func(f *settlementFixture) {
				f.veilRepo.On("GetByID", mock.Anything, testVeilID).Return(openVeil(0), nil)
				f.guessRepo.On("Exists", mock.Anything, testVeilID, testGuesserID).Return(false, nil)
				f.expectSpend(true)
				f.guessRepo.On("Insert", mock.Anything, mock.Anything).Return(true, nil)
				f.veilRepo.On("TryUnveil", mock.Anything, testVeilID, testGuesserID, 3).Return(0, false, dbErr)
			},
			errContains: "failed to unveil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSettlementFixture(entities.TierFree, 3)
			tt.setup(f)

			result, err := f.service.SubmitGuess(context.Background(), submission(testAuthorID))

			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, dbErr)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
