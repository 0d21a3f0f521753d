package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"veilbot/application"
	"veilbot/domain/entities"
	"veilbot/repository"
	"veilbot/repository/testutil"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackOff() application.HydratorOption {
	return application.WithHydrationBackOff(3, func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	})
}

func pointAt(t *testing.T, testDB *testutil.TestDatabase, guildID, channelID, veilID int64) {
	t.Helper()
	_, err := repository.NewLatestPointerRepositoryScoped(testDB.DB.Pool(), guildID).Set(context.Background(), channelID, veilID)
	require.NoError(t, err)
}

func TestRecoveryHydrator_RestoresUnveiledVeil(t *testing.T) {
	testDB, factory := setupFactory(t)
	ctx := context.Background()

	const guildID, channelID, veilID int64 = 1, 11, 111
	testutil.InsertTestGuildSettings(t, testDB.DB, guildID, 3, entities.TierFree)

	veil := testutil.CreateTestVeil(veilID, guildID, channelID, 5, 1)
	veil.GuessCount = 1
	veil.IsUnveiled = true
	testutil.InsertTestVeil(t, testDB.DB, veil)
	pointAt(t, testDB, guildID, channelID, veilID)

	presenter := newMockPresenter()
	hydrator := application.NewRecoveryHydrator(factory, presenter, application.WithHydrationRate(1000), fastBackOff())

	report, err := hydrator.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Refreshed)

	edits := presenter.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, veilID, edits[0].VeilID)
	assert.True(t, edits[0].GuessDisabled(), "unveiled veil must have its guess button disabled")
	assert.True(t, edits[0].IsLatest)
	assert.Equal(t, 1, edits[0].GuessCount)
	assert.Equal(t, 3, edits[0].GuessCap)
}

func TestRecoveryHydrator_SkipsMissingAndRetriesTransientErrors(t *testing.T) {
	testDB, factory := setupFactory(t)
	ctx := context.Background()

	// Guild 2 has no settings row and falls back to the default cap
	testutil.InsertTestGuildSettings(t, testDB.DB, 1, 2, entities.TierFree)
	testutil.InsertTestVeil(t, testDB.DB, testutil.CreateTestVeil(201, 1, 21, 5, 1))
	testutil.InsertTestVeil(t, testDB.DB, testutil.CreateTestVeil(202, 2, 22, 5, 1))
	pointAt(t, testDB, 1, 21, 201)
	pointAt(t, testDB, 2, 22, 202)

	tests := []struct {
		name          string
		editErrs      []error
		wantRefreshed int
		wantMissing   int
		wantFailed    int
	}{
		{
			name:          "all refreshed",
			wantRefreshed: 2,
		},
		{
			name:          "missing message is skipped without retry",
			editErrs:      []error{application.ErrMessageNotFound},
			wantRefreshed: 1,
			wantMissing:   1,
		},
		{
			name:          "transient error is retried",
			editErrs:      []error{errors.New("rate limited"), errors.New("rate limited")},
			wantRefreshed: 2,
		},
		{
			name:          "persistent error is reported and the walk continues",
			editErrs:      []error{errors.New("500"), errors.New("500"), errors.New("500")},
			wantRefreshed: 1,
			wantFailed:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presenter := newMockPresenter()
			presenter.editErrs = tt.editErrs

			hydrator := application.NewRecoveryHydrator(factory, presenter, application.WithHydrationRate(1000), fastBackOff())
			report, err := hydrator.Run(ctx)
			require.NoError(t, err)

			assert.Equal(t, tt.wantRefreshed, report.Refreshed)
			assert.Equal(t, tt.wantMissing, report.Missing)
			assert.Equal(t, tt.wantFailed, report.Failed)
		})
	}
}

func TestRecoveryHydrator_StopsWhenCancelled(t *testing.T) {
	testDB, factory := setupFactory(t)

	testutil.InsertTestVeil(t, testDB.DB, testutil.CreateTestVeil(301, 3, 31, 5, 1))
	pointAt(t, testDB, 3, 31, 301)

	ctx, cancel := context.WithCancel(context.Background())
	hydrator := application.NewRecoveryHydrator(factory, newMockPresenter())
	cancel()

	_, err := hydrator.Run(ctx)
	assert.Error(t, err)
}
