package repository

import (
	"context"
	"testing"

	"veilbot/domain/entities"
	"veilbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessRepository_InsertIsUniquePerGuesser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	const guildID int64 = 10
	testutil.InsertTestVeil(t, testDB.DB, testutil.CreateTestVeil(8001, guildID, 100, 1, 1))
	repo := NewGuessRepositoryScoped(testDB.DB.Pool(), guildID)

	inserted, err := repo.Insert(ctx, &entities.Guess{VeilID: 8001, GuesserID: 2, CandidateID: 3})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, &entities.Guess{VeilID: 8001, GuesserID: 2, CandidateID: 1, IsCorrect: true})
	require.NoError(t, err)
	assert.False(t, inserted, "second guess by the same user is a no-op")

	exists, err := repo.Exists(ctx, 8001, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountIncorrectByGuesser(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(ctx, 8001, 2))
	exists, err = repo.Exists(ctx, 8001, 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGuessRepository_GetLeaderboard(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	const guildID int64 = 10
	for i := int64(0); i < 3; i++ {
		testutil.InsertTestVeil(t, testDB.DB, testutil.CreateTestVeil(9001+i, guildID, 100, 1, i+1))
	}
	// A veil in another guild must not count
	testutil.InsertTestVeil(t, testDB.DB, testutil.CreateTestVeil(9100, guildID+1, 200, 1, 1))

	repo := NewGuessRepositoryScoped(testDB.DB.Pool(), guildID)
	otherRepo := NewGuessRepositoryScoped(testDB.DB.Pool(), guildID+1)

	insert := func(r interface {
		Insert(context.Context, *entities.Guess) (bool, error)
	}, veilID, guesser int64, correct bool) {
		_, err := r.Insert(ctx, &entities.Guess{VeilID: veilID, GuesserID: guesser, CandidateID: 1, IsCorrect: correct})
		require.NoError(t, err)
	}
	insert(repo, 9001, 20, true)
	insert(repo, 9002, 20, true)
	insert(repo, 9003, 21, true)
	insert(repo, 9001, 22, false)
	insert(otherRepo, 9100, 21, true)

	entries, err := repo.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(20), entries[0].UserID)
	assert.Equal(t, int64(2), entries[0].CorrectGuesses)
	assert.Equal(t, int64(21), entries[1].UserID)
	assert.Equal(t, int64(1), entries[1].CorrectGuesses)

	t.Run("guild counts stay within the guild", func(t *testing.T) {
		correct, err := repo.CountCorrect(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), correct)

		correct, err = otherRepo.CountCorrect(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), correct)

		sent, err := NewVeilRepositoryScoped(testDB.DB.Pool(), guildID).CountInGuild(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), sent)
	})
}
