package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"veilbot/database"
	"veilbot/domain/events"
	"veilbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher counts flushes and discards of a unit of work's events
type recordingPublisher struct {
	mu       sync.Mutex
	pending  []events.Event
	flushed  []events.Event
	discards int
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *recordingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *recordingPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = nil
	p.discards++
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	const guildID int64 = 30
	factory := NewUnitOfWorkFactory(testDB.DB)
	event := events.VeilUnveiledEvent{GuildID: guildID, VeilID: 1}

	veilExists := func(t *testing.T, id int64) bool {
		t.Helper()
		veil, err := NewVeilRepositoryScoped(testDB.DB.Pool(), guildID).GetByID(ctx, id)
		require.NoError(t, err)
		return veil != nil
	}

	t.Run("commit persists writes and flushes events", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := factory.CreateForGuildWithPublisher(guildID, publisher)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		require.NoError(t, uow.VeilRepository().Create(uow.Context(), testutil.CreateTestVeil(3001, guildID, 300, 1, 1)))
		require.NoError(t, uow.EventBus().Publish(event))
		require.NoError(t, uow.Commit())

		assert.True(t, veilExists(t, 3001))
		assert.Len(t, publisher.flushed, 1)
		assert.Zero(t, publisher.discards)
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		publisher := &recordingPublisher{}
		uow := factory.CreateForGuildWithPublisher(guildID, publisher)
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.VeilRepository().Create(uow.Context(), testutil.CreateTestVeil(3002, guildID, 300, 1, 2)))
		require.NoError(t, uow.EventBus().Publish(event))
		require.NoError(t, uow.Rollback())

		assert.False(t, veilExists(t, 3002))
		assert.Empty(t, publisher.flushed)
		assert.Equal(t, 1, publisher.discards)
	})

	t.Run("deferred rollback undoes writes when the caller panics", func(t *testing.T) {
		assert.PanicsWithValue(t, "kaboom", func() {
			uow := factory.CreateForGuildWithPublisher(guildID, &recordingPublisher{})
			require.NoError(t, uow.Begin(ctx))
			defer uow.Rollback()

			require.NoError(t, uow.VeilRepository().Create(uow.Context(), testutil.CreateTestVeil(3003, guildID, 300, 1, 3)))
			panic("kaboom")
		})
		assert.False(t, veilExists(t, 3003))
	})

	t.Run("failed statement aborts the whole unit", func(t *testing.T) {
		uow := factory.CreateForGuildWithPublisher(guildID, &recordingPublisher{})
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		require.NoError(t, uow.VeilRepository().Create(uow.Context(), testutil.CreateTestVeil(3004, guildID, 301, 1, 1)))
		// Same channel and number as the veil committed above
		require.Error(t, uow.VeilRepository().Create(uow.Context(), testutil.CreateTestVeil(3005, guildID, 300, 1, 1)))
		assert.Error(t, uow.Commit())

		assert.False(t, veilExists(t, 3004))
	})

	t.Run("misuse is rejected", func(t *testing.T) {
		uow := factory.CreateForGuildWithPublisher(guildID, &recordingPublisher{})
		assert.PanicsWithValue(t, notStartedPanic, func() { uow.Context() })
		assert.Error(t, uow.Commit())
		assert.NoError(t, uow.Rollback())

		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		assert.Error(t, uow.Begin(ctx))
	})
}

func TestUnitOfWork_BoundedByTxTimeout(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	db, err := database.NewConnection(ctx, testDB.URL, database.WithTxTimeout(200*time.Millisecond))
	require.NoError(t, err)
	defer db.Close()

	uow := NewUnitOfWorkFactory(db).CreateForGuildWithPublisher(31, &recordingPublisher{})
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	_, err = uow.(*unitOfWork).tx.Exec(uow.Context(), `SELECT pg_sleep(2)`)
	require.Error(t, err)
	assert.True(t, errors.Is(uow.Context().Err(), context.DeadlineExceeded))
	assert.Error(t, uow.Commit())
}
