package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/platform/postgres"
	"github.com/studypace/srs-api/internal/store"
	"github.com/studypace/srs-api/internal/testdb"
)

func seedState(t *testing.T, userID, cardID uuid.UUID, dueDaysFromNow int) *domain.ReviewState {
	t.Helper()

	now := time.Now().UTC()
	state, err := domain.NewReviewState(userID, cardID, now)
	require.NoError(t, err)
	state.NextReviewAt = domain.DateOf(now.AddDate(0, 0, dueDaysFromNow))
	return state
}

func TestReviewStateStoreRoundTrip(t *testing.T) {
	db := testdb.Get(t)
	ctx := context.Background()
	s := postgres.NewPostgresReviewStateStore(db, nil)

	userID := uuid.New()
	cardID := uuid.New()
	deckID := uuid.New()

	quality := 4
	state := seedState(t, userID, cardID, 0)
	state.DeckID = deckID
	state.EaseFactor = 2.36
	state.IntervalDays = 6
	state.Repetitions = 2
	state.LastReviewedAt = time.Now().UTC().Truncate(time.Microsecond)
	state.TotalReviews = 2
	state.SuccessfulReviews = 2
	state.SuccessRate = 1.0
	state.AverageResponseTime = 4250.5
	state.LastQuality = &quality
	state.ConfidenceLevel = 0.8
	state.HintsUsed = 1

	require.NoError(t, s.Upsert(ctx, state))

	got, err := s.Get(ctx, userID, cardID)
	require.NoError(t, err)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, cardID, got.CardID)
	assert.Equal(t, deckID, got.DeckID)
	assert.Equal(t, 2.36, got.EaseFactor)
	assert.Equal(t, 6, got.IntervalDays)
	assert.Equal(t, 2, got.Repetitions)
	assert.True(t, got.NextReviewAt.Equal(state.NextReviewAt))
	assert.True(t, got.LastReviewedAt.Equal(state.LastReviewedAt))
	assert.Equal(t, 2, got.TotalReviews)
	assert.Equal(t, 1.0, got.SuccessRate)
	assert.Equal(t, 4250.5, got.AverageResponseTime)
	require.NotNil(t, got.LastQuality)
	assert.Equal(t, 4, *got.LastQuality)
	assert.Equal(t, 0.8, got.ConfidenceLevel)
	assert.Equal(t, 1, got.HintsUsed)
}

func TestReviewStateStoreNullableColumns(t *testing.T) {
	db := testdb.Get(t)
	ctx := context.Background()
	s := postgres.NewPostgresReviewStateStore(db, nil)

	userID := uuid.New()
	cardID := uuid.New()

	// A freshly created state has no deck, no last review, no last quality.
	state := seedState(t, userID, cardID, 0)
	require.NoError(t, s.Upsert(ctx, state))

	got, err := s.Get(ctx, userID, cardID)
	require.NoError(t, err)

	assert.Equal(t, uuid.Nil, got.DeckID)
	assert.True(t, got.LastReviewedAt.IsZero())
	assert.Nil(t, got.LastQuality)
}

func TestReviewStateStoreUpsertReplaces(t *testing.T) {
	db := testdb.Get(t)
	ctx := context.Background()
	s := postgres.NewPostgresReviewStateStore(db, nil)

	userID := uuid.New()
	cardID := uuid.New()

	state := seedState(t, userID, cardID, 0)
	require.NoError(t, s.Upsert(ctx, state))

	state.EaseFactor = 2.6
	state.IntervalDays = 15
	state.Repetitions = 3
	state.TotalReviews = 3
	require.NoError(t, s.Upsert(ctx, state))

	got, err := s.Get(ctx, userID, cardID)
	require.NoError(t, err)
	assert.Equal(t, 2.6, got.EaseFactor)
	assert.Equal(t, 15, got.IntervalDays)
	assert.Equal(t, 3, got.Repetitions)
	assert.Equal(t, 3, got.TotalReviews)
}

func TestReviewStateStoreGetNotFound(t *testing.T) {
	db := testdb.Get(t)
	ctx := context.Background()
	s := postgres.NewPostgresReviewStateStore(db, nil)

	_, err := s.Get(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrReviewStateNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestReviewStateStoreListDue(t *testing.T) {
	db := testdb.Get(t)
	ctx := context.Background()
	s := postgres.NewPostgresReviewStateStore(db, nil)

	userID := uuid.New()
	deckID := uuid.New()
	now := time.Now().UTC()

	overdue := seedState(t, userID, uuid.New(), -3)
	dueToday := seedState(t, userID, uuid.New(), 0)
	dueToday.DeckID = deckID
	future := seedState(t, userID, uuid.New(), 5)
	otherUser := seedState(t, uuid.New(), uuid.New(), -1)

	for _, st := range []*domain.ReviewState{overdue, dueToday, future, otherUser} {
		require.NoError(t, s.Upsert(ctx, st))
	}

	t.Run("all decks", func(t *testing.T) {
		states, err := s.ListDue(ctx, userID, now, uuid.Nil)
		require.NoError(t, err)
		require.Len(t, states, 2)

		// Ordered by due time, most overdue first.
		assert.Equal(t, overdue.CardID, states[0].CardID)
		assert.Equal(t, dueToday.CardID, states[1].CardID)
	})

	t.Run("deck filter", func(t *testing.T) {
		states, err := s.ListDue(ctx, userID, now, deckID)
		require.NoError(t, err)
		require.Len(t, states, 1)
		assert.Equal(t, dueToday.CardID, states[0].CardID)
	})

	t.Run("no due cards", func(t *testing.T) {
		states, err := s.ListDue(ctx, uuid.New(), now, uuid.Nil)
		require.NoError(t, err)
		assert.Empty(t, states)
	})
}

func TestReviewStateStoreTransaction(t *testing.T) {
	db := testdb.Get(t)
	ctx := context.Background()
	s := postgres.NewPostgresReviewStateStore(db, nil)

	userID := uuid.New()
	cardID := uuid.New()

	t.Run("commit persists", func(t *testing.T) {
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := s.WithTx(tx)
			return txStore.Upsert(ctx, seedState(t, userID, cardID, 0))
		})
		require.NoError(t, err)

		_, err = s.Get(ctx, userID, cardID)
		assert.NoError(t, err)
	})

	t.Run("error rolls back", func(t *testing.T) {
		otherCard := uuid.New()
		sentinel := errors.New("boom")

		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := s.WithTx(tx)
			if upErr := txStore.Upsert(ctx, seedState(t, userID, otherCard, 0)); upErr != nil {
				return upErr
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		_, err = s.Get(ctx, userID, otherCard)
		assert.ErrorIs(t, err, store.ErrReviewStateNotFound)
	})

	t.Run("locked read inside transaction", func(t *testing.T) {
		lockCard := uuid.New()
		require.NoError(t, s.Upsert(ctx, seedState(t, userID, lockCard, 0)))

		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := s.WithTx(tx)
			got, lockErr := txStore.GetForUpdate(ctx, userID, lockCard)
			if lockErr != nil {
				return lockErr
			}
			got.Repetitions = 7
			return txStore.Upsert(ctx, got)
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, userID, lockCard)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Repetitions)
	})
}
