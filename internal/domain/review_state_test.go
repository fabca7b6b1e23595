package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewState(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	state, err := domain.NewReviewState(userID, cardID, now)
	require.NoError(t, err)

	assert.Equal(t, userID, state.UserID)
	assert.Equal(t, cardID, state.CardID)
	assert.InDelta(t, 2.5, state.EaseFactor, 1e-9)
	assert.Equal(t, 1, state.IntervalDays)
	assert.Equal(t, 0, state.Repetitions)
	assert.Equal(t, 0, state.TotalReviews)
	assert.Nil(t, state.LastQuality)
	assert.True(t, state.LastReviewedAt.IsZero())

	// A fresh state is due immediately.
	assert.True(t, state.IsDue(now))
	assert.Equal(t, 0, state.DaysOverdue(now))
}

func TestNewReviewStateRejectsNilIDs(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	_, err := domain.NewReviewState(uuid.Nil, uuid.New(), now)
	assert.ErrorIs(t, err, domain.ErrEmptyStateUserID)

	_, err = domain.NewReviewState(uuid.New(), uuid.Nil, now)
	assert.ErrorIs(t, err, domain.ErrEmptyStateCardID)
}

func TestReviewStateValidate(t *testing.T) {
	t.Parallel()

	valid := func() *domain.ReviewState {
		s, err := domain.NewReviewState(uuid.New(), uuid.New(), time.Now().UTC())
		require.NoError(t, err)
		return s
	}

	testCases := []struct {
		name    string
		mutate  func(*domain.ReviewState)
		wantErr error
	}{
		{
			name:    "interval below one day",
			mutate:  func(s *domain.ReviewState) { s.IntervalDays = 0 },
			wantErr: domain.ErrInvalidInterval,
		},
		{
			name:    "ease factor below floor",
			mutate:  func(s *domain.ReviewState) { s.EaseFactor = 1.2 },
			wantErr: domain.ErrInvalidEaseFactor,
		},
		{
			name:    "negative repetitions",
			mutate:  func(s *domain.ReviewState) { s.Repetitions = -1 },
			wantErr: domain.ErrInvalidRepetition,
		},
		{
			name: "successes exceed totals",
			mutate: func(s *domain.ReviewState) {
				s.TotalReviews = 2
				s.SuccessfulReviews = 3
			},
			wantErr: domain.ErrInvalidReviewTally,
		},
		{
			name:    "success rate out of range",
			mutate:  func(s *domain.ReviewState) { s.SuccessRate = 1.5 },
			wantErr: domain.ErrInvalidSuccessRate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := valid()
			tc.mutate(state)
			assert.ErrorIs(t, state.Validate(), tc.wantErr)
		})
	}

	t.Run("ease factor exactly at floor is valid", func(t *testing.T) {
		t.Parallel()
		state := valid()
		state.EaseFactor = 1.3
		assert.NoError(t, state.Validate())
	})
}

func TestDaysOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		due      time.Time
		expected int
	}{
		{
			name:     "due today",
			due:      time.Date(2026, 5, 10, 23, 59, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "three days overdue",
			due:      time.Date(2026, 5, 7, 8, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "not yet due",
			due:      time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := &domain.ReviewState{NextReviewAt: tc.due}
			assert.Equal(t, tc.expected, state.DaysOverdue(now))
		})
	}
}

func TestIsDueIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	// Due late tonight, "now" is early this morning: same calendar date,
	// so the card counts as due.
	state := &domain.ReviewState{
		NextReviewAt: time.Date(2026, 5, 10, 23, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 5, 10, 1, 0, 0, 0, time.UTC)

	assert.True(t, state.IsDue(now))
	assert.False(t, state.IsDue(time.Date(2026, 5, 9, 23, 59, 0, 0, time.UTC)))
}
