package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewState
var (
	ErrEmptyStateUserID  = errors.New("review state user ID cannot be empty")
	ErrEmptyStateCardID  = errors.New("review state card ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be at least 1 day")
	ErrInvalidEaseFactor = errors.New("ease factor cannot be below 1.3")
	ErrInvalidRepetition = errors.New("repetitions cannot be negative")
	ErrInvalidReviewTally = errors.New(
		"successful reviews cannot exceed total reviews or be negative",
	)
	ErrInvalidSuccessRate = errors.New("success rate must be between 0 and 1")
)

// MinEaseFactor is the hard floor for ease factors. No sequence of reviews
// may push a card's ease factor below this value.
const MinEaseFactor = 1.3

// DefaultEaseFactor is the ease factor assigned to a card on first review.
const DefaultEaseFactor = 2.5

// ReviewState tracks a user's spaced repetition scheduling state for a
// single card. There is exactly one ReviewState per (user, card) pair; it is
// created lazily on first review and never deleted, serving as the permanent
// audit trail for that card.
type ReviewState struct {
	UserID uuid.UUID `json:"user_id"`
	CardID uuid.UUID `json:"card_id"`
	DeckID uuid.UUID `json:"deck_id,omitempty"` // optional deck tag, Nil when unknown

	// Scheduling state (SM-2 style)
	EaseFactor   float64   `json:"ease_factor"`   // difficulty multiplier, floor 1.3
	IntervalDays int       `json:"interval_days"` // days until next due date, >= 1
	Repetitions  int       `json:"repetitions"`   // consecutive successes since last failure
	NextReviewAt time.Time `json:"next_review_at"`
	// LastReviewedAt is the zero time until the first review is graded.
	LastReviewedAt time.Time `json:"last_reviewed_at"`

	// Cumulative statistics
	TotalReviews        int     `json:"total_reviews"`
	SuccessfulReviews   int     `json:"successful_reviews"` // quality >= 3
	SuccessRate         float64 `json:"success_rate"`
	AverageResponseTime float64 `json:"average_response_time"` // milliseconds, incremental mean

	// Telemetry from the most recent review. LastQuality is nil until the
	// first review is graded.
	LastQuality     *int    `json:"last_quality,omitempty"`
	ConfidenceLevel float64 `json:"confidence_level"`
	HintsUsed       int     `json:"hints_used"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReviewState creates the default scheduling state for a card's first
// review: ease factor 2.5, a one-day interval, zero repetitions, and due
// immediately. The scheduler calls this whenever no prior state exists for
// a (user, card) pair.
func NewReviewState(userID, cardID uuid.UUID, now time.Time) (*ReviewState, error) {
	now = now.UTC()
	state := &ReviewState{
		UserID:       userID,
		CardID:       cardID,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 1,
		Repetitions:  0,
		NextReviewAt: DateOf(now), // available for review immediately
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the ReviewState upholds its invariants.
// Returns an error if any field fails validation.
func (s *ReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.CardID == uuid.Nil {
		return ErrEmptyStateCardID
	}

	if s.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	// Allow a hair of float tolerance below the floor
	if s.EaseFactor < MinEaseFactor-1e-9 {
		return ErrInvalidEaseFactor
	}

	if s.Repetitions < 0 {
		return ErrInvalidRepetition
	}

	if s.TotalReviews < 0 || s.SuccessfulReviews < 0 ||
		s.SuccessfulReviews > s.TotalReviews {
		return ErrInvalidReviewTally
	}

	if s.SuccessRate < 0 || s.SuccessRate > 1 {
		return ErrInvalidSuccessRate
	}

	return nil
}

// IsDue reports whether the card is due at or before the given time.
// Due-ness is a calendar-date comparison, not time-of-day sensitive.
func (s *ReviewState) IsDue(now time.Time) bool {
	return !DateOf(s.NextReviewAt).After(DateOf(now))
}

// DaysOverdue returns how many whole days past its due date the card is,
// or 0 when the card is due today or not yet due.
func (s *ReviewState) DaysOverdue(now time.Time) int {
	days := int(DateOf(now).Sub(DateOf(s.NextReviewAt)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
