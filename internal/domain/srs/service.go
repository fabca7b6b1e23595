package srs

import (
	"errors"
	"math"
	"time"

	"github.com/studypace/srs-api/internal/domain"
)

// Common errors
var (
	ErrNilState = errors.New("review state cannot be nil")
)

// Review is a single graded recall attempt with its optional telemetry.
type Review struct {
	Quality         int
	ResponseTimeMS  float64
	ConfidenceLevel float64
	HintsUsed       int
}

// Adjustment holds multiplicative corrections blended into the grader's
// output before persistence, typically supplied by the adaptive advisor.
// NoAdjustment leaves the schedule untouched.
type Adjustment struct {
	IntervalMultiplier float64
	EaseMultiplier     float64
}

// NoAdjustment is the identity adjustment.
var NoAdjustment = Adjustment{IntervalMultiplier: 1.0, EaseMultiplier: 1.0}

// Service defines the interface for SRS scheduling operations.
type Service interface {
	// ApplyReview grades one review, folds it into the card's cumulative
	// statistics, and returns the resulting state as a new instance. The
	// input state is never mutated; the caller persists the result.
	ApplyReview(
		state *domain.ReviewState,
		review Review,
		adjustment Adjustment,
		now time.Time,
	) (*domain.ReviewState, Trend, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// ApplyReview implements the Service interface.
func (s *defaultService) ApplyReview(
	state *domain.ReviewState,
	review Review,
	adjustment Adjustment,
	now time.Time,
) (*domain.ReviewState, Trend, error) {
	if state == nil {
		return nil, TrendStable, ErrNilState
	}

	graded, err := Grade(review.Quality, Prior{
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.IntervalDays,
		Repetitions:  state.Repetitions,
	}, now, s.params)
	if err != nil {
		return nil, TrendStable, err
	}

	graded = s.applyAdjustment(graded, adjustment, now)

	stats, trend := Track(StatsOf(state), review.Quality, review.ResponseTimeMS, s.params)

	next := &domain.ReviewState{
		UserID: state.UserID,
		CardID: state.CardID,
		DeckID: state.DeckID,

		EaseFactor:     graded.EaseFactor,
		IntervalDays:   graded.IntervalDays,
		Repetitions:    graded.Repetitions,
		NextReviewAt:   graded.NextReviewAt,
		LastReviewedAt: now.UTC(),

		TotalReviews:        stats.TotalReviews,
		SuccessfulReviews:   stats.SuccessfulReviews,
		SuccessRate:         stats.SuccessRate,
		AverageResponseTime: stats.AverageResponseTime,

		LastQuality:     stats.LastQuality,
		ConfidenceLevel: review.ConfidenceLevel,
		HintsUsed:       review.HintsUsed,

		CreatedAt: state.CreatedAt,
		UpdatedAt: now.UTC(),
	}

	if err := next.Validate(); err != nil {
		return nil, TrendStable, err
	}

	return next, trend, nil
}

// applyAdjustment blends the advisor's multipliers into a grade result. The
// invariants survive blending: the interval never drops below one day and
// the ease factor never drops below its floor.
func (s *defaultService) applyAdjustment(
	graded GradeResult,
	adj Adjustment,
	now time.Time,
) GradeResult {
	if adj == NoAdjustment || (adj.IntervalMultiplier == 0 && adj.EaseMultiplier == 0) {
		return graded
	}

	if adj.IntervalMultiplier > 0 && adj.IntervalMultiplier != 1.0 {
		interval := int(math.Round(float64(graded.IntervalDays) * adj.IntervalMultiplier))
		if interval < 1 {
			interval = 1
		}
		graded.IntervalDays = interval
		graded.NextReviewAt = domain.DateOf(now).AddDate(0, 0, interval)
	}

	if adj.EaseMultiplier > 0 && adj.EaseMultiplier != 1.0 {
		ease := graded.EaseFactor * adj.EaseMultiplier
		if ease < s.params.MinEaseFactor {
			ease = s.params.MinEaseFactor
		}
		graded.EaseFactor = ease
	}

	return graded
}
