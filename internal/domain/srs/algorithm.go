package srs

import (
	"math"
	"time"

	"github.com/studypace/srs-api/internal/domain"
)

// Prior is the scheduling state a grade calculation starts from.
type Prior struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// GradeResult is the new schedule produced by grading a single review.
type GradeResult struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	NextReviewAt time.Time
}

// Grade maps a quality rating and the card's prior scheduling state to its
// next schedule. It is a pure function: the caller persists the result.
//
// The ease factor follows the SM-2 update
//
//	ease' = ease + (0.1 - (5-q)*(0.08 + (5-q)*0.02))
//
// floored at params.MinEaseFactor. A failing rating (below the success
// threshold) restarts learning with a one-day interval and zero repetitions;
// successes walk the fixed 1-day then 6-day openers before the interval
// starts compounding by the new ease factor.
//
// Ratings outside [0,5] are rejected outright, never clamped.
func Grade(quality int, prior Prior, now time.Time, params *Params) (GradeResult, error) {
	if quality < 0 || quality > 5 {
		return GradeResult{}, domain.ErrInvalidQuality
	}

	ease := newEaseFactor(prior.EaseFactor, quality, params)

	var interval, repetitions int
	if quality < params.SuccessThreshold {
		// Failure: restart the learning sequence. The ease penalty above
		// still applies, so repeated failures keep shrinking future growth.
		repetitions = 0
		interval = 1
	} else {
		repetitions = prior.Repetitions + 1
		switch repetitions {
		case 1:
			interval = params.FirstInterval
		case 2:
			interval = params.SecondInterval
		default:
			interval = int(math.Round(float64(prior.IntervalDays) * ease))
		}
	}

	return GradeResult{
		EaseFactor:   ease,
		IntervalDays: interval,
		Repetitions:  repetitions,
		NextReviewAt: domain.DateOf(now).AddDate(0, 0, interval),
	}, nil
}

// newEaseFactor applies the SM-2 ease adjustment for the given quality and
// clamps the result at the configured floor.
func newEaseFactor(current float64, quality int, params *Params) float64 {
	q := float64(quality)
	ease := current + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if ease < params.MinEaseFactor {
		ease = params.MinEaseFactor
	}

	return ease
}
