package srs

import (
	"github.com/studypace/srs-api/internal/domain"
)

// Trend describes how the latest quality rating compares to the previous one.
type Trend string

// Possible trend values
const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Stats is the cumulative per-card statistics slice of a review state.
type Stats struct {
	TotalReviews        int
	SuccessfulReviews   int
	SuccessRate         float64
	AverageResponseTime float64 // milliseconds
	LastQuality         *int
}

// Track folds one graded review into the cumulative statistics and reports
// the quality trend against the previous review. Like Grade, it is pure.
//
// The success rate is recomputed from the counters on every update rather
// than adjusted incrementally, so it can never drift from
// successful/total. The response-time mean is the standard incremental
// form: the first observation seeds it, later ones are weighted in.
//
// Input validation (quality range, negative response times) happens at the
// API boundary; Track assumes well-formed input.
func Track(prior Stats, quality int, responseTimeMS float64, params *Params) (Stats, Trend) {
	next := Stats{
		TotalReviews:      prior.TotalReviews + 1,
		SuccessfulReviews: prior.SuccessfulReviews,
	}

	if quality >= params.SuccessThreshold {
		next.SuccessfulReviews++
	}
	next.SuccessRate = float64(next.SuccessfulReviews) / float64(next.TotalReviews)

	if next.TotalReviews == 1 {
		next.AverageResponseTime = responseTimeMS
	} else {
		next.AverageResponseTime = (prior.AverageResponseTime*float64(next.TotalReviews-1) +
			responseTimeMS) / float64(next.TotalReviews)
	}

	trend := TrendStable
	if prior.LastQuality != nil {
		switch {
		case quality > *prior.LastQuality:
			trend = TrendImproving
		case quality < *prior.LastQuality:
			trend = TrendDeclining
		}
	}

	q := quality
	next.LastQuality = &q

	return next, trend
}

// StatsOf extracts the tracker's statistics slice from a review state.
func StatsOf(state *domain.ReviewState) Stats {
	return Stats{
		TotalReviews:        state.TotalReviews,
		SuccessfulReviews:   state.SuccessfulReviews,
		SuccessRate:         state.SuccessRate,
		AverageResponseTime: state.AverageResponseTime,
		LastQuality:         state.LastQuality,
	}
}
