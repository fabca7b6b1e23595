// Package adaptive integrates an optional external reasoning service that
// supplies adaptive scheduling multipliers. The scheduler is correct and
// deterministic without it: every code path here degrades to a local
// fallback that produces the same response shape.
package adaptive

import (
	"context"
)

// AdviceRequest describes one graded review for the reasoning service.
type AdviceRequest struct {
	Quality        int     `json:"quality"`
	ResponseTimeMS float64 `json:"response_time"`
	Confidence     float64 `json:"confidence"`
	// RecentHistory is the last few quality ratings for the card, most
	// recent last, giving the service trend context.
	RecentHistory []int `json:"recent_history,omitempty"`
}

// AdviceResponse carries the multiplicative adjustments blended into the
// grader's output before persistence. Degraded marks responses produced by
// the local fallback; callers use it for observability only, never to
// change scheduling behavior.
type AdviceResponse struct {
	DifficultyMultiplier float64 `json:"difficulty_multiplier"`
	IntervalAdjustment   float64 `json:"interval_adjustment"`
	ConfidenceFactor     float64 `json:"confidence_factor"`
	RetentionPrediction  float64 `json:"retention_prediction"`

	Degraded bool `json:"-"`
}

// Advisor produces scheduling advice for a graded review.
type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) (AdviceResponse, error)
}

// Fallback is the deterministic local approximation used when the external
// service is unavailable or the circuit is open. Successful recalls keep
// the grader's schedule untouched; failures tighten it slightly.
func Fallback(req AdviceRequest) AdviceResponse {
	reasoningDepth := float64(req.Quality) / 5.0

	cognitiveLoad := req.ResponseTimeMS / 60000.0
	if cognitiveLoad > 1 {
		cognitiveLoad = 1
	}
	if cognitiveLoad < 0 {
		cognitiveLoad = 0
	}

	interval := 1.0
	if req.Quality < 3 {
		interval = 0.8
	}

	retention := 0.6*reasoningDepth + 0.4*(1-cognitiveLoad)

	return AdviceResponse{
		DifficultyMultiplier: 1.0,
		IntervalAdjustment:   interval,
		ConfidenceFactor:     req.Confidence,
		RetentionPrediction:  retention,
		Degraded:             true,
	}
}
