package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/adaptive"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/domain/srs"
	"github.com/studypace/srs-api/internal/queue"
	"github.com/studypace/srs-api/internal/session"
)

// dateLayout is the wire format for calendar dates. Scheduling is
// date-granular, so due dates carry no time of day.
const dateLayout = "2006-01-02"

// SubmitReviewRequest is the body of a review submission. Quality is a
// pointer so that a legitimate rating of 0 is distinguishable from a missing
// field.
type SubmitReviewRequest struct {
	Quality         *int     `json:"quality"           validate:"required,gte=0,lte=5"`
	ResponseTimeMS  *float64 `json:"response_time_ms"  validate:"omitempty,gte=0"`
	ConfidenceLevel *float64 `json:"confidence_level"  validate:"omitempty,gte=0,lte=1"`
	HintsUsed       *int     `json:"hints_used"        validate:"omitempty,gte=0"`
	DeckID          string   `json:"deck_id,omitempty" validate:"omitempty,uuid"`
}

// toReview converts the request into the domain review value.
func (r SubmitReviewRequest) toReview() srs.Review {
	rev := srs.Review{}
	if r.Quality != nil {
		rev.Quality = *r.Quality
	}
	if r.ResponseTimeMS != nil {
		rev.ResponseTimeMS = *r.ResponseTimeMS
	}
	if r.ConfidenceLevel != nil {
		rev.ConfidenceLevel = *r.ConfidenceLevel
	}
	if r.HintsUsed != nil {
		rev.HintsUsed = *r.HintsUsed
	}
	return rev
}

// ScheduleResponse is the scheduling slice of a review state as returned to
// clients after grading.
type ScheduleResponse struct {
	NextReviewDate string  `json:"next_review_date"`
	IntervalDays   int     `json:"interval_days"`
	EaseFactor     float64 `json:"ease_factor"`
	Repetitions    int     `json:"repetitions"`
	SuccessRate    float64 `json:"success_rate"`
}

// StudyAnalytics is the cumulative statistics block of a review response.
type StudyAnalytics struct {
	TotalReviews        int     `json:"total_reviews"`
	SuccessfulReviews   int     `json:"successful_reviews"`
	AverageResponseTime float64 `json:"average_response_time"`
	DifficultyTrend     string  `json:"difficulty_trend"`
}

// AdaptiveInfo reports what the adaptive advisor contributed to a grading.
type AdaptiveInfo struct {
	ConfidenceFactor    float64 `json:"confidence_factor"`
	RetentionPrediction float64 `json:"retention_prediction"`
	Degraded            bool    `json:"degraded"`
}

// SubmitReviewResponse is the full response to a direct review submission.
type SubmitReviewResponse struct {
	ScheduleResponse
	PerformanceFeedback string         `json:"performance_feedback"`
	StudyAnalytics      StudyAnalytics `json:"study_analytics"`
	Adaptive            AdaptiveInfo   `json:"adaptive"`
}

// DueCardEntry is one prioritized entry of the due queue.
type DueCardEntry struct {
	CardID         string  `json:"card_id"`
	DeckID         string  `json:"deck_id,omitempty"`
	NextReviewDate string  `json:"next_review_date"`
	DaysOverdue    int     `json:"days_overdue"`
	EaseFactor     float64 `json:"ease_factor"`
	SuccessRate    float64 `json:"success_rate"`
	TotalReviews   int     `json:"total_reviews"`
	PriorityScore  int     `json:"priority_score"`
	PriorityReason string  `json:"priority_reason"`
}

// DueCardsResponse is the response to a due-cards query. TotalDue and
// HighPriorityCount describe the full due set even when Cards is truncated
// by the limit.
type DueCardsResponse struct {
	Cards             []DueCardEntry `json:"cards"`
	TotalDue          int            `json:"total_due"`
	HighPriorityCount int            `json:"high_priority_count"`
}

// StartSessionRequest is the body of a session start request.
type StartSessionRequest struct {
	Limit  int    `json:"limit,omitempty"   validate:"omitempty,gte=1"`
	DeckID string `json:"deck_id,omitempty" validate:"omitempty,uuid"`
}

// TallyResponse is the running score of a session.
type TallyResponse struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SessionResponse describes a session and, while it is presenting, the
// current card.
type SessionResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Position  int           `json:"position"`
	Total     int           `json:"total"`
	Card      *DueCardEntry `json:"card,omitempty"`
	Tally     TallyResponse `json:"tally"`
}

// SessionSummaryResponse is the result of a completed session.
type SessionSummaryResponse struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// SessionAnswerResponse is the response to grading a card inside a session:
// the card's new schedule plus the session's progress. Summary is present
// only when this answer completed the session.
type SessionAnswerResponse struct {
	Schedule            ScheduleResponse        `json:"schedule"`
	PerformanceFeedback string                  `json:"performance_feedback"`
	State               string                  `json:"state"`
	Position            int                     `json:"position"`
	Total               int                     `json:"total"`
	Tally               TallyResponse           `json:"tally"`
	Summary             *SessionSummaryResponse `json:"summary,omitempty"`
}

// performanceFeedback maps a quality rating to its feedback tier.
func performanceFeedback(quality int) string {
	switch {
	case quality >= 4:
		return "Excellent recall, keep it up"
	case quality == 3:
		return "Good work, solid progress"
	case quality == 2:
		return "This card needs more attention"
	default:
		return "Take time to review the fundamentals"
	}
}

// scheduleToResponse extracts the schedule slice of a review state.
func scheduleToResponse(state *domain.ReviewState) ScheduleResponse {
	return ScheduleResponse{
		NextReviewDate: state.NextReviewAt.Format(dateLayout),
		IntervalDays:   state.IntervalDays,
		EaseFactor:     state.EaseFactor,
		Repetitions:    state.Repetitions,
		SuccessRate:    state.SuccessRate,
	}
}

// submitResultToResponse converts a grading outcome into the submit response.
func submitResultToResponse(state *domain.ReviewState, trend srs.Trend, advice adaptive.AdviceResponse, quality int) SubmitReviewResponse {
	return SubmitReviewResponse{
		ScheduleResponse:    scheduleToResponse(state),
		PerformanceFeedback: performanceFeedback(quality),
		StudyAnalytics: StudyAnalytics{
			TotalReviews:        state.TotalReviews,
			SuccessfulReviews:   state.SuccessfulReviews,
			AverageResponseTime: state.AverageResponseTime,
			DifficultyTrend:     string(trend),
		},
		Adaptive: AdaptiveInfo{
			ConfidenceFactor:    advice.ConfidenceFactor,
			RetentionPrediction: advice.RetentionPrediction,
			Degraded:            advice.Degraded,
		},
	}
}

// dueEntryToResponse converts one queue entry for the wire.
func dueEntryToResponse(entry queue.DueEntry, now time.Time) DueCardEntry {
	resp := DueCardEntry{
		CardID:         entry.State.CardID.String(),
		NextReviewDate: entry.State.NextReviewAt.Format(dateLayout),
		DaysOverdue:    entry.State.DaysOverdue(now),
		EaseFactor:     entry.State.EaseFactor,
		SuccessRate:    entry.State.SuccessRate,
		TotalReviews:   entry.State.TotalReviews,
		PriorityScore:  entry.PriorityScore,
		PriorityReason: entry.PriorityReason,
	}
	if entry.State.DeckID != uuid.Nil {
		resp.DeckID = entry.State.DeckID.String()
	}
	return resp
}

// sessionToResponse converts a study session and its current card for the
// wire.
func sessionToResponse(sess *session.StudySession, now time.Time) SessionResponse {
	resp := SessionResponse{
		SessionID: sess.ID().String(),
		State:     string(sess.State()),
	}

	tally := sess.Tally()
	resp.Tally = TallyResponse{Correct: tally.Correct, Total: tally.Total}

	if entry, position, total, err := sess.Current(); err == nil {
		card := dueEntryToResponse(entry, now)
		resp.Card = &card
		resp.Position = position
		resp.Total = total
	}

	return resp
}
