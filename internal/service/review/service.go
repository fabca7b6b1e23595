// Package review implements the application service that orchestrates review
// grading: it loads the card's scheduling state, consults the adaptive
// advisor, applies the spaced repetition algorithm, and persists the result.
// It also owns the lifecycle of in-memory study sessions.
package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/adaptive"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/domain/srs"
	"github.com/studypace/srs-api/internal/queue"
	"github.com/studypace/srs-api/internal/session"
)

// SubmitResult is the full outcome of grading a single review, including the
// analytics the API layer surfaces alongside the new schedule.
type SubmitResult struct {
	// State is the persisted scheduling state after the review.
	State *domain.ReviewState
	// Trend classifies the card's recent success trajectory.
	Trend srs.Trend
	// Advice is the adaptive adjustment that was blended into the schedule.
	// Its Degraded flag is set when the local fallback produced it.
	Advice adaptive.AdviceResponse
}

// ReviewService coordinates review submission, due-queue construction, and
// study sessions.
type ReviewService interface {
	// SubmitReview grades one review for the given card and persists the
	// updated scheduling state atomically. Missing state is created on the
	// fly with first-review defaults. Pass uuid.Nil as deckID when the card
	// has no deck association.
	//
	// Returns ErrInvalidReview (wrapping the domain cause) when the review
	// payload is out of range. Storage failures leave the previous state
	// untouched.
	SubmitReview(
		ctx context.Context,
		userID, cardID, deckID uuid.UUID,
		rev srs.Review,
	) (*SubmitResult, error)

	// GetDueCards builds the prioritized due queue for the user. Pass
	// uuid.Nil as deckID to include every deck; limit <= 0 selects the
	// configured default. The result's TotalDue and HighPriorityCount always
	// describe the full due set even when the entry list is truncated.
	GetDueCards(
		ctx context.Context,
		userID, deckID uuid.UUID,
		limit int,
	) (queue.BuildResult, error)

	// StartSession builds the due queue and opens a study session over it.
	// Returns session.ErrEmptyQueue when the user has nothing due.
	StartSession(
		ctx context.Context,
		userID, deckID uuid.UUID,
		limit int,
	) (*session.StudySession, error)

	// Session retrieves an active session by ID. Sessions are scoped to
	// their owner: asking for another user's session reports
	// session.ErrSessionNotFound.
	Session(ctx context.Context, id, userID uuid.UUID) (*session.StudySession, error)

	// EndSession drops a terminal session from the in-memory registry.
	EndSession(ctx context.Context, id uuid.UUID)

	// Close stops background session maintenance. Call once during
	// shutdown; the service must not be used afterwards.
	Close()

	// CommitReview grades and persists a single review on behalf of a study
	// session. It is the session.Committer contract: atomic, and on error
	// nothing has been persisted.
	CommitReview(
		ctx context.Context,
		userID, cardID uuid.UUID,
		rev srs.Review,
	) (*domain.ReviewState, error)
}
