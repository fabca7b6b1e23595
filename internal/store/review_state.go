package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/domain"
)

// ReviewStateStore defines the interface for per-card review state persistence.
type ReviewStateStore interface {
	// Get retrieves the review state for the combination of user ID and card ID.
	// Returns ErrReviewStateNotFound if no state exists for the pair.
	// NOTE: This method does NOT provide any row locking, so it should not be used
	// when you plan to update the row and need concurrency protection.
	Get(ctx context.Context, userID uuid.UUID, cardID uuid.UUID) (*domain.ReviewState, error)

	// GetForUpdate retrieves the review state with a row-level lock using
	// SELECT FOR UPDATE. This should be used within a transaction when you plan
	// to update the row and need protection from concurrent modifications.
	// Returns ErrReviewStateNotFound if no state exists for the pair.
	GetForUpdate(ctx context.Context, userID uuid.UUID, cardID uuid.UUID) (*domain.ReviewState, error)

	// Upsert inserts the review state, or replaces the existing row for the
	// same user and card. It handles domain validation internally and returns
	// validation errors from the domain ReviewState if data is invalid.
	Upsert(ctx context.Context, state *domain.ReviewState) error

	// ListDue retrieves all review states for the user whose next review time
	// is at or before now. Pass uuid.Nil as deckID to include every deck.
	// Results are ordered by next review time ascending.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, deckID uuid.UUID) ([]*domain.ReviewState, error)

	// WithTx returns a new ReviewStateStore instance that uses the provided
	// transaction. The transaction should be created and managed by the caller
	// (typically a service).
	WithTx(tx *sql.Tx) ReviewStateStore
}
