package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/platform/logger"
	"github.com/studypace/srs-api/internal/store"
)

// reviewStateColumns is the column list shared by every SELECT against
// review_states. Keep it in sync with scanReviewState.
const reviewStateColumns = `user_id, card_id, deck_id, ease_factor, interval_days,
	repetitions, next_review_at, last_reviewed_at, total_reviews,
	successful_reviews, success_rate, average_response_time_ms, last_quality,
	confidence_level, hints_used, created_at, updated_at`

// PostgresReviewStateStore implements the store.ReviewStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStateStore creates a new PostgreSQL implementation of the
// ReviewStateStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresReviewStateStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStateStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforces required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_state_store")),
	}
}

// Ensure PostgresReviewStateStore implements store.ReviewStateStore interface
var _ store.ReviewStateStore = (*PostgresReviewStateStore)(nil)

// Get implements store.ReviewStateStore.Get
// It retrieves the review state for the combination of user ID and card ID.
// Returns store.ErrReviewStateNotFound if no state exists for the pair.
func (s *PostgresReviewStateStore) Get(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	return s.get(ctx, userID, cardID, false)
}

// GetForUpdate implements store.ReviewStateStore.GetForUpdate
// It retrieves the review state with a row-level lock using SELECT FOR UPDATE.
// Must be called within a transaction to be effective.
// Returns store.ErrReviewStateNotFound if no state exists for the pair.
func (s *PostgresReviewStateStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.ReviewState, error) {
	return s.get(ctx, userID, cardID, true)
}

func (s *PostgresReviewStateStore) get(
	ctx context.Context,
	userID, cardID uuid.UUID,
	forUpdate bool,
) (*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND card_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	row := s.db.QueryRowContext(ctx, query, userID, cardID)
	state, err := scanReviewState(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review state not found",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, store.ErrReviewStateNotFound
		}
		log.Error("failed to get review state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, MapError(err)
	}

	return state, nil
}

// Upsert implements store.ReviewStateStore.Upsert
// It inserts the review state, or replaces the existing row for the same user
// and card. Returns validation errors from the domain ReviewState if data is
// invalid.
func (s *PostgresReviewStateStore) Upsert(ctx context.Context, state *domain.ReviewState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("review state validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
		return err
	}

	query := `
		INSERT INTO review_states (` + reviewStateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			deck_id = EXCLUDED.deck_id,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			next_review_at = EXCLUDED.next_review_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			total_reviews = EXCLUDED.total_reviews,
			successful_reviews = EXCLUDED.successful_reviews,
			success_rate = EXCLUDED.success_rate,
			average_response_time_ms = EXCLUDED.average_response_time_ms,
			last_quality = EXCLUDED.last_quality,
			confidence_level = EXCLUDED.confidence_level,
			hints_used = EXCLUDED.hints_used,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.CardID,
		nullableUUID(state.DeckID),
		state.EaseFactor,
		state.IntervalDays,
		state.Repetitions,
		state.NextReviewAt,
		nullableTime(state.LastReviewedAt),
		state.TotalReviews,
		state.SuccessfulReviews,
		state.SuccessRate,
		state.AverageResponseTime,
		nullableInt(state.LastQuality),
		state.ConfidenceLevel,
		state.HintsUsed,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert review state",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("card_id", state.CardID.String()))
		return MapError(err)
	}

	log.Debug("review state upserted",
		slog.String("user_id", state.UserID.String()),
		slog.String("card_id", state.CardID.String()),
		slog.Int("interval_days", state.IntervalDays))
	return nil
}

// ListDue implements store.ReviewStateStore.ListDue
// It retrieves all review states for the user whose next review time is at or
// before now, ordered by next review time ascending. Pass uuid.Nil as deckID
// to include every deck.
func (s *PostgresReviewStateStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	deckID uuid.UUID,
) ([]*domain.ReviewState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Due-ness is date-granular, so compare against the end of the current
	// UTC day rather than the instant.
	cutoff := domain.DateOf(now).AddDate(0, 0, 1)

	query := `
		SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND next_review_at < $2
	`
	args := []any{userID, cutoff}
	if deckID != uuid.Nil {
		query += " AND deck_id = $3"
		args = append(args, deckID)
	}
	query += " ORDER BY next_review_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var states []*domain.ReviewState
	for rows.Next() {
		state, err := scanReviewState(rows)
		if err != nil {
			log.Error("failed to scan review state row",
				slog.String("error", err.Error()))
			return nil, err
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if states == nil {
		states = []*domain.ReviewState{}
	}

	log.Debug("listed due review states",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(states)))
	return states, nil
}

// WithTx implements store.ReviewStateStore.WithTx
// It returns a new store instance bound to the provided transaction.
func (s *PostgresReviewStateStore) WithTx(tx *sql.Tx) store.ReviewStateStore {
	return &PostgresReviewStateStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReviewState(row scanner) (*domain.ReviewState, error) {
	var (
		state          domain.ReviewState
		deckID         uuid.NullUUID
		lastReviewedAt sql.NullTime
		lastQuality    sql.NullInt64
	)

	err := row.Scan(
		&state.UserID,
		&state.CardID,
		&deckID,
		&state.EaseFactor,
		&state.IntervalDays,
		&state.Repetitions,
		&state.NextReviewAt,
		&lastReviewedAt,
		&state.TotalReviews,
		&state.SuccessfulReviews,
		&state.SuccessRate,
		&state.AverageResponseTime,
		&lastQuality,
		&state.ConfidenceLevel,
		&state.HintsUsed,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deckID.Valid {
		state.DeckID = deckID.UUID
	}
	if lastReviewedAt.Valid {
		state.LastReviewedAt = lastReviewedAt.Time
	}
	if lastQuality.Valid {
		q := int(lastQuality.Int64)
		state.LastQuality = &q
	}

	return &state, nil
}

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
