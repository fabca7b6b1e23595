package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/adaptive"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/domain/srs"
	"github.com/studypace/srs-api/internal/platform/logger"
	"github.com/studypace/srs-api/internal/queue"
	"github.com/studypace/srs-api/internal/session"
	"github.com/studypace/srs-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)
var _ session.Committer = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db        *sql.DB
	states    store.ReviewStateStore
	scheduler srs.Service
	advisor   adaptive.Advisor
	sessions  *session.Manager
	dueLimit  int
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a new ReviewService implementation.
// A nil db runs storage operations without an explicit transaction, for
// stores that are inherently atomic. A nil advisor degrades to the local
// deterministic fallback.
func NewReviewService(
	db *sql.DB,
	states store.ReviewStateStore,
	scheduler srs.Service,
	advisor adaptive.Advisor,
	params *srs.Params,
	dueLimit int,
	log *slog.Logger,
) ReviewService {
	if states == nil {
		// ALLOW-PANIC: Constructor enforces required dependency
		panic("states cannot be nil")
	}
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforces required dependency
		panic("scheduler cannot be nil")
	}

	if advisor == nil {
		advisor = adaptive.FallbackAdvisor{}
	}
	if log == nil {
		log = slog.Default()
	}
	if dueLimit <= 0 {
		dueLimit = 20
	}

	s := &reviewServiceImpl{
		db:        db,
		states:    states,
		scheduler: scheduler,
		advisor:   advisor,
		dueLimit:  dueLimit,
		logger:    log.With(slog.String("component", "review_service")),
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.sessions = session.NewManager(s, params, log)
	s.sessions.StartSweeper(sessionSweepInterval, sessionMaxAge)
	return s
}

// Sessions left open by clients that walked away are abandoned after
// sessionMaxAge; the sweep runs every sessionSweepInterval.
const (
	sessionSweepInterval = 5 * time.Minute
	sessionMaxAge        = 2 * time.Hour
)

// Close implements ReviewService.Close.
func (s *reviewServiceImpl) Close() {
	s.sessions.StopSweeper()
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, cardID, deckID uuid.UUID,
	rev srs.Review,
) (*SubmitResult, error) {
	return s.submit(ctx, userID, cardID, deckID, rev)
}

// CommitReview implements session.Committer. It is the same grading path as
// SubmitReview, invoked by study sessions one card at a time.
func (s *reviewServiceImpl) CommitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rev srs.Review,
) (*domain.ReviewState, error) {
	result, err := s.submit(ctx, userID, cardID, uuid.Nil, rev)
	if err != nil {
		return nil, err
	}
	return result.State, nil
}

func (s *reviewServiceImpl) submit(
	ctx context.Context,
	userID, cardID, deckID uuid.UUID,
	rev srs.Review,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateReview(rev); err != nil {
		log.Warn("review rejected",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}

	now := s.now()

	// Advice is consulted outside the write transaction: the external call
	// may take seconds and the adjustment is advisory, so it must never hold
	// a row lock.
	advice := s.adviceFor(ctx, userID, cardID, rev)
	adjustment := srs.Adjustment{
		IntervalMultiplier: advice.IntervalAdjustment,
		EaseMultiplier:     advice.DifficultyMultiplier,
	}

	var (
		next  *domain.ReviewState
		trend srs.Trend
	)
	err := s.inTransaction(ctx, func(states store.ReviewStateStore) error {
		state, err := states.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			if !store.IsNotFoundError(err) {
				return fmt.Errorf("failed to load review state: %w", err)
			}
			// First review of this card: start from defaults.
			state, err = domain.NewReviewState(userID, cardID, now)
			if err != nil {
				return fmt.Errorf("failed to create review state: %w", err)
			}
			state.DeckID = deckID
		}

		next, trend, err = s.scheduler.ApplyReview(state, rev, adjustment, now)
		if err != nil {
			return fmt.Errorf("failed to apply review: %w", err)
		}

		if err := states.Upsert(ctx, next); err != nil {
			return fmt.Errorf("failed to persist review state: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitReviewError("could not grade and persist review", err)
	}

	log.Info("review graded",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", rev.Quality),
		slog.Float64("ease_factor", next.EaseFactor),
		slog.Int("interval_days", next.IntervalDays),
		slog.Time("next_review_at", next.NextReviewAt),
		slog.Bool("advice_degraded", advice.Degraded))

	return &SubmitResult{State: next, Trend: trend, Advice: advice}, nil
}

// GetDueCards implements ReviewService.GetDueCards.
func (s *reviewServiceImpl) GetDueCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	limit int,
) (queue.BuildResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = s.dueLimit
	}
	now := s.now()

	states, err := s.states.ListDue(ctx, userID, now, deckID)
	if err != nil {
		log.Error("failed to list due review states",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return queue.BuildResult{}, NewGetDueCardsError("could not load due cards", err)
	}

	result := queue.Build(states, now, limit)

	log.Debug("built due queue",
		slog.String("user_id", userID.String()),
		slog.Int("total_due", result.TotalDue),
		slog.Int("high_priority", result.HighPriorityCount),
		slog.Int("returned", len(result.Entries)))
	return result, nil
}

// StartSession implements ReviewService.StartSession.
func (s *reviewServiceImpl) StartSession(
	ctx context.Context,
	userID, deckID uuid.UUID,
	limit int,
) (*session.StudySession, error) {
	result, err := s.GetDueCards(ctx, userID, deckID, limit)
	if err != nil {
		return nil, NewStartSessionError("could not build session queue", err)
	}

	sess, err := s.sessions.Start(userID, result.Entries)
	if err != nil {
		if errors.Is(err, session.ErrEmptyQueue) {
			return nil, err
		}
		return nil, NewStartSessionError("could not start session", err)
	}
	return sess, nil
}

// Session implements ReviewService.Session.
func (s *reviewServiceImpl) Session(
	_ context.Context,
	id, userID uuid.UUID,
) (*session.StudySession, error) {
	return s.sessions.Get(id, userID)
}

// EndSession implements ReviewService.EndSession.
func (s *reviewServiceImpl) EndSession(_ context.Context, id uuid.UUID) {
	s.sessions.Evict(id)
}

// adviceFor asks the advisor for scheduling adjustments for one review.
// Advisor failures never fail the submission: the deterministic fallback
// takes over.
func (s *reviewServiceImpl) adviceFor(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rev srs.Review,
) adaptive.AdviceResponse {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req := adaptive.AdviceRequest{
		Quality:        rev.Quality,
		ResponseTimeMS: rev.ResponseTimeMS,
		Confidence:     rev.ConfidenceLevel,
	}

	// Prior quality gives the advisor trend context. Missing state is fine,
	// the card simply has no history yet.
	if prior, err := s.states.Get(ctx, userID, cardID); err == nil && prior.LastQuality != nil {
		req.RecentHistory = []int{*prior.LastQuality}
	}

	advice, err := s.advisor.Advise(ctx, req)
	if err != nil {
		log.Warn("advisor unavailable, using fallback",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return adaptive.Fallback(req)
	}
	return advice
}

// inTransaction runs fn against a transactional view of the state store.
// Without a database handle the base store is used directly.
func (s *reviewServiceImpl) inTransaction(
	ctx context.Context,
	fn func(states store.ReviewStateStore) error,
) error {
	if s.db == nil {
		return fn(s.states)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(s.states.WithTx(tx))
	})
}

func validateReview(rev srs.Review) error {
	if rev.Quality < 0 || rev.Quality > 5 {
		return domain.ErrInvalidQuality
	}
	if rev.ResponseTimeMS < 0 {
		return domain.ErrInvalidResponseTime
	}
	if rev.ConfidenceLevel < 0 || rev.ConfidenceLevel > 1 {
		return domain.ErrInvalidConfidence
	}
	if rev.HintsUsed < 0 {
		return domain.ErrInvalidHints
	}
	return nil
}
