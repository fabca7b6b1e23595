// Package session implements the study session state machine that drives a
// user through a queue of due cards one at a time.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/domain/srs"
	"github.com/studypace/srs-api/internal/queue"
)

// Common session errors
var (
	// ErrEmptyQueue indicates a session was started with no due cards.
	ErrEmptyQueue = errors.New("cannot start a session with no due cards")

	// ErrNotPresenting indicates a submission arrived while the session was
	// not presenting a card (already completed or abandoned).
	ErrNotPresenting = errors.New("session is not presenting a card")

	// ErrTerminal indicates an operation on a completed or abandoned session.
	ErrTerminal = errors.New("session has already ended")

	// ErrSessionNotFound indicates the session ID is unknown to the manager.
	ErrSessionNotFound = errors.New("session not found")
)

// State is the lifecycle state of a study session.
type State string

// Session lifecycle states
const (
	StatePresenting State = "presenting"
	StateCompleted  State = "completed"
	StateAbandoned  State = "abandoned"
)

// Committer grades and persists a single review. The study session drives
// it once per submission; the returned state is the persisted schedule.
// Implementations must be atomic: on error, nothing may have been persisted.
type Committer interface {
	CommitReview(
		ctx context.Context,
		userID, cardID uuid.UUID,
		review srs.Review,
	) (*domain.ReviewState, error)
}

// Tally is the running score of a session.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Summary is the result of a completed session.
type Summary struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// StudySession walks a user through an ordered due queue. Sessions live
// purely in memory: abandoning one loses the tally but never the per-card
// updates already committed along the way.
//
// A session processes one submission at a time; the internal mutex
// serializes concurrent calls rather than rejecting them.
type StudySession struct {
	mu sync.Mutex

	id      uuid.UUID
	userID  uuid.UUID
	entries []queue.DueEntry
	index   int
	tally   Tally
	state   State

	committer        Committer
	successThreshold int
	startedAt        time.Time
}

// New creates a session presenting the first entry of the given due queue.
// Returns ErrEmptyQueue when there is nothing to study; callers should not
// start sessions when the due count is zero.
func New(userID uuid.UUID, entries []queue.DueEntry, committer Committer, params *srs.Params) (*StudySession, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyQueue
	}
	if committer == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("committer cannot be nil")
	}
	if params == nil {
		params = srs.NewDefaultParams()
	}

	return &StudySession{
		id:               uuid.New(),
		userID:           userID,
		entries:          entries,
		index:            0,
		state:            StatePresenting,
		committer:        committer,
		successThreshold: params.SuccessThreshold,
		startedAt:        time.Now().UTC(),
	}, nil
}

// ID returns the session's unique identifier.
func (s *StudySession) ID() uuid.UUID { return s.id }

// UserID returns the session owner.
func (s *StudySession) UserID() uuid.UUID { return s.userID }

// StartedAt returns when the session was opened.
func (s *StudySession) StartedAt() time.Time { return s.startedAt }

// State returns the session's current lifecycle state.
func (s *StudySession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the entry being presented along with its position and the
// queue length. Returns ErrNotPresenting once the session has ended.
func (s *StudySession) Current() (queue.DueEntry, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePresenting {
		return queue.DueEntry{}, 0, 0, ErrNotPresenting
	}
	return s.entries[s.index], s.index, len(s.entries), nil
}

// Tally returns the running score.
func (s *StudySession) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}

// Submit grades the currently presented card. On success the session
// advances to the next card, or completes when the graded card was the
// last. On a commit failure the session stays on the same card so the
// caller can retry or abandon; a card is never silently skipped.
func (s *StudySession) Submit(ctx context.Context, review srs.Review) (*domain.ReviewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePresenting {
		return nil, ErrNotPresenting
	}

	entry := s.entries[s.index]
	state, err := s.committer.CommitReview(ctx, s.userID, entry.State.CardID, review)
	if err != nil {
		// Session state intentionally unchanged: same card is up next.
		return nil, err
	}

	s.tally.Total++
	if review.Quality >= s.successThreshold {
		s.tally.Correct++
	}

	s.index++
	if s.index >= len(s.entries) {
		s.state = StateCompleted
	}

	return state, nil
}

// Abandon discards the in-memory session. Valid from any non-terminal
// state; already-committed reviews stay committed.
func (s *StudySession) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted || s.state == StateAbandoned {
		return ErrTerminal
	}

	s.state = StateAbandoned
	return nil
}

// Summary yields the completed session's result. It returns ErrTerminal
// unless the session has actually completed.
func (s *StudySession) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted {
		return Summary{}, ErrTerminal
	}

	summary := Summary{
		Correct: s.tally.Correct,
		Total:   s.tally.Total,
	}
	if summary.Total > 0 {
		summary.Accuracy = float64(summary.Correct) / float64(summary.Total)
	}

	return summary, nil
}
