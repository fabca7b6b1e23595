package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/api/shared"
	"github.com/studypace/srs-api/internal/platform/logger"
	"github.com/studypace/srs-api/internal/redact"
	"github.com/studypace/srs-api/internal/service/review"
)

// SessionHandler handles study session HTTP requests.
type SessionHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(reviewService review.ReviewService, log *slog.Logger) *SessionHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for SessionHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SessionHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /sessions requests.
// It builds the caller's due queue and opens a study session over it.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	// An empty body means defaults.
	req := StartSessionRequest{}
	if r.ContentLength != 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			log.Warn("invalid request format",
				slog.String("error", redact.Error(err)),
				slog.String("user_id", userID.String()))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := shared.Validate.Struct(req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
			return
		}
	}

	deckID := uuid.Nil
	if req.DeckID != "" {
		deckID, _ = uuid.Parse(req.DeckID) // format enforced by the validator
	}

	sess, err := h.reviewService.StartSession(r.Context(), userID, deckID, req.Limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	log.Info("session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sess.ID().String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(sess, time.Now().UTC()))
}

// GetSession handles GET /sessions/{id} requests.
// It returns the session's state and, while presenting, the current card.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	sess, err := h.reviewService.Session(r.Context(), sessionID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess, time.Now().UTC()))
}

// SubmitAnswer handles POST /sessions/{id}/answers requests.
// It grades the currently presented card and advances the session. On a
// persistence failure the session stays on the same card so the client can
// retry.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	sess, err := h.reviewService.Session(r.Context(), sessionID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session")
		return
	}

	state, err := sess.Submit(r.Context(), req.toReview())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	tally := sess.Tally()
	resp := SessionAnswerResponse{
		Schedule:            scheduleToResponse(state),
		PerformanceFeedback: performanceFeedback(*req.Quality),
		State:               string(sess.State()),
		Tally:               TallyResponse{Correct: tally.Correct, Total: tally.Total},
	}

	if _, position, total, currErr := sess.Current(); currErr == nil {
		resp.Position = position
		resp.Total = total
	}

	if summary, sumErr := sess.Summary(); sumErr == nil {
		resp.Summary = &SessionSummaryResponse{
			Correct:  summary.Correct,
			Total:    summary.Total,
			Accuracy: summary.Accuracy,
		}
		h.reviewService.EndSession(r.Context(), sessionID)
		log.Info("session completed",
			slog.String("user_id", userID.String()),
			slog.String("session_id", sessionID.String()),
			slog.Int("correct", summary.Correct),
			slog.Int("total", summary.Total))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// AbandonSession handles DELETE /sessions/{id} requests.
// Already-graded cards stay committed; only the in-memory session goes away.
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	sess, err := h.reviewService.Session(r.Context(), sessionID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session")
		return
	}

	if err := sess.Abandon(); err != nil {
		HandleAPIError(w, r, err, "Failed to abandon session")
		return
	}
	h.reviewService.EndSession(r.Context(), sessionID)

	log.Info("session abandoned",
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()))
	w.WriteHeader(http.StatusNoContent)
}
