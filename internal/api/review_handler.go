// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/studypace/srs-api/internal/api/shared"
	"github.com/studypace/srs-api/internal/platform/logger"
	"github.com/studypace/srs-api/internal/redact"
	"github.com/studypace/srs-api/internal/service/review"
)

// ReviewHandler handles review submission and due-queue HTTP requests.
type ReviewHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService review.ReviewService, log *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReviewHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// SubmitReview handles POST /cards/{id}/review requests.
// It grades one review for the card and returns the updated schedule.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, cardID, ok := requireUserAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	deckID := uuid.Nil
	if req.DeckID != "" {
		deckID, _ = uuid.Parse(req.DeckID) // format enforced by the validator
	}

	result, err := h.reviewService.SubmitReview(r.Context(), userID, cardID, deckID, req.toReview())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("interval_days", result.State.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusOK,
		submitResultToResponse(result.State, result.Trend, result.Advice, *req.Quality))
}

// GetDueCards handles GET /cards/due requests.
// Query parameters: limit (optional, default from configuration) and deck
// (optional deck UUID filter).
func (h *ReviewHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	deckID := uuid.Nil
	if raw := r.URL.Query().Get("deck"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck parameter")
			return
		}
		deckID = parsed
	}

	result, err := h.reviewService.GetDueCards(r.Context(), userID, deckID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due cards")
		return
	}

	now := time.Now().UTC()
	cards := make([]DueCardEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		cards = append(cards, dueEntryToResponse(entry, now))
	}

	log.Debug("due cards retrieved",
		slog.String("user_id", userID.String()),
		slog.Int("total_due", result.TotalDue),
		slog.Int("returned", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, DueCardsResponse{
		Cards:             cards,
		TotalDue:          result.TotalDue,
		HighPriorityCount: result.HighPriorityCount,
	})
}
