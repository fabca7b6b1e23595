package adaptive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studypace/srs-api/internal/config"
	"google.golang.org/genai"
)

// Gemini advisor errors
var (
	// ErrInvalidConfig indicates the advisor configuration is unusable.
	ErrInvalidConfig = errors.New("invalid advisor configuration")

	// ErrInvalidResponse indicates the service answered with something
	// that does not parse into usable advice.
	ErrInvalidResponse = errors.New("invalid advice response")
)

// advicePrompt frames a single review for the model. The response schema
// forces JSON output matching AdviceResponse.
const advicePrompt = `You are a spaced-repetition tutor calibrating review schedules.
A flashcard review just completed:
%s

Return JSON with fields difficulty_multiplier (0.5-1.5), interval_adjustment (0.5-2.0),
confidence_factor (0-1) and retention_prediction (0-1). Values of 1.0 leave the
schedule unchanged; shrink interval_adjustment when the recall looked fragile and
stretch it when recall was fast and confident.`

// GeminiAdvisor implements Advisor using Google's Gemini API.
type GeminiAdvisor struct {
	logger  *slog.Logger
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiAdvisor creates an advisor backed by the Gemini API.
// Returns ErrInvalidConfig when the API key or model name is missing.
func NewGeminiAdvisor(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.AdvisorConfig,
) (*GeminiAdvisor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &GeminiAdvisor{
		logger:  logger.With(slog.String("component", "gemini_advisor")),
		client:  client,
		model:   cfg.ModelName,
		timeout: timeout,
	}, nil
}

// Advise implements Advisor by asking the model for schedule multipliers.
// The call is bounded by the configured timeout; any failure is returned to
// the caller, which is expected to fall back locally.
func (g *GeminiAdvisor) Advise(ctx context.Context, req AdviceRequest) (AdviceResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return AdviceResponse{}, fmt.Errorf("failed to encode advice request: %w", err)
	}

	prompt := fmt.Sprintf(advicePrompt, payload)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		g.logger.Warn("gemini advice call failed", slog.String("error", err.Error()))
		return AdviceResponse{}, fmt.Errorf("gemini advice call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return AdviceResponse{}, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var advice AdviceResponse
	if err := json.Unmarshal([]byte(text), &advice); err != nil {
		return AdviceResponse{}, fmt.Errorf("%w: failed to parse JSON: %v", ErrInvalidResponse, err)
	}

	if err := validateAdvice(advice); err != nil {
		return AdviceResponse{}, err
	}

	g.logger.Debug("gemini advice received",
		slog.Float64("difficulty_multiplier", advice.DifficultyMultiplier),
		slog.Float64("interval_adjustment", advice.IntervalAdjustment),
		slog.Float64("retention_prediction", advice.RetentionPrediction))

	return advice, nil
}

// validateAdvice rejects advice outside sane multiplier bounds. A wildly
// out-of-range multiplier from the service must never reach the scheduler;
// rejecting it here routes the review through the deterministic fallback.
func validateAdvice(a AdviceResponse) error {
	if a.DifficultyMultiplier < 0.5 || a.DifficultyMultiplier > 1.5 {
		return fmt.Errorf("%w: difficulty multiplier %v out of range",
			ErrInvalidResponse, a.DifficultyMultiplier)
	}
	if a.IntervalAdjustment < 0.5 || a.IntervalAdjustment > 2.0 {
		return fmt.Errorf("%w: interval adjustment %v out of range",
			ErrInvalidResponse, a.IntervalAdjustment)
	}
	if a.ConfidenceFactor < 0 || a.ConfidenceFactor > 1 {
		return fmt.Errorf("%w: confidence factor %v out of range",
			ErrInvalidResponse, a.ConfidenceFactor)
	}
	if a.RetentionPrediction < 0 || a.RetentionPrediction > 1 {
		return fmt.Errorf("%w: retention prediction %v out of range",
			ErrInvalidResponse, a.RetentionPrediction)
	}
	return nil
}
