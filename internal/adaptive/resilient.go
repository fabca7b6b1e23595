package adaptive

import (
	"context"
	"log/slog"
)

// ResilientAdvisor wraps another Advisor with the circuit breaker and the
// deterministic local fallback. It never returns an error: a failing or
// circuit-broken service degrades invisibly to the fallback, which is the
// behavior the rest of the scheduler relies on.
type ResilientAdvisor struct {
	inner   Advisor
	breaker *Breaker
	logger  *slog.Logger
}

// Statically ensure both advisors satisfy the interface.
var (
	_ Advisor = (*ResilientAdvisor)(nil)
	_ Advisor = (*GeminiAdvisor)(nil)
	_ Advisor = (*FallbackAdvisor)(nil)
)

// NewResilientAdvisor wraps inner with breaker protection. A nil inner
// advisor means the integration is disabled; every call uses the fallback.
func NewResilientAdvisor(inner Advisor, breaker *Breaker, logger *slog.Logger) *ResilientAdvisor {
	if logger == nil {
		logger = slog.Default()
	}
	if breaker == nil {
		breaker = NewBreaker(3, 0, nil)
	}

	return &ResilientAdvisor{
		inner:   inner,
		breaker: breaker,
		logger:  logger.With(slog.String("component", "adaptive_advisor")),
	}
}

// Advise implements Advisor. The returned error is always nil.
func (r *ResilientAdvisor) Advise(ctx context.Context, req AdviceRequest) (AdviceResponse, error) {
	if r.inner == nil {
		return Fallback(req), nil
	}

	if !r.breaker.Allow() {
		r.logger.Debug("advice circuit open, using local fallback")
		return Fallback(req), nil
	}

	advice, err := r.inner.Advise(ctx, req)
	if err != nil {
		r.breaker.RecordFailure()
		r.logger.Warn("advice call failed, using local fallback",
			slog.String("error", err.Error()),
			slog.String("breaker_state", string(r.breaker.State())))
		return Fallback(req), nil
	}

	r.breaker.RecordSuccess()
	return advice, nil
}

// FallbackAdvisor always answers with the deterministic local fallback.
// Used when no external reasoning service is configured.
type FallbackAdvisor struct{}

// Advise implements Advisor.
func (FallbackAdvisor) Advise(_ context.Context, req AdviceRequest) (AdviceResponse, error) {
	return Fallback(req), nil
}
