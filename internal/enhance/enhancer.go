// Package enhance wraps the LLM clients into a best-effort prompt refinement
// step. Refinement runs before generation when enabled; any failure falls back
// to the raw composed prompt rather than blocking the collage.
package enhance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Chrojoh/dog-collage-generator/internal/llm"
	"github.com/Chrojoh/dog-collage-generator/internal/model"
	"github.com/Chrojoh/dog-collage-generator/internal/storage"
)

// Enhancer tries LLM providers in configured order — first success wins,
// failures fall through. Rate limited to keep API costs bounded.
type Enhancer struct {
	clients []llm.Client // Ordered list: first is primary, rest are fallbacks
	limiter *rate.Limiter
	calls   storage.CallRepository
	logger  *zap.Logger
}

// New creates an enhancer with an ordered list of LLM clients.
// The order is configurable: enhancer.provider_order: ["anthropic", "openai"]
// — swapping provider priority is a config change, not a code change.
func New(clients []llm.Client, ratePerMinute int, calls storage.CallRepository, logger *zap.Logger) *Enhancer {
	if ratePerMinute <= 0 {
		ratePerMinute = 10
	}
	rps := rate.Every(time.Minute / time.Duration(ratePerMinute))

	return &Enhancer{
		clients: clients,
		limiter: rate.NewLimiter(rps, 1), // burst of 1 — strict rate limiting
		calls:   calls,
		logger:  logger,
	}
}

// Refine returns the refined prompt, or an error after all providers failed.
// Callers treat the error as advisory and keep the original prompt.
func (e *Enhancer) Refine(ctx context.Context, prompt string) (string, error) {
	if len(e.clients) == 0 {
		return "", fmt.Errorf("no LLM providers configured")
	}

	var lastErr error
	for i, client := range e.clients {
		// Blocks until a token is available or the context is cancelled.
		if err := e.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		start := time.Now()
		refined, err := client.RefinePrompt(ctx, prompt)
		e.recordCall(ctx, client, prompt, err, time.Since(start).Milliseconds())

		if err == nil {
			return refined, nil
		}
		lastErr = err

		if i < len(e.clients)-1 {
			e.logger.Warn("enhancer provider failed, trying next",
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("all enhancer providers failed: %w", lastErr)
}

func (e *Enhancer) recordCall(ctx context.Context, client llm.Client, prompt string, callErr error, durationMs int64) {
	call := &model.ProviderCall{
		Kind:        model.CallEnhance,
		Provider:    client.ProviderName(),
		Model:       client.ModelName(),
		PromptChars: len(prompt),
		Success:     callErr == nil,
	}
	call.DurationMs = &durationMs
	if callErr != nil {
		msg := callErr.Error()
		call.ErrorMessage = &msg
	}

	if err := e.calls.Create(ctx, call); err != nil {
		e.logger.Error("recording enhancer call", zap.Error(err))
	}
}
