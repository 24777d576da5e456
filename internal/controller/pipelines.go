package controller

import (
	"log/slog"

	"github.com/pagelingo/pagelingo/internal/evaluate"
	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/retrier"
	"github.com/pagelingo/pagelingo/internal/translate"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// NewPipelines builds a translation and an evaluation pipeline against the
// same client. Both share one rate limiter so batch translation plus
// detached evaluations stay within the provider's request budget.
func NewPipelines(client providers.GenerationClient, pricing map[string]usage.ModelPricing, policy retrier.Policy, logger *slog.Logger) (*translate.Pipeline, *evaluate.Pipeline) {
	limiter := providers.NewRateLimiter(client.RequestsPerMinute())

	translator := translate.NewPipeline(translate.Config{
		Client:  client,
		Pricing: pricing,
		Retry:   policy,
		Limiter: limiter,
		Logger:  logger,
	})
	evaluator := evaluate.NewPipeline(evaluate.Config{
		Client:  client,
		Pricing: pricing,
		Retry:   policy,
		Limiter: limiter,
		Logger:  logger,
	})
	return translator, evaluator
}
