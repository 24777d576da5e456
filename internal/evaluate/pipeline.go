// Package evaluate audits translated pages against their originals on a
// fixed nine-dimension rubric.
package evaluate

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/retrier"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// FallbackReason is the reason recorded on the zero-score fallback result.
const FallbackReason = "evaluator unavailable: audit failed after retries"

// Request is one page evaluation.
type Request struct {
	OriginalImage   []byte
	TranslatedImage []byte
	MimeType        string
	TargetLang      string
	SourceLang      string
	Glossary        string
	RequestID       string
}

// Config holds pipeline collaborators and policy.
type Config struct {
	Client  providers.GenerationClient
	Pricing map[string]usage.ModelPricing
	Retry   retrier.Policy
	Limiter *providers.RateLimiter
	Logger  *slog.Logger
}

// Pipeline scores translated pages. Evaluate never returns an error: a
// translation that succeeded must not be failed by its audit, so exhausted
// retries and parse failures produce a deterministic zero-score fallback.
type Pipeline struct {
	client  providers.GenerationClient
	pricing map[string]usage.ModelPricing
	retry   retrier.Policy
	limiter *providers.RateLimiter
	logger  *slog.Logger
}

// NewPipeline creates an evaluation pipeline.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Retry.RetryIf == nil {
		cfg.Retry.RetryIf = providers.IsTransient
	}
	if cfg.Limiter == nil && cfg.Client != nil {
		cfg.Limiter = providers.NewRateLimiter(cfg.Client.RequestsPerMinute())
	}
	return &Pipeline{
		client:  cfg.Client,
		pricing: cfg.Pricing,
		retry:   cfg.Retry,
		limiter: cfg.Limiter,
		logger:  cfg.Logger,
	}
}

// Evaluate audits one page and returns the result plus any usage records
// accrued. The result is always well-formed; on failure it is the
// zero-score fallback.
func (p *Pipeline) Evaluate(ctx context.Context, req *Request) (*Result, []usage.Record) {
	auditRes, err := retrier.Do(ctx, "audit", p.retry, func(ctx context.Context) (*providers.AuditResult, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := p.client.Audit(ctx, &providers.AuditRequest{
			OriginalImage:   req.OriginalImage,
			TranslatedImage: req.TranslatedImage,
			MimeType:        req.MimeType,
			Criteria:        CriteriaText(),
			Glossary:        req.Glossary,
			RequestID:       req.RequestID,
		})
		if err != nil {
			p.limiter.ObserveError(err)
		}
		return res, err
	})

	var records []usage.Record
	if auditRes != nil && (auditRes.Usage.InputTokens > 0 || auditRes.Usage.OutputTokens > 0) {
		records = append(records, usage.NewRecord(
			usage.StageEvaluation, auditRes.ModelUsed,
			auditRes.Usage.InputTokens, auditRes.Usage.OutputTokens,
			p.pricingFor(auditRes.ModelUsed)))
	}

	if err != nil {
		p.logger.Warn("audit failed, using zero-score fallback",
			"error", err,
			"request_id", req.RequestID)
		return Fallback(), records
	}

	scores := normalizeScores(auditRes.Scores)
	return &Result{
		Scores:       scores,
		AverageScore: AverageScore(scores),
		Reason:       auditRes.Reason,
		Suggestions:  auditRes.Suggestions,
		ModelUsed:    auditRes.ModelUsed,
		CreatedAt:    time.Now(),
	}, records
}

// Fallback returns the deterministic zero-score result used when the
// evaluator is unavailable.
func Fallback() *Result {
	return &Result{
		Scores:       zeroScores(),
		AverageScore: 0,
		Reason:       FallbackReason,
		Fallback:     true,
		CreatedAt:    time.Now(),
	}
}

func (p *Pipeline) pricingFor(model string) usage.ModelPricing {
	if p.pricing == nil {
		return usage.ModelPricing{}
	}
	return p.pricing[model]
}
