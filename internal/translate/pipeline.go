// Package translate runs the page translation pipeline: aspect snap,
// optional structured extraction, instruction composition, and redraw.
package translate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/retrier"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// Request is one page translation attempt.
type Request struct {
	Image      []byte
	MimeType   string
	TargetLang string
	SourceLang string // defaults to auto-detect
	Mode       Mode
	Glossary   string
	Feedback   string // refinement feedback from a prior evaluation or user note
	RequestID  string
}

// Result is a successful translation with its usage trail.
type Result struct {
	Image        []byte
	MimeType     string
	Records      []usage.Record
	Instructions string
	Segments     []providers.Segment // non-empty only when two-step extraction succeeded
	AspectRatio  string
	Degraded     bool // two-step fell back to direct instructions
}

// StageFailure is a typed pipeline failure. Error() returns the underlying
// provider message verbatim so it can be shown to the user unchanged.
type StageFailure struct {
	Stage usage.Stage
	Err   error
}

func (e *StageFailure) Error() string {
	return e.Err.Error()
}

func (e *StageFailure) Unwrap() error {
	return e.Err
}

// Config holds pipeline collaborators and policy.
type Config struct {
	Client  providers.GenerationClient
	Pricing map[string]usage.ModelPricing // keyed by model identifier
	Retry   retrier.Policy
	Limiter *providers.RateLimiter
	Logger  *slog.Logger
}

// Pipeline translates single pages against a generation client.
type Pipeline struct {
	client  providers.GenerationClient
	pricing map[string]usage.ModelPricing
	retry   retrier.Policy
	limiter *providers.RateLimiter
	logger  *slog.Logger
}

// NewPipeline creates a translation pipeline. The retry policy defaults to
// the standard budget with transient-only classification.
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

// Limiter returns the pipeline's rate limiter for status reporting.
func (p *Pipeline) Limiter() *providers.RateLimiter {
	return p.limiter
}

// Translate runs one page through the pipeline. Extraction failures degrade
// to direct-mode instructions; redraw failures surface as a StageFailure for
// the page controller to record.
func (p *Pipeline) Translate(ctx context.Context, req *Request) (*Result, error) {
	if req.TargetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("page image is required")
	}

	aspect := DetectAspectRatio(req.Image)

	result := &Result{AspectRatio: aspect}
	params := InstructionParams{
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
		Glossary:   req.Glossary,
		Feedback:   req.Feedback,
	}
	mode := req.Mode

	if mode == ModeTwoStep {
		extractRes, err := retrier.Do(ctx, "extract", p.retry, func(ctx context.Context) (*providers.ExtractResult, error) {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			res, err := p.client.Extract(ctx, &providers.ExtractRequest{
				Image:      req.Image,
				MimeType:   req.MimeType,
				SourceLang: req.SourceLang,
				TargetLang: req.TargetLang,
				Glossary:   req.Glossary,
				Feedback:   req.Feedback,
				RequestID:  req.RequestID,
			})
			if err != nil {
				p.limiter.ObserveError(err)
			}
			return res, err
		})

		if extractRes != nil {
			result.Records = append(result.Records, usage.NewRecord(
				usage.StageExtraction, extractRes.ModelUsed,
				extractRes.Usage.InputTokens, extractRes.Usage.OutputTokens,
				p.pricingFor(extractRes.ModelUsed)))
		}

		if extractionUsable(extractRes, err) {
			params.Segments = extractRes.Segments
			result.Segments = extractRes.Segments
		} else {
			result.Degraded = true
			mode = ModeDirect
			p.logger.Warn("extraction unusable, degrading to direct mode",
				"error", err,
				"request_id", req.RequestID)
		}
	}

	instructions := BuildInstructions(mode, params)
	result.Instructions = instructions

	redrawRes, err := retrier.Do(ctx, "redraw", p.retry, func(ctx context.Context) (*providers.RedrawResult, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		res, err := p.client.Redraw(ctx, &providers.RedrawRequest{
			Image:        req.Image,
			MimeType:     req.MimeType,
			Instructions: instructions,
			AspectRatio:  aspect,
			RequestID:    req.RequestID,
		})
		if err != nil {
			p.limiter.ObserveError(err)
		}
		return res, err
	})
	if err != nil {
		return nil, &StageFailure{Stage: usage.StageTranslation, Err: err}
	}

	result.Image = redrawRes.Image
	result.MimeType = redrawRes.MimeType
	result.Records = append(result.Records, usage.NewRecord(
		usage.StageTranslation, redrawRes.ModelUsed,
		redrawRes.Usage.InputTokens, redrawRes.Usage.OutputTokens,
		p.pricingFor(redrawRes.ModelUsed)))

	return result, nil
}

// extractionUsable is the single predicate deciding whether two-step mode
// proceeds with the extracted mapping: false on error, nil result, or an
// empty segment list.
func extractionUsable(res *providers.ExtractResult, err error) bool {
	return err == nil && res != nil && len(res.Segments) > 0
}

func (p *Pipeline) pricingFor(model string) usage.ModelPricing {
	if p.pricing == nil {
		return usage.ModelPricing{}
	}
	return p.pricing[model]
}
