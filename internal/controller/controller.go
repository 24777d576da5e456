// Package controller drives the page lifecycle: sequential batch
// translation with detached per-page evaluation.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pagelingo/pagelingo/internal/evaluate"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/translate"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// ImageStore abstracts page image IO so the controller never touches the
// filesystem directly.
type ImageStore interface {
	Read(path string) ([]byte, error)
	WriteTranslated(pageNum int, image []byte) (string, error)
}

// Settings are the translation parameters shared by a batch.
type Settings struct {
	TargetLang string
	SourceLang string
	Mode       translate.Mode
	Glossary   string
}

// Config holds controller collaborators.
type Config struct {
	Store      *pages.Store
	Translator *translate.Pipeline
	Evaluator  *evaluate.Pipeline
	Images     ImageStore
	Logger     *slog.Logger
}

// Controller owns page state transitions. Translation of a batch is
// strictly sequential; each page's evaluation runs detached and merges its
// result back through a generation-guarded patch.
type Controller struct {
	store  *pages.Store
	images ImageStore
	logger *slog.Logger

	// pipelines are swappable so a config reload can rebind the provider
	// without losing page state
	mu         sync.RWMutex
	translator *translate.Pipeline
	evaluator  *evaluate.Pipeline

	evalWG sync.WaitGroup
}

// New creates a controller.
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		store:      cfg.Store,
		translator: cfg.Translator,
		evaluator:  cfg.Evaluator,
		images:     cfg.Images,
		logger:     cfg.Logger,
	}
}

// Store returns the shared page collection.
func (c *Controller) Store() *pages.Store {
	return c.store
}

// SetPipelines swaps the translation and evaluation pipelines. Page state
// is untouched; in-flight work keeps the pipelines it started with.
func (c *Controller) SetPipelines(translator *translate.Pipeline, evaluator *evaluate.Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.translator = translator
	c.evaluator = evaluator
}

func (c *Controller) pipelines() (*translate.Pipeline, *evaluate.Pipeline) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.translator, c.evaluator
}

// RateLimit reports the bound provider's limiter state, or nil when no
// provider is bound. Both pipelines share one limiter.
func (c *Controller) RateLimit() *providers.RateLimiterStatus {
	t, _ := c.pipelines()
	if t == nil {
		return nil
	}
	status := t.Limiter().Status()
	return &status
}

// StartBatch translates the given pages in order, one at a time. An empty
// page list means all pages. A page's failure does not stop the batch.
// The call blocks until every translation has finished; evaluations may
// still be in flight when it returns.
func (c *Controller) StartBatch(ctx context.Context, pageNums []int, settings Settings) error {
	if settings.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if t, _ := c.pipelines(); t == nil {
		return fmt.Errorf("no generation provider bound")
	}
	if len(pageNums) == 0 {
		pageNums = c.store.Numbers()
	}

	for _, num := range pageNums {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := c.store.Get(num); !ok {
			c.logger.Warn("skipping unknown page", "page", num)
			continue
		}
		c.translatePage(ctx, num, settings, "")
	}
	return nil
}

// RetryPage re-translates one page, carrying forward the prior evaluation's
// suggestions plus any user feedback as refinement input.
func (c *Controller) RetryPage(ctx context.Context, pageNum int, userFeedback string, settings Settings) error {
	if settings.TargetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if t, _ := c.pipelines(); t == nil {
		return fmt.Errorf("no generation provider bound")
	}
	page, ok := c.store.Get(pageNum)
	if !ok {
		return fmt.Errorf("page %d not found", pageNum)
	}

	var parts []string
	if page.Evaluation != nil && strings.TrimSpace(page.Evaluation.Suggestions) != "" {
		parts = append(parts, page.Evaluation.Suggestions)
	}
	if strings.TrimSpace(userFeedback) != "" {
		parts = append(parts, userFeedback)
	}

	c.translatePage(ctx, pageNum, settings, strings.Join(parts, "\n"))
	return nil
}

// RetryEvaluation re-runs the detached audit for a DONE page.
func (c *Controller) RetryEvaluation(ctx context.Context, pageNum int, settings Settings) error {
	if _, e := c.pipelines(); e == nil {
		return fmt.Errorf("no generation provider bound")
	}
	page, ok := c.store.Get(pageNum)
	if !ok {
		return fmt.Errorf("page %d not found", pageNum)
	}
	if page.Status != pages.StatusDone || page.TranslatedPath == "" {
		return fmt.Errorf("page %d has no completed translation to evaluate", pageNum)
	}

	generation := page.Generation
	c.store.Patch(pageNum, func(p *pages.Page) {
		p.IsEvaluating = true
	})
	c.spawnEvaluation(ctx, pageNum, generation, page.SourcePath, page.TranslatedPath, settings)
	return nil
}

// WaitForEvaluations blocks until all in-flight evaluations have merged.
// Used by tests and graceful shutdown.
func (c *Controller) WaitForEvaluations() {
	c.evalWG.Wait()
}

// translatePage runs one page through the pipeline and records the outcome.
func (c *Controller) translatePage(ctx context.Context, pageNum int, settings Settings, feedback string) {
	var generation int
	var sourcePath string
	applied := c.store.Patch(pageNum, func(p *pages.Page) {
		p.Status = pages.StatusTranslating
		p.Error = ""
		p.Generation++
		generation = p.Generation
		sourcePath = p.SourcePath
	})
	if !applied {
		return
	}

	image, err := c.images.Read(sourcePath)
	if err != nil {
		c.markError(pageNum, fmt.Sprintf("failed to read source image: %v", err))
		return
	}

	translator, _ := c.pipelines()
	res, err := translator.Translate(ctx, &translate.Request{
		Image:      image,
		MimeType:   "image/png",
		TargetLang: settings.TargetLang,
		SourceLang: settings.SourceLang,
		Mode:       settings.Mode,
		Glossary:   settings.Glossary,
		Feedback:   feedback,
		RequestID:  uuid.New().String(),
	})
	if err != nil {
		c.logger.Error("page translation failed",
			"page", pageNum,
			"error", err)
		c.markError(pageNum, err.Error())
		return
	}

	translatedPath, err := c.images.WriteTranslated(pageNum, res.Image)
	if err != nil {
		c.markError(pageNum, fmt.Sprintf("failed to store translated image: %v", err))
		return
	}

	c.store.Patch(pageNum, func(p *pages.Page) {
		p.Status = pages.StatusDone
		p.TranslatedPath = translatedPath
		p.Segments = res.Segments
		p.Instructions = res.Instructions
		p.Degraded = res.Degraded
		p.IsEvaluating = true
		p.Ledger.AppendAll(res.Records)
	})

	c.logger.Info("page translated",
		"page", pageNum,
		"degraded", res.Degraded,
		"segments", len(res.Segments))

	c.spawnEvaluation(ctx, pageNum, generation, sourcePath, translatedPath, settings)
}

// spawnEvaluation fires the detached audit. The merge is keyed by page
// number and generation, so results for pages that were reset or retried
// in the meantime are dropped.
func (c *Controller) spawnEvaluation(ctx context.Context, pageNum, generation int, sourcePath, translatedPath string, settings Settings) {
	// Outlive the batch call but still carry its values.
	evalCtx := context.WithoutCancel(ctx)

	c.evalWG.Add(1)
	go func() {
		defer c.evalWG.Done()

		original, err := c.images.Read(sourcePath)
		if err != nil {
			c.mergeEvaluation(pageNum, generation, evaluate.Fallback(), nil)
			return
		}
		translated, err := c.images.Read(translatedPath)
		if err != nil {
			c.mergeEvaluation(pageNum, generation, evaluate.Fallback(), nil)
			return
		}

		_, evaluator := c.pipelines()
		result, records := evaluator.Evaluate(evalCtx, &evaluate.Request{
			OriginalImage:   original,
			TranslatedImage: translated,
			TargetLang:      settings.TargetLang,
			SourceLang:      settings.SourceLang,
			Glossary:        settings.Glossary,
			RequestID:       uuid.New().String(),
		})
		c.mergeEvaluation(pageNum, generation, result, records)
	}()
}

func (c *Controller) mergeEvaluation(pageNum, generation int, result *evaluate.Result, records []usage.Record) {
	merged := c.store.PatchIfGeneration(pageNum, generation, func(p *pages.Page) {
		p.Evaluation = result
		p.IsEvaluating = false
		p.Ledger.AppendAll(records)
	})
	if !merged {
		c.logger.Info("dropping stale evaluation result", "page", pageNum)
	}
}

func (c *Controller) markError(pageNum int, msg string) {
	c.store.Patch(pageNum, func(p *pages.Page) {
		p.Status = pages.StatusError
		p.Error = msg
	})
}
