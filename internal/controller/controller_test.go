package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pagelingo/pagelingo/internal/evaluate"
	"github.com/pagelingo/pagelingo/internal/pages"
	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/retrier"
	"github.com/pagelingo/pagelingo/internal/translate"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// memImages is an in-memory ImageStore.
type memImages struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemImages() *memImages {
	return &memImages{files: map[string][]byte{}}
}

func (m *memImages) put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
}

func (m *memImages) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("no such image: %s", path)
	}
	return data, nil
}

func (m *memImages) WriteTranslated(pageNum int, image []byte) (string, error) {
	path := fmt.Sprintf("translated/page_%04d.png", pageNum)
	m.put(path, image)
	return path, nil
}

type fixture struct {
	ctrl       *Controller
	store      *pages.Store
	images     *memImages
	translator *providers.MockClient
	evaluator  *providers.MockClient
}

func newFixture(t *testing.T, pageCount int) *fixture {
	t.Helper()

	translatorMock := providers.NewMockClient()
	evaluatorMock := providers.NewMockClient()
	evaluatorMock.AuditScores = map[string]float64{"accuracy": 9, "fluency": 9}

	policy := retrier.Policy{Attempts: 3, Delay: time.Millisecond, RetryIf: providers.IsTransient}
	pricing := map[string]usage.ModelPricing{"mock-model": {InputPerMillion: 1, OutputPerMillion: 4}}

	store := pages.NewStore()
	images := newMemImages()
	for i := 1; i <= pageCount; i++ {
		src := fmt.Sprintf("source/page_%04d.png", i)
		images.put(src, []byte("source-image"))
		store.Put(pages.NewPage(i, src))
	}

	ctrl := New(Config{
		Store:      store,
		Translator: translate.NewPipeline(translate.Config{Client: translatorMock, Pricing: pricing, Retry: policy}),
		Evaluator:  evaluate.NewPipeline(evaluate.Config{Client: evaluatorMock, Pricing: pricing, Retry: policy}),
		Images:     images,
	})
	return &fixture{ctrl: ctrl, store: store, images: images, translator: translatorMock, evaluator: evaluatorMock}
}

func spanish() Settings {
	return Settings{TargetLang: "Spanish", Mode: translate.ModeDirect}
}

func TestStartBatchDirectSuccess(t *testing.T) {
	f := newFixture(t, 1)

	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ := f.store.Get(1)
	if page.Status != pages.StatusDone {
		t.Fatalf("status = %v, want DONE", page.Status)
	}
	if page.TranslatedPath == "" {
		t.Error("translated path not recorded")
	}
	if len(page.Ledger.Extraction) != 0 {
		t.Errorf("extraction records = %d, want 0 in direct mode", len(page.Ledger.Extraction))
	}
	if len(page.Ledger.Translation) != 1 {
		t.Errorf("translation records = %d, want 1", len(page.Ledger.Translation))
	}
	if page.IsEvaluating {
		t.Error("isEvaluating should clear after merge")
	}
	if page.Evaluation == nil {
		t.Error("evaluation missing after merge")
	}
}

func TestStartBatchSequential(t *testing.T) {
	f := newFixture(t, 3)

	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	for _, p := range f.store.List() {
		if p.Status != pages.StatusDone {
			t.Errorf("page %d status = %v", p.Number, p.Status)
		}
	}
	if f.translator.RedrawCalls() != 3 {
		t.Errorf("redraw calls = %d, want 3", f.translator.RedrawCalls())
	}
}

func TestStartBatchRequiresTargetLanguage(t *testing.T) {
	f := newFixture(t, 1)
	if err := f.ctrl.StartBatch(context.Background(), nil, Settings{}); err == nil {
		t.Error("missing target language must fail fast")
	}
	if f.translator.RedrawCalls() != 0 {
		t.Error("no remote calls before validation")
	}
}

func TestRedrawExhaustionMarksError(t *testing.T) {
	f := newFixture(t, 1)
	transient := &providers.CallError{Kind: providers.ErrKindRateLimit, Message: "rate limit exceeded"}
	f.translator.ScriptRedrawErrors(transient, transient, transient)

	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v, batch must survive page failure", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ := f.store.Get(1)
	if page.Status != pages.StatusError {
		t.Fatalf("status = %v, want ERROR", page.Status)
	}
	if page.Error != "rate limit exceeded" {
		t.Errorf("error = %q, want the provider message verbatim", page.Error)
	}
	if f.translator.RedrawCalls() != 3 {
		t.Errorf("redraw calls = %d, want exactly the retry budget", f.translator.RedrawCalls())
	}
	if page.Evaluation != nil {
		t.Error("failed page must not be evaluated")
	}
}

func TestFailedPageDoesNotStopBatch(t *testing.T) {
	f := newFixture(t, 2)
	fatal := &providers.CallError{Kind: providers.ErrKindBadRequest, Message: "bad image"}
	f.translator.ScriptRedrawErrors(fatal) // only page 1 fails

	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	p1, _ := f.store.Get(1)
	p2, _ := f.store.Get(2)
	if p1.Status != pages.StatusError {
		t.Errorf("page 1 status = %v, want ERROR", p1.Status)
	}
	if p2.Status != pages.StatusDone {
		t.Errorf("page 2 status = %v, want DONE", p2.Status)
	}
}

func TestEvaluationNeverBlocksTranslation(t *testing.T) {
	f := newFixture(t, 1)
	f.evaluator.Latency = 200 * time.Millisecond

	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v", err)
	}

	// Batch returned; audit is still in flight.
	page, _ := f.store.Get(1)
	if page.Status != pages.StatusDone {
		t.Fatalf("status = %v, DONE must not wait for the audit", page.Status)
	}
	if !page.IsEvaluating {
		t.Error("isEvaluating should be set while the audit is in flight")
	}
	if page.Evaluation != nil {
		t.Error("evaluation should not have merged yet")
	}

	f.ctrl.WaitForEvaluations()
	page, _ = f.store.Get(1)
	if page.IsEvaluating {
		t.Error("isEvaluating should clear once the audit resolves")
	}
	if page.Evaluation == nil {
		t.Error("evaluation result missing after merge")
	}
	if len(page.Ledger.Evaluation) != 1 {
		t.Errorf("evaluation records = %d, want 1", len(page.Ledger.Evaluation))
	}
}

func TestAuditFallbackKeepsPageDone(t *testing.T) {
	f := newFixture(t, 1)
	transient := &providers.CallError{Kind: providers.ErrKindServer, Message: "overloaded"}
	f.evaluator.ScriptAuditErrors(transient, transient, transient)

	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ := f.store.Get(1)
	if page.Status != pages.StatusDone {
		t.Errorf("status = %v, audit failure must not change DONE", page.Status)
	}
	if page.Evaluation == nil || !page.Evaluation.Fallback {
		t.Fatalf("evaluation = %+v, want zero-score fallback", page.Evaluation)
	}
	if page.Evaluation.AverageScore != 0 {
		t.Errorf("average = %v, want 0", page.Evaluation.AverageScore)
	}
	if !strings.Contains(page.Evaluation.Reason, "unavailable") {
		t.Errorf("reason = %q, want unavailability notice", page.Evaluation.Reason)
	}
}

func TestRetryPageCarriesFeedback(t *testing.T) {
	f := newFixture(t, 1)
	if err := f.ctrl.StartBatch(context.Background(), nil, spanish()); err != nil {
		t.Fatalf("StartBatch() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	// Simulate a prior evaluation with suggestions.
	f.store.Patch(1, func(p *pages.Page) {
		p.Evaluation.Suggestions = "missing footer text"
	})

	if err := f.ctrl.RetryPage(context.Background(), 1, "use formal tone", spanish()); err != nil {
		t.Fatalf("RetryPage() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ := f.store.Get(1)
	if page.Status != pages.StatusDone {
		t.Fatalf("status = %v", page.Status)
	}
	if !strings.Contains(page.Instructions, "missing footer text") {
		t.Error("prior suggestion missing from retry instructions")
	}
	if !strings.Contains(page.Instructions, "use formal tone") {
		t.Error("user feedback missing from retry instructions")
	}
}

func TestRetryClearsError(t *testing.T) {
	f := newFixture(t, 1)
	fatal := &providers.CallError{Kind: providers.ErrKindBadRequest, Message: "bad image"}
	f.translator.ScriptRedrawErrors(fatal)

	f.ctrl.StartBatch(context.Background(), nil, spanish())
	page, _ := f.store.Get(1)
	if page.Status != pages.StatusError {
		t.Fatalf("precondition: status = %v", page.Status)
	}

	if err := f.ctrl.RetryPage(context.Background(), 1, "", spanish()); err != nil {
		t.Fatalf("RetryPage() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ = f.store.Get(1)
	if page.Status != pages.StatusDone {
		t.Errorf("status = %v, want DONE after retry", page.Status)
	}
	if page.Error != "" {
		t.Errorf("error = %q, want cleared", page.Error)
	}
}

func TestRetryEvaluation(t *testing.T) {
	f := newFixture(t, 1)
	f.ctrl.StartBatch(context.Background(), nil, spanish())
	f.ctrl.WaitForEvaluations()

	if err := f.ctrl.RetryEvaluation(context.Background(), 1, spanish()); err != nil {
		t.Fatalf("RetryEvaluation() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ := f.store.Get(1)
	if page.Evaluation == nil {
		t.Fatal("evaluation missing")
	}
	if f.evaluator.AuditCalls() != 2 {
		t.Errorf("audit calls = %d, want 2", f.evaluator.AuditCalls())
	}

	t.Run("pending page is rejected", func(t *testing.T) {
		f.store.Put(pages.NewPage(9, "source/page_0009.png"))
		if err := f.ctrl.RetryEvaluation(context.Background(), 9, spanish()); err == nil {
			t.Error("expected error for page without a translation")
		}
	})
}

func TestStaleEvaluationDropped(t *testing.T) {
	f := newFixture(t, 1)
	f.evaluator.Latency = 150 * time.Millisecond

	f.ctrl.StartBatch(context.Background(), nil, spanish())

	// Retry while the first audit is still in flight: bumps the generation.
	if err := f.ctrl.RetryPage(context.Background(), 1, "", spanish()); err != nil {
		t.Fatalf("RetryPage() error = %v", err)
	}
	f.ctrl.WaitForEvaluations()

	page, _ := f.store.Get(1)
	if page.Status != pages.StatusDone {
		t.Fatalf("status = %v", page.Status)
	}
	// Exactly one evaluation (the second generation's) may merge; the
	// first generation's late result must be a no-op.
	if page.Evaluation == nil {
		t.Error("current generation's evaluation should merge")
	}
	if got := len(page.Ledger.Evaluation); got > 1 {
		t.Errorf("evaluation records = %d, stale result merged", got)
	}
}

func TestAggregates(t *testing.T) {
	f := newFixture(t, 2)
	f.ctrl.StartBatch(context.Background(), nil, spanish())
	f.ctrl.WaitForEvaluations()

	totals := f.ctrl.Totals()
	// 2 pages x (1 redraw + 1 audit), 150 tokens each call.
	if totals.TotalTokens != 600 {
		t.Errorf("total tokens = %d, want 600", totals.TotalTokens)
	}
	wantCost := 4 * usage.Cost(100, 50, usage.ModelPricing{InputPerMillion: 1, OutputPerMillion: 4})
	if totals.CostUSD != wantCost {
		t.Errorf("cost = %v, want %v", totals.CostUSD, wantCost)
	}

	byModel := f.ctrl.ByModel()
	if mt, ok := byModel["mock-model"]; !ok || mt.Calls != 4 {
		t.Errorf("byModel = %+v, want 4 calls under mock-model", byModel)
	}

	byStage := f.ctrl.ByStage()
	if byStage[usage.StageTranslation].TotalTokens != 300 {
		t.Errorf("translation stage tokens = %d, want 300", byStage[usage.StageTranslation].TotalTokens)
	}
	if byStage[usage.StageEvaluation].TotalTokens != 300 {
		t.Errorf("evaluation stage tokens = %d, want 300", byStage[usage.StageEvaluation].TotalTokens)
	}
}
