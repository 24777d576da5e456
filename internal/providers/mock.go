package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a GenerationClient for testing. Each operation can be
// scripted with a fixed error sequence consumed one call at a time,
// letting tests exercise retry and fallback paths deterministically.
type MockClient struct {
	// Configurable behavior
	Latency       time.Duration
	Segments      []Segment // returned by Extract
	RedrawImage   []byte    // returned by Redraw
	AuditScores   map[string]float64
	AuditReason   string
	Usage         RawUsage
	ModelName     string
	RPM           int

	mu sync.Mutex
	// Per-op scripted errors, consumed front to back. A nil entry means
	// that call succeeds.
	extractErrs []error
	redrawErrs  []error
	auditErrs   []error

	extractCalls atomic.Int64
	redrawCalls  atomic.Int64
	auditCalls   atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Segments: []Segment{
			{Original: "Hola", Translated: "Hello"},
		},
		RedrawImage: []byte("mock-image-bytes"),
		AuditScores: map[string]float64{"accuracy": 8},
		AuditReason: "mock audit",
		Usage:       RawUsage{InputTokens: 100, OutputTokens: 50},
		ModelName:   "mock-model",
		RPM:         600,
	}
}

// ScriptExtractErrors queues errors for successive Extract calls.
func (c *MockClient) ScriptExtractErrors(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractErrs = append(c.extractErrs, errs...)
}

// ScriptRedrawErrors queues errors for successive Redraw calls.
func (c *MockClient) ScriptRedrawErrors(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redrawErrs = append(c.redrawErrs, errs...)
}

// ScriptAuditErrors queues errors for successive Audit calls.
func (c *MockClient) ScriptAuditErrors(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auditErrs = append(c.auditErrs, errs...)
}

func (c *MockClient) nextErr(queue *[]error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (c *MockClient) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(c.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Model returns the mock model identifier.
func (c *MockClient) Model() string {
	return c.ModelName
}

// RequestsPerMinute returns the RPM limit.
func (c *MockClient) RequestsPerMinute() int {
	return c.RPM
}

// Extract returns the configured segments or the next scripted error.
func (c *MockClient) Extract(ctx context.Context, req *ExtractRequest) (*ExtractResult, error) {
	c.extractCalls.Add(1)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if err := c.nextErr(&c.extractErrs); err != nil {
		return nil, err
	}
	return &ExtractResult{
		Segments:  c.Segments,
		Usage:     c.Usage,
		ModelUsed: c.ModelName,
		Prompt:    fmt.Sprintf("mock extract %s to %s", req.SourceLang, req.TargetLang),
	}, nil
}

// Redraw returns the configured image or the next scripted error.
func (c *MockClient) Redraw(ctx context.Context, req *RedrawRequest) (*RedrawResult, error) {
	c.redrawCalls.Add(1)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if err := c.nextErr(&c.redrawErrs); err != nil {
		return nil, err
	}
	return &RedrawResult{
		Image:     c.RedrawImage,
		MimeType:  "image/png",
		Usage:     c.Usage,
		ModelUsed: c.ModelName,
	}, nil
}

// Audit returns the configured scores or the next scripted error.
func (c *MockClient) Audit(ctx context.Context, req *AuditRequest) (*AuditResult, error) {
	c.auditCalls.Add(1)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	if err := c.nextErr(&c.auditErrs); err != nil {
		return nil, err
	}
	return &AuditResult{
		Scores:    c.AuditScores,
		Reason:    c.AuditReason,
		Usage:     c.Usage,
		ModelUsed: c.ModelName,
	}, nil
}

// ExtractCalls returns the number of Extract calls made.
func (c *MockClient) ExtractCalls() int64 { return c.extractCalls.Load() }

// RedrawCalls returns the number of Redraw calls made.
func (c *MockClient) RedrawCalls() int64 { return c.redrawCalls.Load() }

// AuditCalls returns the number of Audit calls made.
func (c *MockClient) AuditCalls() int64 { return c.auditCalls.Load() }

// Reset clears call counters and scripted errors.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractErrs = nil
	c.redrawErrs = nil
	c.auditErrs = nil
	c.extractCalls.Store(0)
	c.redrawCalls.Store(0)
	c.auditCalls.Store(0)
}

// Verify interface
var _ GenerationClient = (*MockClient)(nil)
