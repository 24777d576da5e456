// Package providers wraps remote multimodal generation backends behind a
// common client interface with explicit, typed results.
package providers

import (
	"context"
)

// GenerationClient is the capability interface for a multimodal backend.
// All three operations are single fallible network calls, potentially slow
// (seconds to tens of seconds). The client is a dumb executor: it never
// branches on translation mode, the instructions fully encode behavior.
type GenerationClient interface {
	// Extract performs structured OCR+translation on a page image.
	// Output order matters: it drives the later redraw.
	// On malformed structured output the client returns an empty segment
	// list and no error, so callers can degrade rather than abort.
	Extract(ctx context.Context, req *ExtractRequest) (*ExtractResult, error)

	// Redraw produces a new full-page image from the source image and
	// composed instructions.
	Redraw(ctx context.Context, req *RedrawRequest) (*RedrawResult, error)

	// Audit compares an original and a translated page image and scores
	// the translation against the supplied criteria.
	Audit(ctx context.Context, req *AuditRequest) (*AuditResult, error)

	// Name returns the client identifier (e.g. "gemini").
	Name() string

	// Model returns the default model identifier used for calls.
	Model() string

	// RequestsPerMinute returns the provider's rate limit.
	RequestsPerMinute() int
}

// RawUsage carries token counts straight from a provider response.
type RawUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Segment is one (original, translated) text pair from extraction.
type Segment struct {
	Original   string   `json:"original"`
	Translated string   `json:"translated"`
	Flags      []string `json:"flags,omitempty"` // e.g. "trademark", "redundant"
}

// ExtractRequest asks for structured text extraction and translation.
type ExtractRequest struct {
	Image      []byte
	MimeType   string // defaults to image/png
	SourceLang string
	TargetLang string
	Glossary   string // optional
	Feedback   string // optional refinement feedback from a prior attempt
	RequestID  string
}

// ExtractResult is the parsed extraction response.
type ExtractResult struct {
	Segments  []Segment `json:"segments"`
	Usage     RawUsage  `json:"usage"`
	ModelUsed string    `json:"model_used"`
	Prompt    string    `json:"prompt,omitempty"`
}

// RedrawRequest asks for an image-to-image visual translation.
type RedrawRequest struct {
	Image        []byte
	MimeType     string
	Instructions string
	AspectRatio  string // one of the supported output ratios, e.g. "3:4"
	RequestID    string
}

// RedrawResult is the generated page image plus usage.
type RedrawResult struct {
	Image     []byte   `json:"-"`
	MimeType  string   `json:"mime_type"`
	Usage     RawUsage `json:"usage"`
	ModelUsed string   `json:"model_used"`
}

// AuditRequest asks for a quality comparison of two page images.
type AuditRequest struct {
	OriginalImage   []byte
	TranslatedImage []byte
	MimeType        string
	Criteria        string // full criteria text, including scoring carve-outs
	Glossary        string // optional
	RequestID       string
}

// AuditResult is the parsed audit response. Scores are keyed by dimension
// name and bounded to [0,10] at the parse boundary.
type AuditResult struct {
	Scores      map[string]float64 `json:"scores"`
	Reason      string             `json:"reason"`
	Suggestions string             `json:"suggestions"`
	Usage       RawUsage           `json:"usage"`
	ModelUsed   string             `json:"model_used"`
}
