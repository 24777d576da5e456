// Package pages holds the shared page collection: the only mutable state
// the translation and evaluation flows both touch.
package pages

import (
	"time"

	"github.com/pagelingo/pagelingo/internal/evaluate"
	"github.com/pagelingo/pagelingo/internal/providers"
	"github.com/pagelingo/pagelingo/internal/usage"
)

// Status is a page's primary lifecycle state.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusTranslating Status = "TRANSLATING"
	StatusDone        Status = "DONE"
	StatusError       Status = "ERROR"
)

// Page is one document page and everything accumulated for it. Images live
// on disk under the home layout; the record carries paths, not bytes.
type Page struct {
	Number         int    `json:"number" yaml:"number"`
	SourcePath     string `json:"source_path" yaml:"source_path"`
	TranslatedPath string `json:"translated_path,omitempty" yaml:"translated_path,omitempty"`

	Status Status `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	// IsEvaluating is orthogonal to Status: set when a detached audit is
	// in flight for a DONE page, cleared when its result merges.
	IsEvaluating bool `json:"is_evaluating,omitempty" yaml:"is_evaluating,omitempty"`

	Evaluation *evaluate.Result `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`
	Ledger     *usage.Ledger    `json:"usage" yaml:"usage"`

	Segments     []providers.Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
	Instructions string              `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Degraded     bool                `json:"degraded,omitempty" yaml:"degraded,omitempty"`

	// Generation increments every time the page is reset or re-enters
	// TRANSLATING. Late-arriving detached results for an older generation
	// are dropped on merge.
	Generation int       `json:"-" yaml:"-"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewPage creates a pending page for a source image.
func NewPage(number int, sourcePath string) *Page {
	return &Page{
		Number:     number,
		SourcePath: sourcePath,
		Status:     StatusPending,
		Ledger:     usage.NewLedger(),
		UpdatedAt:  time.Now(),
	}
}

// clone returns an independent copy safe to hand outside the store.
func (p *Page) clone() *Page {
	cp := *p
	if p.Ledger != nil {
		cp.Ledger = p.Ledger.Clone()
	}
	if p.Evaluation != nil {
		ev := *p.Evaluation
		ev.Scores = make(evaluate.Scores, len(p.Evaluation.Scores))
		for k, v := range p.Evaluation.Scores {
			ev.Scores[k] = v
		}
		cp.Evaluation = &ev
	}
	if p.Segments != nil {
		cp.Segments = append([]providers.Segment(nil), p.Segments...)
	}
	return &cp
}
