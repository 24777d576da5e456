// Package usage provides cost and token accounting for generation calls.
package usage

import "time"

// Stage tags which pipeline phase a usage record belongs to.
type Stage string

const (
	StageExtraction  Stage = "extraction"
	StageTranslation Stage = "translation"
	StageEvaluation  Stage = "evaluation"
)

// Record is one accounting entry for a single remote call.
// Records are immutable once created; ledgers only ever append them.
type Record struct {
	InputTokens  int       `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int       `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens  int       `json:"total_tokens" yaml:"total_tokens"`
	CostUSD      float64   `json:"cost_usd" yaml:"cost_usd"`
	Model        string    `json:"model" yaml:"model"`
	Stage        Stage     `json:"stage" yaml:"stage"`
	Prompt       string    `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// NewRecord builds a record from raw token counts, deriving total and cost.
func NewRecord(stage Stage, model string, inputTokens, outputTokens int, pricing ModelPricing) Record {
	return Record{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      Cost(inputTokens, outputTokens, pricing),
		Model:        model,
		Stage:        stage,
		CreatedAt:    time.Now(),
	}
}
