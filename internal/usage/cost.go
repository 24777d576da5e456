package usage

// ModelPricing holds per-million-token prices for one model.
// Pricing is explicit configuration passed in by callers, never a package global.
type ModelPricing struct {
	InputPerMillion  float64 `mapstructure:"input_per_million" yaml:"input_per_million" json:"input_per_million"`
	OutputPerMillion float64 `mapstructure:"output_per_million" yaml:"output_per_million" json:"output_per_million"`
}

// Cost converts raw token counts into USD.
// Pure function: linear in each argument, no validation (callers gate bad input).
func Cost(inputTokens, outputTokens int, p ModelPricing) float64 {
	return float64(inputTokens)/1e6*p.InputPerMillion + float64(outputTokens)/1e6*p.OutputPerMillion
}

// Totals is an aggregate over a sequence of records.
type Totals struct {
	InputTokens  int     `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int     `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens  int     `json:"total_tokens" yaml:"total_tokens"`
	CostUSD      float64 `json:"cost_usd" yaml:"cost_usd"`
}

// Add folds a single record into the totals.
func (t Totals) Add(r Record) Totals {
	t.InputTokens += r.InputTokens
	t.OutputTokens += r.OutputTokens
	t.TotalTokens += r.TotalTokens
	t.CostUSD += r.CostUSD
	return t
}

// Merge combines two aggregates.
func (t Totals) Merge(other Totals) Totals {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.TotalTokens += other.TotalTokens
	t.CostUSD += other.CostUSD
	return t
}

// Sum folds a sequence of records into an aggregate.
// Pure summation: associative and order-independent.
func Sum(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t = t.Add(r)
	}
	return t
}
