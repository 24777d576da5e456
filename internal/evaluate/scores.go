package evaluate

import (
	"math"
	"time"
)

// Scores holds one value per scoring dimension, each in [0,10].
type Scores map[string]float64

// Result is a completed evaluation of one translated page.
type Result struct {
	Scores       Scores    `json:"scores" yaml:"scores"`
	AverageScore float64   `json:"average_score" yaml:"average_score"`
	Reason       string    `json:"reason" yaml:"reason"`
	Suggestions  string    `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	ModelUsed    string    `json:"model_used,omitempty" yaml:"model_used,omitempty"`
	Fallback     bool      `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// AverageScore is the mean of all dimension scores rounded to one decimal.
// Missing dimensions count as zero so a partial response cannot inflate
// the average.
func AverageScore(s Scores) float64 {
	if len(Dimensions) == 0 {
		return 0
	}
	var sum float64
	for _, dim := range Dimensions {
		sum += clampScore(s[dim])
	}
	return round1(sum / float64(len(Dimensions)))
}

// normalizeScores keeps only the known dimensions, clamped to bounds, so
// downstream reporting always sees the full fixed set.
func normalizeScores(raw map[string]float64) Scores {
	out := make(Scores, len(Dimensions))
	for _, dim := range Dimensions {
		out[dim] = clampScore(raw[dim])
	}
	return out
}

// zeroScores is the deterministic fallback score set.
func zeroScores() Scores {
	out := make(Scores, len(Dimensions))
	for _, dim := range Dimensions {
		out[dim] = 0
	}
	return out
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
