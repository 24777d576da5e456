package evaluate

import (
	"math/rand"
	"strings"
	"testing"
)

func TestAverageScore(t *testing.T) {
	t.Run("uniform scores", func(t *testing.T) {
		s := make(Scores)
		for _, dim := range Dimensions {
			s[dim] = 8
		}
		if got := AverageScore(s); got != 8.0 {
			t.Errorf("AverageScore() = %v, want 8.0", got)
		}
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		s := make(Scores)
		for _, dim := range Dimensions {
			s[dim] = 7
		}
		s[Dimensions[0]] = 8 // mean = 64/9 = 7.111...
		if got := AverageScore(s); got != 7.1 {
			t.Errorf("AverageScore() = %v, want 7.1", got)
		}
	})

	t.Run("bounded for random valid scores", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 200; i++ {
			s := make(Scores)
			for _, dim := range Dimensions {
				s[dim] = rng.Float64() * 10
			}
			got := AverageScore(s)
			if got < 0 || got > 10 {
				t.Fatalf("AverageScore() = %v out of bounds for %v", got, s)
			}
		}
	})

	t.Run("missing dimensions count as zero", func(t *testing.T) {
		s := Scores{"accuracy": 9}
		if got, want := AverageScore(s), 1.0; got != want {
			t.Errorf("AverageScore() = %v, want %v", got, want)
		}
	})

	t.Run("all zeros", func(t *testing.T) {
		if got := AverageScore(zeroScores()); got != 0 {
			t.Errorf("AverageScore() = %v, want 0", got)
		}
	})
}

func TestNormalizeScores(t *testing.T) {
	raw := map[string]float64{
		"accuracy":  11,
		"fluency":   -2,
		"spelling":  9.5,
		"unrelated": 7,
	}
	s := normalizeScores(raw)

	if len(s) != len(Dimensions) {
		t.Errorf("len = %d, want %d", len(s), len(Dimensions))
	}
	if s["accuracy"] != 10 {
		t.Errorf("accuracy = %v, want clamped 10", s["accuracy"])
	}
	if s["fluency"] != 0 {
		t.Errorf("fluency = %v, want clamped 0", s["fluency"])
	}
	if s["spelling"] != 9.5 {
		t.Errorf("spelling = %v", s["spelling"])
	}
	if _, ok := s["unrelated"]; ok {
		t.Error("unknown dimension should be dropped")
	}
}

func TestCriteriaText(t *testing.T) {
	text := CriteriaText()
	for _, dim := range Dimensions {
		if !strings.Contains(text, dim) {
			t.Errorf("criteria missing dimension %q", dim)
		}
	}
	if !strings.Contains(text, "trademark") {
		t.Error("criteria missing trademark carve-out")
	}
	if !strings.Contains(text, "Do not penalize") {
		t.Error("criteria must instruct the evaluator not to penalize carve-outs")
	}
	if len(Dimensions) != 9 {
		t.Errorf("dimension count = %d, want 9", len(Dimensions))
	}
}
