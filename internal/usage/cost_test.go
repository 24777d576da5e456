package usage

import (
	"math"
	"testing"
)

func TestCost(t *testing.T) {
	pricing := ModelPricing{InputPerMillion: 0.30, OutputPerMillion: 2.50}

	t.Run("basic computation", func(t *testing.T) {
		got := Cost(1_000_000, 1_000_000, pricing)
		want := 0.30 + 2.50
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Cost() = %v, want %v", got, want)
		}
	})

	t.Run("zero tokens cost nothing", func(t *testing.T) {
		if got := Cost(0, 0, pricing); got != 0 {
			t.Errorf("Cost(0,0) = %v, want 0", got)
		}
	})

	t.Run("linear in each argument", func(t *testing.T) {
		a, b := 1234, 5678
		single := Cost(a, b, pricing)
		double := Cost(2*a, 2*b, pricing)
		if math.Abs(double-2*single) > 1e-9 {
			t.Errorf("Cost(2a,2b) = %v, want %v", double, 2*single)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		if Cost(777, 333, pricing) != Cost(777, 333, pricing) {
			t.Error("Cost is not deterministic")
		}
	})
}

func TestSum(t *testing.T) {
	pricing := ModelPricing{InputPerMillion: 1.0, OutputPerMillion: 2.0}
	records := []Record{
		NewRecord(StageExtraction, "m1", 100, 200, pricing),
		NewRecord(StageTranslation, "m1", 300, 400, pricing),
		NewRecord(StageEvaluation, "m2", 500, 600, pricing),
	}

	total := Sum(records)
	if total.InputTokens != 900 {
		t.Errorf("InputTokens = %d, want 900", total.InputTokens)
	}
	if total.OutputTokens != 1200 {
		t.Errorf("OutputTokens = %d, want 1200", total.OutputTokens)
	}
	if total.TotalTokens != 2100 {
		t.Errorf("TotalTokens = %d, want 2100", total.TotalTokens)
	}

	t.Run("order independent", func(t *testing.T) {
		reversed := []Record{records[2], records[0], records[1]}
		if Sum(reversed) != total {
			t.Error("Sum is order-dependent")
		}
	})

	t.Run("empty sequence", func(t *testing.T) {
		if got := Sum(nil); got != (Totals{}) {
			t.Errorf("Sum(nil) = %+v, want zero", got)
		}
	})
}

func TestByModel(t *testing.T) {
	pricing := ModelPricing{InputPerMillion: 1.0, OutputPerMillion: 1.0}
	records := []Record{
		NewRecord(StageTranslation, "image-model", 100, 100, pricing),
		NewRecord(StageTranslation, "image-model", 100, 100, pricing),
		NewRecord(StageEvaluation, "audit-model", 50, 50, pricing),
	}

	breakdown := ByModel(records)
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 models, got %d", len(breakdown))
	}
	if breakdown["image-model"].Calls != 2 {
		t.Errorf("image-model calls = %d, want 2", breakdown["image-model"].Calls)
	}
	if breakdown["image-model"].TotalTokens != 400 {
		t.Errorf("image-model tokens = %d, want 400", breakdown["image-model"].TotalTokens)
	}
	if breakdown["audit-model"].Calls != 1 {
		t.Errorf("audit-model calls = %d, want 1", breakdown["audit-model"].Calls)
	}
}
