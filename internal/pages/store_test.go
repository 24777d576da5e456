package pages

import (
	"sync"
	"testing"

	"github.com/pagelingo/pagelingo/internal/evaluate"
	"github.com/pagelingo/pagelingo/internal/usage"
)

func TestStoreBasics(t *testing.T) {
	s := NewStore()
	s.Put(NewPage(1, "pages/page_0001.png"))
	s.Put(NewPage(3, "pages/page_0003.png"))
	s.Put(NewPage(2, "pages/page_0002.png"))

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	got, ok := s.Get(2)
	if !ok {
		t.Fatal("Get(2) missing")
	}
	if got.Status != StatusPending {
		t.Errorf("status = %v, want PENDING", got.Status)
	}

	if _, ok := s.Get(99); ok {
		t.Error("Get(99) should miss")
	}

	list := s.List()
	for i, p := range list {
		if p.Number != i+1 {
			t.Errorf("List()[%d].Number = %d, want ascending order", i, p.Number)
		}
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Put(NewPage(1, "src.png"))

	got, _ := s.Get(1)
	got.Status = StatusError
	got.Ledger.Append(usage.NewRecord(usage.StageTranslation, "m", 10, 10, usage.ModelPricing{}))

	fresh, _ := s.Get(1)
	if fresh.Status != StatusPending {
		t.Error("mutating a Get() copy leaked into the store")
	}
	if fresh.Ledger.Total.TotalTokens != 0 {
		t.Error("mutating a copied ledger leaked into the store")
	}
}

func TestStorePatch(t *testing.T) {
	s := NewStore()
	s.Put(NewPage(1, "src.png"))

	ok := s.Patch(1, func(p *Page) {
		p.Status = StatusTranslating
	})
	if !ok {
		t.Fatal("Patch returned false for existing page")
	}
	got, _ := s.Get(1)
	if got.Status != StatusTranslating {
		t.Errorf("status = %v after patch", got.Status)
	}

	if s.Patch(42, func(p *Page) { t.Error("fn must not run for missing page") }) {
		t.Error("Patch on missing page should return false")
	}
}

func TestStorePatchIfGeneration(t *testing.T) {
	s := NewStore()
	page := NewPage(1, "src.png")
	s.Put(page)

	t.Run("matching generation applies", func(t *testing.T) {
		ok := s.PatchIfGeneration(1, 0, func(p *Page) {
			p.Evaluation = evaluate.Fallback()
			p.IsEvaluating = false
		})
		if !ok {
			t.Fatal("expected patch to apply")
		}
		got, _ := s.Get(1)
		if got.Evaluation == nil {
			t.Error("evaluation not merged")
		}
	})

	t.Run("stale generation is a no-op", func(t *testing.T) {
		s.Patch(1, func(p *Page) {
			p.Generation++
			p.Evaluation = nil
		})

		ok := s.PatchIfGeneration(1, 0, func(p *Page) {
			p.Evaluation = evaluate.Fallback()
		})
		if ok {
			t.Fatal("stale merge should be rejected")
		}
		got, _ := s.Get(1)
		if got.Evaluation != nil {
			t.Error("stale merge mutated the page")
		}
	})

	t.Run("missing page is a no-op", func(t *testing.T) {
		if s.PatchIfGeneration(7, 0, func(p *Page) {}) {
			t.Error("missing page should be rejected")
		}
	})
}

func TestStoreConcurrentPatches(t *testing.T) {
	s := NewStore()
	s.Put(NewPage(1, "src.png"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Patch(1, func(p *Page) {
				p.Ledger.Append(usage.NewRecord(usage.StageEvaluation, "m", 1, 1, usage.ModelPricing{}))
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get(1)
	if got.Ledger.Total.TotalTokens != 100 {
		t.Errorf("total tokens = %d, want 100 from 50 keyed patches", got.Ledger.Total.TotalTokens)
	}
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	s.Put(NewPage(1, "a.png"))
	s.Put(NewPage(2, "b.png"))

	s.Reset([]*Page{NewPage(5, "c.png")})
	if s.Len() != 1 {
		t.Fatalf("Len() = %d after reset, want 1", s.Len())
	}
	if nums := s.Numbers(); len(nums) != 1 || nums[0] != 5 {
		t.Errorf("Numbers() = %v", nums)
	}
}
