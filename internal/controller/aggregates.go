package controller

import (
	"github.com/pagelingo/pagelingo/internal/usage"
)

// Totals folds every page's ledger into one aggregate. Computed on demand
// from the page collection, never cached.
func (c *Controller) Totals() usage.Totals {
	var total usage.Totals
	for _, p := range c.store.List() {
		if p.Ledger != nil {
			total = total.Merge(p.Ledger.Total)
		}
	}
	return total
}

// ByModel aggregates usage per model identifier across all pages.
func (c *Controller) ByModel() map[string]usage.ModelTotals {
	var records []usage.Record
	for _, p := range c.store.List() {
		if p.Ledger != nil {
			records = append(records, p.Ledger.Records()...)
		}
	}
	return usage.ByModel(records)
}

// ByStage aggregates usage per pipeline stage across all pages.
func (c *Controller) ByStage() map[usage.Stage]usage.Totals {
	var records []usage.Record
	for _, p := range c.store.List() {
		if p.Ledger != nil {
			records = append(records, p.Ledger.Records()...)
		}
	}
	return usage.ByStage(records)
}
