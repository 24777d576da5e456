package usage

// ModelTotals pairs an aggregate with a call count for one model.
type ModelTotals struct {
	Totals
	Calls int `json:"calls" yaml:"calls"`
}

// ByModel returns a per-model breakdown over a sequence of records.
func ByModel(records []Record) map[string]ModelTotals {
	breakdown := make(map[string]ModelTotals)
	for _, r := range records {
		mt := breakdown[r.Model]
		mt.Totals = mt.Totals.Add(r)
		mt.Calls++
		breakdown[r.Model] = mt
	}
	return breakdown
}

// ByStage returns cost totals grouped by stage.
func ByStage(records []Record) map[Stage]Totals {
	breakdown := make(map[Stage]Totals)
	for _, r := range records {
		breakdown[r.Stage] = breakdown[r.Stage].Add(r)
	}
	return breakdown
}
