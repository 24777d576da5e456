package usage

// Ledger is a per-page aggregate of usage records, grouped by stage.
// Total is always recomputed from the per-stage sequences on append, so it
// can never diverge from them.
type Ledger struct {
	Extraction  []Record `json:"extraction" yaml:"extraction"`
	Translation []Record `json:"translation" yaml:"translation"`
	Evaluation  []Record `json:"evaluation" yaml:"evaluation"`
	Total       Totals   `json:"total" yaml:"total"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds a record to its stage sequence and recomputes the total.
// Records with an unknown stage are dropped (stage tags are set by the
// pipelines, so this only guards against future stage additions).
func (l *Ledger) Append(r Record) {
	switch r.Stage {
	case StageExtraction:
		l.Extraction = append(l.Extraction, r)
	case StageTranslation:
		l.Translation = append(l.Translation, r)
	case StageEvaluation:
		l.Evaluation = append(l.Evaluation, r)
	default:
		return
	}
	l.Total = l.recompute()
}

// AppendAll appends a batch of records.
func (l *Ledger) AppendAll(records []Record) {
	for _, r := range records {
		l.Append(r)
	}
}

// Records returns all records across stages in stage order.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.Extraction)+len(l.Translation)+len(l.Evaluation))
	out = append(out, l.Extraction...)
	out = append(out, l.Translation...)
	out = append(out, l.Evaluation...)
	return out
}

// recompute folds every stage sequence into a fresh aggregate.
func (l *Ledger) recompute() Totals {
	return Sum(l.Records())
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return nil
	}
	c := &Ledger{
		Extraction:  append([]Record(nil), l.Extraction...),
		Translation: append([]Record(nil), l.Translation...),
		Evaluation:  append([]Record(nil), l.Evaluation...),
		Total:       l.Total,
	}
	return c
}
