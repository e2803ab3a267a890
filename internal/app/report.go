package service

import (
	"time"

	"github.com/okian/debtscore/internal/domain/table"
)

// Source kinds.
const (
	KindCase     = "case"
	KindPayments = "payments"
	KindPromises = "promises"
	KindContacts = "contacts"
)

// Degradation reasons.
const (
	ReasonMissingFile       = "missing_file"
	ReasonReadError         = "read_error"
	ReasonCollision         = "header_collision"
	ReasonMissingIdentifier = "missing_identifier"
	ReasonNoRows            = "no_valid_rows"
)

// SourceReport describes how one input was ingested.
type SourceReport struct {
	Name             string
	Kind             string
	Path             string
	RowsRead         int
	RowsDropped      int
	Debtors          int
	IdentifierColumn string
	Columns          map[string]string
	MissingColumns   []string
	CoercionFailures map[string]int
	Matched          int
	Degraded         bool
	Reason           string
	Err              error
}

// StageReport describes one propensity stage.
type StageReport struct {
	Stage     string
	Status    string
	Reason    string
	Rows      int
	Train     int
	Eval      int
	Positives int
	AUC       float64
	Accuracy  float64
	Weight    float64
	Duration  time.Duration
}

// Report is the outcome of a pipeline run.
type Report struct {
	RunID      string
	Reference  time.Time
	Started    time.Time
	Duration   time.Duration
	Sources    []SourceReport
	CaseDiffs  []table.ColumnDiff
	Duplicates int
	Debtors    int
	Stages     []StageReport
	Categories map[string]int
	Output     string
}

// Source returns the report of the named source.
func (r *Report) Source(name string) (SourceReport, bool) {
	for _, s := range r.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceReport{}, false
}

// Degraded lists the names of degraded sources.
func (r *Report) Degraded() []string {
	var out []string
	for _, s := range r.Sources {
		if s.Degraded {
			out = append(out, s.Name)
		}
	}
	return out
}
