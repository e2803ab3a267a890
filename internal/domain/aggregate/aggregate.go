// Package aggregate reduces the multi-row auxiliary sources (payments,
// promises, contacts) to one summary per debtor.
package aggregate

import (
	"time"

	"github.com/okian/debtscore/internal/domain/money"
	"github.com/okian/debtscore/internal/domain/schema"
	"github.com/okian/debtscore/internal/domain/table"
)

// Source names.
const (
	SourcePayments = "pagos"
	SourcePromises = "promesas"
	SourceContacts = "gestiones"
)

// Stats describes what an aggregation consumed.
type Stats struct {
	Rows    int
	Debtors int
	// Columns maps each summary field to the source column it was read from.
	Columns map[string]string
	// MissingColumns lists summary fields no column could be found for.
	MissingColumns []string
	// CoercionFailures counts non-blank cells that failed to parse, per column.
	CoercionFailures map[string]int
}

func newStats() Stats {
	return Stats{Columns: map[string]string{}, CoercionFailures: map[string]int{}}
}

// Result is the output of one aggregator.
type Result[T any] struct {
	Source    string
	Summaries map[string]T
	Stats     Stats
}

// Get returns the summary of debtor and whether it has one.
func (r *Result[T]) Get(debtor string) (T, bool) {
	s, ok := r.Summaries[debtor]
	return s, ok
}

// Aggregator reduces a resolved source table to per-debtor summaries.
type Aggregator[T any] interface {
	Aggregate(t *table.Table) *Result[T]
}

// Empty is the result of a degraded source.
func Empty[T any](source string) *Result[T] {
	return &Result[T]{Source: source, Summaries: map[string]T{}, Stats: newStats()}
}

// binder resolves field columns of a table once and reads typed cells.
type binder struct {
	t     *table.Table
	key   int
	idx   map[string]int
	stats *Stats
}

func bind(t *table.Table, stats *Stats, fields []field) *binder {
	b := &binder{t: t, key: t.Index(schema.KeyColumn), idx: map[string]int{}, stats: stats}
	for _, f := range fields {
		col, ok := schema.FindColumn(t.Columns, f.preds)
		if !ok {
			stats.MissingColumns = append(stats.MissingColumns, f.name)
			continue
		}
		b.idx[f.name] = t.Index(col)
		stats.Columns[f.name] = col
	}
	return b
}

func (b *binder) debtor(r int) string {
	s, _ := table.Text(b.t.Cell(r, b.key))
	return s
}

func (b *binder) raw(r int, name string) any {
	i, ok := b.idx[name]
	if !ok {
		return nil
	}
	return b.t.Cell(r, i)
}

// number returns the parsed value, whether it parsed, and counts a failure
// when a non-blank cell did not.
func (b *binder) number(r int, name string) (float64, bool) {
	v := b.raw(r, name)
	f, ok := table.Number(v)
	if !ok && !table.IsBlank(v) {
		b.stats.CoercionFailures[b.stats.Columns[name]]++
	}
	return f, ok
}

// amount is number followed by the exact decimal conversion. A value that
// parses but has no decimal form counts as a coercion failure too.
func (b *binder) amount(r int, name string) (float64, money.Amount, bool) {
	f, ok := b.number(r, name)
	if !ok {
		return 0, money.Amount{}, false
	}
	a, err := money.FromFloat(f)
	if err != nil {
		b.stats.CoercionFailures[b.stats.Columns[name]]++
		return 0, money.Amount{}, false
	}
	return f, a, true
}

func (b *binder) date(r int, name string) time.Time {
	v := b.raw(r, name)
	d, ok := table.Date(v)
	if !ok {
		if !table.IsBlank(v) {
			b.stats.CoercionFailures[b.stats.Columns[name]]++
		}
		return time.Time{}
	}
	return d
}

func (b *binder) text(r int, name string) string {
	s, _ := table.Text(b.raw(r, name))
	return s
}

// newer reports whether a candidate dated d should replace a current pick
// dated cur when rows are visited in file order. A dated row beats an undated
// one and on equal dates the later row wins.
func newer(d, cur time.Time) bool {
	if d.IsZero() {
		return cur.IsZero()
	}
	return cur.IsZero() || !d.Before(cur)
}
