package schema

import (
	"regexp"
	"strings"

	"github.com/okian/debtscore/internal/domain/table"
)

// KeyColumn is the canonical debtor identifier column.
const KeyColumn = "deudor"

// Predicate is a named test over a normalized column name.
type Predicate struct {
	Name  string
	Match func(col string) bool
}

// Contains matches columns that contain sub.
func Contains(sub string) Predicate {
	return Predicate{Name: "contains:" + sub, Match: func(col string) bool { return strings.Contains(col, sub) }}
}

// Equals matches the column named exactly name.
func Equals(name string) Predicate {
	return Predicate{Name: "equals:" + name, Match: func(col string) bool { return col == name }}
}

// Keywords turns a vocabulary into Contains predicates, in order.
func Keywords(words ...string) []Predicate {
	out := make([]Predicate, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(strings.ToLower(w)); w != "" {
			out = append(out, Contains(w))
		}
	}
	return out
}

// FindColumn evaluates predicates in rank order and returns the first column,
// in header order, matched by the highest-ranked predicate that matches any.
func FindColumn(cols []string, preds []Predicate) (string, bool) {
	for _, p := range preds {
		for _, c := range cols {
			if p.Match(c) {
				return c, true
			}
		}
	}
	return "", false
}

// Resolved is a table whose identifier column has been renamed to KeyColumn
// and whose key values are canonical.
type Resolved struct {
	Table *table.Table
	// Column is the normalized header the identifier was found under.
	Column string
	// Dropped counts rows whose identifier had no digits.
	Dropped int
}

// Resolver locates and canonicalizes the identifier column of a table.
type Resolver struct {
	predicates []Predicate
}

// NewResolver builds a resolver from a keyword vocabulary. A column already
// named KeyColumn always wins.
func NewResolver(keywords []string) *Resolver {
	preds := append([]Predicate{Equals(KeyColumn)}, Keywords(keywords...)...)
	return &Resolver{predicates: preds}
}

// Resolve renames the identifier column and normalizes its values. Rows whose
// key is empty after normalization are dropped and counted. A table with no
// matching column yields a *MissingIdentifierError.
func (r *Resolver) Resolve(t *table.Table) (*Resolved, error) {
	col, ok := FindColumn(t.Columns, r.predicates)
	if !ok {
		return nil, &MissingIdentifierError{Source: t.Name, Columns: t.Columns}
	}

	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	idx := t.Index(col)
	cols[idx] = KeyColumn

	out := table.New(t.Name, cols)
	dropped := 0
	for i := range t.Rows {
		key, ok := NormalizeKey(t.Cell(i, idx))
		if !ok {
			dropped++
			continue
		}
		row := make([]any, len(cols))
		copy(row, t.Rows[i])
		row[idx] = key
		out.Rows = append(out.Rows, row)
	}
	return &Resolved{Table: out, Column: col, Dropped: dropped}, nil
}

var integralFraction = regexp.MustCompile(`^([0-9]+)\.0+$`)

// NormalizeKey canonicalizes an identifier: text coercion, a trailing ".0"
// from numeric spreadsheet cells removed, every non-digit stripped, leading
// zeros stripped. "00123-A" and 123.0 both become "123".
func NormalizeKey(v any) (string, bool) {
	s, ok := table.Text(v)
	if !ok {
		return "", false
	}
	s = integralFraction.ReplaceAllString(s, "$1")

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	key := strings.TrimLeft(strings.TrimSpace(b.String()), "0")
	return key, key != ""
}
