// Package schema normalizes free-form spreadsheet headers and cells and
// resolves which column carries the debtor identifier.
package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/debtscore/internal/domain/table"
)

// HeaderName folds a human-entered header to [a-z0-9_]: repair, strip
// diacritics, lowercase, whitespace to underscore, drop everything else.
// An empty result is named after its position.
func HeaderName(raw string, index int) string {
	s := Fold(RepairText(raw))
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("unnamed_%d", index)
	}
	return b.String()
}

// Fold removes combining marks after canonical decomposition (á -> a, ñ -> n).
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeHeaders returns the folded header of t. Distinct originals that
// fold to one name are reported as a *CollisionError.
func NormalizeHeaders(t *table.Table) ([]string, error) {
	out := make([]string, len(t.Columns))
	origins := make(map[string][]string, len(t.Columns))
	for i, c := range t.Columns {
		n := HeaderName(c, i)
		out[i] = n
		origins[n] = append(origins[n], c)
	}
	for _, n := range out {
		if len(origins[n]) > 1 {
			return nil, &CollisionError{Source: t.Name, Normalized: n, Originals: origins[n]}
		}
	}
	return out, nil
}

// Normalize folds the headers of t and repairs every text cell. The input
// table is left untouched.
func Normalize(t *table.Table) (*table.Table, error) {
	cols, err := NormalizeHeaders(t)
	if err != nil {
		return nil, err
	}
	repaired := t.Map(func(_ string, v any) any { return RepairCell(v) })
	return repaired.Rename(cols)
}
