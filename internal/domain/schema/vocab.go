package schema

import (
	"strings"
	"unicode"
)

// Token reduces a free-text label to a comparison key: repaired, folded,
// upper-cased, punctuation collapsed to single spaces.
// "  Compra de   cartera." becomes "COMPRA DE CARTERA".
func Token(s string) string {
	s = strings.ToUpper(Fold(RepairText(s)))
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Not negates p.
func Not(p Predicate) Predicate {
	return Predicate{Name: "not:" + p.Name, Match: func(col string) bool { return !p.Match(col) }}
}

// All matches when every predicate matches.
func All(preds ...Predicate) Predicate {
	names := make([]string, len(preds))
	for i, p := range preds {
		names[i] = p.Name
	}
	return Predicate{
		Name: "all:" + strings.Join(names, ","),
		Match: func(col string) bool {
			for _, p := range preds {
				if !p.Match(col) {
					return false
				}
			}
			return true
		},
	}
}
