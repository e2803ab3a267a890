package aggregate

import "github.com/okian/debtscore/internal/domain/schema"

// Taxonomy ranks contact categories by effectiveness, 1 being the best.
type Taxonomy struct {
	ranks map[string]int
	n     int
}

// NewTaxonomy builds a taxonomy from categories ordered best first.
func NewTaxonomy(categories []string) *Taxonomy {
	t := &Taxonomy{ranks: make(map[string]int, len(categories))}
	for _, c := range categories {
		k := schema.Token(c)
		if k == "" {
			continue
		}
		if _, dup := t.ranks[k]; dup {
			continue
		}
		t.n++
		t.ranks[k] = t.n
	}
	return t
}

// Rank returns the rank of category. Unmapped and blank categories rank
// after every mapped one.
func (t *Taxonomy) Rank(category string) int {
	if r, ok := t.ranks[schema.Token(category)]; ok {
		return r
	}
	return t.Unmapped()
}

// Unmapped is the rank given to categories outside the taxonomy.
func (t *Taxonomy) Unmapped() int {
	return t.n + 1
}
