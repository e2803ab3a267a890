package aggregate

import (
	"time"

	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/table"
)

// Contacts reduces a debtor's interaction log to the best and the most
// recent contact.
type Contacts struct {
	Taxonomy *Taxonomy
}

// NewContacts returns a contacts aggregator ranking with categories, best first.
func NewContacts(categories []string) *Contacts {
	return &Contacts{Taxonomy: NewTaxonomy(categories)}
}

// Aggregate implements Aggregator.
func (c *Contacts) Aggregate(t *table.Table) *Result[model.ContactSummary] {
	res := Empty[model.ContactSummary](SourceContacts)
	if t == nil {
		return res
	}
	b := bind(t, &res.Stats, contactFields)

	for r := range t.Rows {
		d := b.debtor(r)
		if d == "" {
			continue
		}
		res.Stats.Rows++
		s, seen := res.Summaries[d]
		s.Count++

		date := b.date(r, FieldDate)
		category := b.text(r, FieldCategory)
		action := b.text(r, FieldAction)
		response := b.text(r, FieldResponse)
		rank := c.Taxonomy.Rank(category)

		if !seen || better(rank, date, s.BestRank, s.BestDate) {
			s.BestRank = rank
			s.BestCategory = category
			s.BestDate = date
			s.BestAction = action
			s.BestResponse = response
		}
		if !seen || newer(date, s.LastDate) {
			s.LastCategory = category
			s.LastDate = date
			s.LastAction = action
			s.LastResponse = response
		}
		res.Summaries[d] = s
	}
	res.Stats.Debtors = len(res.Summaries)
	return res
}

// better orders contacts by rank, then recency.
func better(rank int, date time.Time, curRank int, curDate time.Time) bool {
	if rank != curRank {
		return rank < curRank
	}
	return newer(date, curDate)
}

// Make sure the aggregators satisfy the interface.
var (
	_ Aggregator[model.PaymentSummary] = Payments{}
	_ Aggregator[model.PromiseSummary] = Promises{}
	_ Aggregator[model.ContactSummary] = (*Contacts)(nil)
)
