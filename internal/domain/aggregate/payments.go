package aggregate

import (
	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/money"
	"github.com/okian/debtscore/internal/domain/table"
)

// Payments sums a debtor's payments.
type Payments struct{}

// Aggregate implements Aggregator.
func (Payments) Aggregate(t *table.Table) *Result[model.PaymentSummary] {
	res := Empty[model.PaymentSummary](SourcePayments)
	if t == nil {
		return res
	}
	b := bind(t, &res.Stats, paymentFields)
	sums := map[string]*money.Sum{}

	for r := range t.Rows {
		d := b.debtor(r)
		if d == "" {
			continue
		}
		res.Stats.Rows++
		s := res.Summaries[d]
		s.Count++

		if _, amount, ok := b.amount(r, FieldAmount); ok {
			sum, seen := sums[d]
			if !seen {
				sum = &money.Sum{}
				sums[d] = sum
			}
			sum.Add(amount)
		} else if !table.IsBlank(b.raw(r, FieldAmount)) {
			s.InvalidAmounts++
		}

		if date := b.date(r, FieldDate); !date.IsZero() && date.After(s.LastDate) {
			s.LastDate = date
		}
		res.Summaries[d] = s
	}

	for d, sum := range sums {
		s := res.Summaries[d]
		s.TotalPaid = sum.Total().Float64()
		res.Summaries[d] = s
	}
	res.Stats.Debtors = len(res.Summaries)
	return res
}
