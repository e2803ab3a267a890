package aggregate

import (
	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/money"
	"github.com/okian/debtscore/internal/domain/table"
)

// Promises reduces a debtor's payment commitments.
type Promises struct{}

type promiseAcc struct {
	promised  money.Sum
	fulfilled money.Sum
}

// Aggregate implements Aggregator.
func (Promises) Aggregate(t *table.Table) *Result[model.PromiseSummary] {
	res := Empty[model.PromiseSummary](SourcePromises)
	if t == nil {
		return res
	}
	b := bind(t, &res.Stats, promiseFields)
	acc := map[string]*promiseAcc{}

	for r := range t.Rows {
		d := b.debtor(r)
		if d == "" {
			continue
		}
		res.Stats.Rows++
		s, seen := res.Summaries[d]
		a := acc[d]
		if a == nil {
			a = &promiseAcc{}
			acc[d] = a
		}
		s.Count++

		value, amount, hasValue := b.amount(r, FieldValue)
		status := b.text(r, FieldStatus)
		if hasValue {
			a.promised.Add(amount)
			if Fulfilled(status) {
				a.fulfilled.Add(amount)
			}
		}

		date := b.date(r, FieldDate)
		if !seen || newer(date, s.LastDate) {
			s.LastDate = date
			s.LastStatus = status
			s.LastChannel = NormalizeChannel(b.text(r, FieldChannel))
			s.LastValue = nil
			if hasValue {
				v := value
				s.LastValue = &v
			}
		}
		res.Summaries[d] = s
	}

	for d, a := range acc {
		s := res.Summaries[d]
		s.TotalPromised = a.promised.Total().Float64()
		s.TotalFulfilled = a.fulfilled.Total().Float64()
		res.Summaries[d] = s
	}
	res.Stats.Debtors = len(res.Summaries)
	return res
}
