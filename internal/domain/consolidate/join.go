package consolidate

import (
	"github.com/okian/debtscore/internal/domain/aggregate"
	"github.com/okian/debtscore/internal/domain/model"
)

// Summaries groups the auxiliary aggregations. Nil members are treated as
// empty.
type Summaries struct {
	Payments *aggregate.Result[model.PaymentSummary]
	Promises *aggregate.Result[model.PromiseSummary]
	Contacts *aggregate.Result[model.ContactSummary]
}

// JoinStats counts case rows matched per source.
type JoinStats struct {
	Matched map[string]int
}

// Join left-joins every summary onto the case table. The output holds exactly
// one record per case row, in case order. Debtors a source has no summary for
// get zero counts and sums and model.NoData categories.
func Join(ct *CaseTable, s Summaries) ([]model.Record, JoinStats) {
	stats := JoinStats{Matched: map[string]int{
		aggregate.SourcePayments: 0,
		aggregate.SourcePromises: 0,
		aggregate.SourceContacts: 0,
	}}
	out := make([]model.Record, len(ct.Cases))
	for i, c := range ct.Cases {
		rec := model.Record{Case: c}

		if p, ok := lookup(s.Payments, c.Debtor); ok {
			rec.Payment = p
			stats.Matched[aggregate.SourcePayments]++
		}

		rec.Promise = model.PromiseSummary{LastStatus: model.NoData, LastChannel: model.NoData}
		if p, ok := lookup(s.Promises, c.Debtor); ok {
			p.LastStatus = blankToNoData(p.LastStatus)
			rec.Promise = p
			stats.Matched[aggregate.SourcePromises]++
		}

		rec.Contact = model.ContactSummary{
			BestCategory: model.NoData, BestAction: model.NoData, BestResponse: model.NoData,
			LastCategory: model.NoData, LastAction: model.NoData, LastResponse: model.NoData,
		}
		if ctc, ok := lookup(s.Contacts, c.Debtor); ok {
			ctc.BestCategory = blankToNoData(ctc.BestCategory)
			ctc.BestAction = blankToNoData(ctc.BestAction)
			ctc.BestResponse = blankToNoData(ctc.BestResponse)
			ctc.LastCategory = blankToNoData(ctc.LastCategory)
			ctc.LastAction = blankToNoData(ctc.LastAction)
			ctc.LastResponse = blankToNoData(ctc.LastResponse)
			rec.Contact = ctc
			stats.Matched[aggregate.SourceContacts]++
		}
		out[i] = rec
	}
	return out, stats
}

func lookup[T any](r *aggregate.Result[T], debtor string) (T, bool) {
	if r == nil {
		var zero T
		return zero, false
	}
	return r.Get(debtor)
}

func blankToNoData(s string) string {
	if s == "" {
		return model.NoData
	}
	return s
}
