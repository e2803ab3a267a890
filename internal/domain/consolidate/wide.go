package consolidate

import (
	"math"
	"time"

	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/schema"
	"github.com/okian/debtscore/internal/domain/table"
)

// OutputTableName names the consolidated artifact.
const OutputTableName = "consolidado"

// Derived output columns, in output order.
var derivedColumns = []string{
	"pago_total", "pago_conteo", "pago_ultima_fecha", "pago_montos_invalidos",
	"promesa_conteo", "promesa_ultimo_valor", "promesa_ultima_fecha", "promesa_ultimo_estado",
	"promesa_ultimo_canal", "promesa_total", "promesa_cumplido",
	"contacto_conteo", "contacto_mejor_rango", "contacto_mejor_categoria", "contacto_mejor_fecha",
	"contacto_mejor_accion", "contacto_mejor_respuesta", "contacto_ultima_categoria",
	"contacto_ultima_fecha", "contacto_ultima_accion", "contacto_ultima_respuesta",
	"dias_desde_pago", "dias_desde_promesa", "dias_desde_contacto",
	"ratio_pagado", "ratio_cumplimiento", "banda_saldo",
	"prob_contacto", "prob_negociacion", "prob_pago", "score", "categoria", "prioridad",
}

// CasePrefix is prepended to case columns whose name collides with a derived
// column.
const CasePrefix = "caso_"

// Header returns the consolidated header for a case header: the key first,
// the remaining case columns, then every derived column.
func Header(caseColumns []string) []string {
	derived := make(map[string]bool, len(derivedColumns))
	for _, c := range derivedColumns {
		derived[c] = true
	}
	out := []string{schema.KeyColumn}
	for _, c := range caseColumns {
		if c == schema.KeyColumn {
			continue
		}
		if derived[c] {
			c = CasePrefix + c
		}
		out = append(out, c)
	}
	return append(out, derivedColumns...)
}

// Flatten renders records as the consolidated table, case cells aligned with
// the header of ct. Blank product, legal stage and agreement cells are
// written as model.NoData.
func Flatten(ct *CaseTable, records []model.Record) *table.Table {
	caseColumns := ct.Table.Columns
	categorical := map[string]bool{}
	for _, f := range []string{FieldProduct, FieldLegalStage, FieldAgreement} {
		if col, ok := ct.Columns[f]; ok {
			categorical[col] = true
		}
	}
	out := table.New(OutputTableName, Header(caseColumns))
	for _, rec := range records {
		row := make([]any, 0, len(out.Columns))
		row = append(row, rec.Case.Debtor)
		for i, c := range caseColumns {
			if c == schema.KeyColumn {
				continue
			}
			var v any
			if i < len(rec.Case.Cells) {
				v = rec.Case.Cells[i]
			}
			if categorical[c] && table.IsBlank(v) {
				v = model.NoData
			}
			row = append(row, v)
		}

		p, pr, ct, f, s := rec.Payment, rec.Promise, rec.Contact, rec.Features, rec.Scores
		row = append(row,
			p.TotalPaid, int64(p.Count), date(p.LastDate), int64(p.InvalidAmounts),
			int64(pr.Count), float(pr.LastValue), date(pr.LastDate), pr.LastStatus,
			pr.LastChannel, pr.TotalPromised, pr.TotalFulfilled,
			int64(ct.Count), int64(ct.BestRank), ct.BestCategory, date(ct.BestDate),
			ct.BestAction, ct.BestResponse, ct.LastCategory,
			date(ct.LastDate), ct.LastAction, ct.LastResponse,
			days(f.DaysSincePayment), days(f.DaysSincePromise), days(f.DaysSinceContact),
			f.PaidRatio, f.FulfilledRatio, int64(f.BalanceBand),
			prob(s.Contact), prob(s.Negotiation), prob(s.Payment), s.Score, s.Category,
			int64(s.Priority),
		)
		out.Rows = append(out.Rows, row)
	}
	return out
}

func date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func float(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func days(d *int) any {
	if d == nil {
		return nil
	}
	return int64(*d)
}

func prob(p float64) any {
	if math.IsNaN(p) {
		return nil
	}
	return p
}
