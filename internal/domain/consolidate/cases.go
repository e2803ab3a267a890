// Package consolidate unions the case extracts into one row per debtor and
// left-joins the auxiliary summaries onto it.
package consolidate

import (
	"github.com/okian/debtscore/internal/domain/dedupe"
	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/schema"
	"github.com/okian/debtscore/internal/domain/table"
)

// CaseTableName is the name of the unioned case table.
const CaseTableName = "casos"

// Case field names.
const (
	FieldBalance     = "balance"
	FieldDaysPastDue = "days_past_due"
	FieldProduct     = "product"
	FieldLegalStage  = "legal_stage"
	FieldAgreement   = "agreement"
)

var caseFields = []struct {
	name  string
	preds []schema.Predicate
}{
	{FieldBalance, []schema.Predicate{
		schema.Contains("saldo"), schema.Contains("capital"), schema.Contains("deuda"),
		schema.Contains("balance"),
	}},
	{FieldDaysPastDue, []schema.Predicate{
		schema.Contains("dias_mora"), schema.Contains("mora"), schema.Contains("dpd"),
		schema.Contains("vencid"), schema.Contains("dias"),
	}},
	{FieldProduct, []schema.Predicate{
		schema.Contains("producto"), schema.Contains("linea"),
	}},
	{FieldLegalStage, []schema.Predicate{
		schema.Contains("etapa"), schema.Contains("fase"), schema.Contains("estado_proceso"),
	}},
	{FieldAgreement, []schema.Predicate{
		schema.Contains("acuerdo"), schema.Contains("convenio"),
	}},
}

// CaseTable is the unioned, deduplicated case table.
type CaseTable struct {
	Table *table.Table
	Cases []model.Case
	// Diffs compares every extract's columns against the first one.
	Diffs []table.ColumnDiff
	// Duplicates counts rows superseded by a later occurrence of the debtor.
	Duplicates int
	// Columns maps each case field to the column it was read from.
	Columns map[string]string
	// CoercionFailures counts unparseable numeric case cells per column.
	CoercionFailures map[string]int
}

// Cases unions resolved case extracts given in chronological order and keeps
// the last occurrence of each debtor. Extracts must carry schema.KeyColumn.
func Cases(extracts []*table.Table) (*CaseTable, error) {
	var usable []*table.Table
	for _, e := range extracts {
		if e != nil && e.Has(schema.KeyColumn) {
			usable = append(usable, e)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoCases
	}

	ct := &CaseTable{Columns: map[string]string{}, CoercionFailures: map[string]int{}}
	for _, e := range usable[1:] {
		if d := table.Diff(usable[0], e); !d.Empty() {
			ct.Diffs = append(ct.Diffs, d)
		}
	}

	union := table.Union(CaseTableName, usable...)
	origin := make([]string, 0, union.Len())
	for _, e := range usable {
		for range e.Rows {
			origin = append(origin, e.Name)
		}
	}

	keys := make([]string, union.Len())
	key := union.Index(schema.KeyColumn)
	for i := range union.Rows {
		keys[i], _ = table.Text(union.Cell(i, key))
	}
	keep := dedupe.KeepLast(keys)
	ct.Table = union.Select(keep)
	ct.Duplicates = union.Len() - len(keep)

	idx := map[string]int{}
	for _, f := range caseFields {
		if col, ok := schema.FindColumn(ct.Table.Columns, f.preds); ok && col != schema.KeyColumn {
			idx[f.name] = ct.Table.Index(col)
			ct.Columns[f.name] = col
		}
	}

	ct.Cases = make([]model.Case, 0, len(keep))
	for r, src := range keep {
		c := model.Case{
			Debtor:  keys[src],
			Extract: origin[src],
			Cells:   ct.Table.Rows[r],
		}
		c.Balance = ct.number(r, idx, FieldBalance)
		c.DaysPastDue = ct.number(r, idx, FieldDaysPastDue)
		c.Product = ct.category(r, idx, FieldProduct)
		c.LegalStage = ct.category(r, idx, FieldLegalStage)
		c.Agreement = ct.category(r, idx, FieldAgreement)
		ct.Cases = append(ct.Cases, c)
	}
	return ct, nil
}

func (ct *CaseTable) number(r int, idx map[string]int, field string) *float64 {
	i, ok := idx[field]
	if !ok {
		return nil
	}
	v := ct.Table.Cell(r, i)
	f, ok := table.Number(v)
	if !ok {
		if !table.IsBlank(v) {
			ct.CoercionFailures[ct.Columns[field]]++
		}
		return nil
	}
	return &f
}

// category returns the text of a categorical case cell, "" when missing.
func (ct *CaseTable) category(r int, idx map[string]int, field string) string {
	i, ok := idx[field]
	if !ok {
		return ""
	}
	s, _ := table.Text(ct.Table.Cell(r, i))
	return s
}
