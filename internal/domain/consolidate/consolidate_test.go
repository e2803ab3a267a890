package consolidate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/debtscore/internal/domain/aggregate"
	"github.com/okian/debtscore/internal/domain/consolidate"
	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func extracts() []*table.Table {
	first := table.New("jur_ene_marzo", []string{"deudor", "saldo_capital", "dias_mora", "producto", "etapa"})
	first.Append("1", 1000.0, 30.0, "Libranza", "Demanda")
	first.Append("2", 2000.0, 60.0, "Consumo", "")
	first.Append("3", "n/a", nil, "Vehiculo", "Embargo")

	second := table.New("jur_abril_sep", []string{"deudor", "saldo_capital", "dias_mora", "producto", "acuerdo"})
	second.Append("2", 2500.0, 90.0, "Consumo", "AC-1")
	second.Append("4", 500.0, 10.0, "Libranza", "")
	return []*table.Table{first, second}
}

func TestCases(t *testing.T) {
	Convey("Given two chronological case extracts", t, func() {
		ct, err := consolidate.Cases(extracts())
		So(err, ShouldBeNil)

		Convey("Then debtors are unique and the later occurrence wins", func() {
			So(ct.Cases, ShouldHaveLength, 4)
			So(ct.Duplicates, ShouldEqual, 1)
			debtors := []string{}
			for _, c := range ct.Cases {
				debtors = append(debtors, c.Debtor)
			}
			So(debtors, ShouldResemble, []string{"1", "3", "2", "4"})

			two := ct.Cases[2]
			So(*two.Balance, ShouldEqual, 2500)
			So(two.Extract, ShouldEqual, "jur_abril_sep")
			So(two.Agreement, ShouldEqual, "AC-1")
			So(two.LegalStage, ShouldBeEmpty)
		})

		Convey("Then the union keeps the first extract's column order", func() {
			So(ct.Table.Columns, ShouldResemble,
				[]string{"deudor", "saldo_capital", "dias_mora", "producto", "etapa", "acuerdo"})
		})

		Convey("Then column differences are reported", func() {
			So(ct.Diffs, ShouldHaveLength, 1)
			So(ct.Diffs[0].OnlyLeft, ShouldResemble, []string{"etapa"})
			So(ct.Diffs[0].OnlyRight, ShouldResemble, []string{"acuerdo"})
		})

		Convey("Then case fields are bound and bad numbers become missing", func() {
			So(ct.Columns[consolidate.FieldBalance], ShouldEqual, "saldo_capital")
			So(ct.Columns[consolidate.FieldDaysPastDue], ShouldEqual, "dias_mora")
			So(ct.Cases[1].Balance, ShouldBeNil)
			So(ct.Cases[1].DaysPastDue, ShouldBeNil)
			So(ct.CoercionFailures["saldo_capital"], ShouldEqual, 1)
			So(ct.Cases[3].Agreement, ShouldBeEmpty)
		})
	})

	Convey("Given no usable extract", t, func() {
		noKey := table.New("x", []string{"nombre"})
		_, err := consolidate.Cases([]*table.Table{nil, noKey})

		Convey("Then the case table is reported unusable", func() {
			So(errors.Is(err, consolidate.ErrNoCases), ShouldBeTrue)
		})
	})
}

func TestJoin(t *testing.T) {
	Convey("Given cases and sources with zero, one and many rows per debtor", t, func() {
		ct, err := consolidate.Cases(extracts())
		So(err, ShouldBeNil)

		pay := table.New("pagos", []string{"deudor", "valor", "fecha"})
		pay.Append("1", 10.0, "2024-01-01")
		pay.Append("1", 15.0, "2024-02-01")
		pay.Append("99", 5.0, "2024-01-01")

		contacts := table.New("gestiones", []string{"deudor", "fecha", "tipificacion"})
		contacts.Append("2", "2024-03-01", "")

		records, stats := consolidate.Join(ct, consolidate.Summaries{
			Payments: aggregate.Payments{}.Aggregate(pay),
			Contacts: aggregate.NewContacts([]string{"Pago total"}).Aggregate(contacts),
		})

		Convey("Then every case appears exactly once in case order", func() {
			So(records, ShouldHaveLength, len(ct.Cases))
			seen := map[string]int{}
			for _, r := range records {
				seen[r.Case.Debtor]++
			}
			for _, c := range ct.Cases {
				So(seen[c.Debtor], ShouldEqual, 1)
			}
			So(seen, ShouldNotContainKey, "99")
		})

		Convey("Then matched debtors carry their summaries", func() {
			So(records[0].Payment.TotalPaid, ShouldEqual, 25)
			So(records[0].Payment.Count, ShouldEqual, 2)
			So(stats.Matched[aggregate.SourcePayments], ShouldEqual, 1)
			So(stats.Matched[aggregate.SourceContacts], ShouldEqual, 1)
			So(records[2].Contact.Count, ShouldEqual, 1)
			So(records[2].Contact.BestCategory, ShouldEqual, model.NoData)
		})

		Convey("Then unmatched debtors get zero and sentinel defaults", func() {
			r := records[3]
			So(r.Payment.Count, ShouldEqual, 0)
			So(r.Payment.TotalPaid, ShouldEqual, 0)
			So(r.Promise.Count, ShouldEqual, 0)
			So(r.Promise.LastStatus, ShouldEqual, model.NoData)
			So(r.Promise.LastChannel, ShouldEqual, model.NoData)
			So(r.Promise.LastValue, ShouldBeNil)
			So(r.Contact.LastCategory, ShouldEqual, model.NoData)
			So(r.Contact.LastDate.IsZero(), ShouldBeTrue)
		})

		Convey("When flattened", func() {
			records[0].Scores = model.Scores{Contact: 0.5, Negotiation: math.NaN(), Payment: 0.25, Score: 40, Category: "Low", Priority: 1}
			out := consolidate.Flatten(ct, records)

			Convey("Then the key leads and derived columns follow the case ones", func() {
				So(out.Columns[0], ShouldEqual, "deudor")
				So(out.Columns[1], ShouldEqual, "saldo_capital")
				So(out.Len(), ShouldEqual, 4)
				So(out.Cell(0, out.Index("pago_total")), ShouldEqual, 25.0)
				So(out.Cell(0, out.Index("prob_negociacion")), ShouldBeNil)
				So(out.Cell(0, out.Index("prob_pago")), ShouldEqual, 0.25)
				So(out.Cell(3, out.Index("pago_ultima_fecha")), ShouldBeNil)
				So(out.Cell(3, out.Index("promesa_ultimo_canal")), ShouldEqual, model.NoData)
				So(out.Cell(3, out.Index("acuerdo")), ShouldEqual, model.NoData)
				So(out.Cell(2, out.Index("acuerdo")), ShouldEqual, "AC-1")
			})
		})
	})
}

func TestHeader(t *testing.T) {
	Convey("Given a case column named like a derived column", t, func() {
		h := consolidate.Header([]string{"deudor", "categoria", "saldo"})

		Convey("Then it is prefixed", func() {
			So(h[:3], ShouldResemble, []string{"deudor", "caso_categoria", "saldo"})
			So(h, ShouldContain, "categoria")
		})
	})
}
