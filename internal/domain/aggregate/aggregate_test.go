package aggregate_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/debtscore/internal/domain/aggregate"
	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPayments(t *testing.T) {
	Convey("Given a payments table with two debtors", t, func() {
		tbl := table.New("pagos", []string{"deudor", "valor_pago", "fecha_pago"})
		tbl.Append("1", 100.0, "2024-01-01")
		tbl.Append("1", 50.0, "2024-03-01")
		tbl.Append("2", 30.0, "2024-02-01")

		Convey("When aggregated", func() {
			res := aggregate.Payments{}.Aggregate(tbl)

			Convey("Then each debtor has its sum, count and latest date", func() {
				So(res.Summaries, ShouldHaveLength, 2)
				d1, ok := res.Get("1")
				So(ok, ShouldBeTrue)
				So(d1.TotalPaid, ShouldEqual, 150)
				So(d1.Count, ShouldEqual, 2)
				So(d1.LastDate, ShouldEqual, day("2024-03-01"))

				d2, _ := res.Get("2")
				So(d2.TotalPaid, ShouldEqual, 30)
				So(d2.Count, ShouldEqual, 1)
				So(d2.LastDate, ShouldEqual, day("2024-02-01"))
			})

			Convey("And the bound columns are reported", func() {
				So(res.Stats.Columns[aggregate.FieldAmount], ShouldEqual, "valor_pago")
				So(res.Stats.Columns[aggregate.FieldDate], ShouldEqual, "fecha_pago")
				So(res.Stats.Rows, ShouldEqual, 3)
				So(res.Stats.Debtors, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a payment with a malformed amount", t, func() {
		tbl := table.New("pagos", []string{"deudor", "monto", "fecha"})
		tbl.Append("7", "abc", "2024-05-05")
		tbl.Append("7", "$ 1.000,50", "")
		tbl.Append("7", nil, "not a date")

		res := aggregate.Payments{}.Aggregate(tbl)
		s, _ := res.Get("7")

		Convey("Then the row still counts and adds nothing", func() {
			So(s.Count, ShouldEqual, 3)
			So(s.TotalPaid, ShouldEqual, 1000.50)
			So(s.InvalidAmounts, ShouldEqual, 1)
			So(s.LastDate, ShouldEqual, day("2024-05-05"))
		})

		Convey("And failures are counted per column", func() {
			So(res.Stats.CoercionFailures["monto"], ShouldEqual, 1)
			So(res.Stats.CoercionFailures["fecha"], ShouldEqual, 1)
		})
	})

	Convey("Given a payment amount with no decimal form", t, func() {
		tbl := table.New("pagos", []string{"deudor", "monto"})
		tbl.Append("8", math.Inf(1))
		tbl.Append("8", 250.0)

		res := aggregate.Payments{}.Aggregate(tbl)
		s, _ := res.Get("8")

		Convey("Then it is reported as invalid instead of dropped silently", func() {
			So(s.Count, ShouldEqual, 2)
			So(s.TotalPaid, ShouldEqual, 250)
			So(s.InvalidAmounts, ShouldEqual, 1)
			So(res.Stats.CoercionFailures["monto"], ShouldEqual, 1)
		})
	})

	Convey("Given decimal amounts that drift in binary floating point", t, func() {
		tbl := table.New("pagos", []string{"deudor", "valor"})
		for i := 0; i < 10; i++ {
			tbl.Append("1", 0.1)
		}
		s, _ := aggregate.Payments{}.Aggregate(tbl).Get("1")

		Convey("Then the sum is exact", func() {
			So(s.TotalPaid, ShouldEqual, 1.0)
		})
	})

	Convey("Given no table", t, func() {
		res := aggregate.Payments{}.Aggregate(nil)

		Convey("Then the result is empty", func() {
			So(res.Summaries, ShouldBeEmpty)
			So(res.Source, ShouldEqual, aggregate.SourcePayments)
		})
	})

	Convey("Given a table without an amount column", t, func() {
		tbl := table.New("pagos", []string{"deudor", "fecha"})
		tbl.Append("3", "2024-01-01")
		res := aggregate.Payments{}.Aggregate(tbl)

		Convey("Then rows are counted and the field is reported missing", func() {
			s, _ := res.Get("3")
			So(s.Count, ShouldEqual, 1)
			So(s.TotalPaid, ShouldEqual, 0)
			So(res.Stats.MissingColumns, ShouldContain, aggregate.FieldAmount)
		})
	})
}

func TestPromises(t *testing.T) {
	Convey("Given several promises for one debtor", t, func() {
		tbl := table.New("promesas", []string{"deudor", "valor_promesa", "fecha_promesa", "estado", "canal"})
		tbl.Append("9", 200.0, "2024-02-01", "Cumplida", "Compra de cartera")
		tbl.Append("9", 300.0, "2024-04-01", "Incumplida", "call center")
		tbl.Append("9", 400.0, "2024-04-01", "Vigente", "whatsapp")
		tbl.Append("9", 500.0, "", "Pagada", "")

		res := aggregate.Promises{}.Aggregate(tbl)
		s, ok := res.Get("9")
		So(ok, ShouldBeTrue)

		Convey("Then the last promise is the later row on the latest date", func() {
			So(s.Count, ShouldEqual, 4)
			So(s.LastDate, ShouldEqual, day("2024-04-01"))
			So(*s.LastValue, ShouldEqual, 400)
			So(s.LastStatus, ShouldEqual, "Vigente")
			So(s.LastChannel, ShouldEqual, aggregate.ChannelDigital)
		})

		Convey("And totals split promised from fulfilled", func() {
			So(s.TotalPromised, ShouldEqual, 1400)
			So(s.TotalFulfilled, ShouldEqual, 700)
		})
	})

	Convey("Given only undated promises", t, func() {
		tbl := table.New("promesas", []string{"deudor", "valor", "canal"})
		tbl.Append("4", 10.0, "oficina")
		tbl.Append("4", 20.0, "???")
		s, _ := aggregate.Promises{}.Aggregate(tbl).Get("4")

		Convey("Then the later row wins and unknown channels map to the sentinel", func() {
			So(*s.LastValue, ShouldEqual, 20)
			So(s.LastDate.IsZero(), ShouldBeTrue)
			So(s.LastChannel, ShouldEqual, model.UnknownChannel)
		})
	})
}

func TestNormalizeChannel(t *testing.T) {
	Convey("Given channel spellings", t, func() {
		Convey("Then synonyms fold to one tag", func() {
			So(aggregate.NormalizeChannel("CARTERA COMPRADA"), ShouldEqual, aggregate.ChannelPurchasedPortfolio)
			So(aggregate.NormalizeChannel(" compra  cartera "), ShouldEqual, aggregate.ChannelPurchasedPortfolio)
			So(aggregate.NormalizeChannel("cartera_comprada"), ShouldEqual, aggregate.ChannelPurchasedPortfolio)
			So(aggregate.NormalizeChannel("Jurídico"), ShouldEqual, aggregate.ChannelLegal)
		})

		Convey("Then blanks and unknowns are never empty", func() {
			So(aggregate.NormalizeChannel(""), ShouldEqual, model.UnknownChannel)
			So(aggregate.NormalizeChannel("paloma mensajera"), ShouldEqual, model.UnknownChannel)
		})
	})

	Convey("Given promise statuses", t, func() {
		So(aggregate.Fulfilled("Cumplida"), ShouldBeTrue)
		So(aggregate.Fulfilled("PAGADO"), ShouldBeTrue)
		So(aggregate.Fulfilled("incumplida"), ShouldBeFalse)
		So(aggregate.Fulfilled(""), ShouldBeFalse)
	})
}

func TestContacts(t *testing.T) {
	taxonomy := []string{"Pago total", "Promesa de pago", "Contacto titular", "Mensaje", "No contacto"}

	Convey("Given an old effective contact and a recent ineffective one", t, func() {
		tbl := table.New("gestiones", []string{"deudor", "fecha_gestion", "tipificacion", "accion", "respuesta"})
		tbl.Append("1", "2024-05-01", "No contacto", "llamada", "no contesta")
		tbl.Append("1", "2024-01-01", "Pago total", "visita", "pago")

		res := aggregate.NewContacts(taxonomy).Aggregate(tbl)
		s, _ := res.Get("1")

		Convey("Then best and last are distinct records", func() {
			So(s.Count, ShouldEqual, 2)
			So(s.BestRank, ShouldEqual, 1)
			So(s.BestCategory, ShouldEqual, "Pago total")
			So(s.BestAction, ShouldEqual, "visita")
			So(s.LastCategory, ShouldEqual, "No contacto")
			So(s.LastDate, ShouldEqual, day("2024-05-01"))
			So(s.LastResponse, ShouldEqual, "no contesta")
			So(s.BestCategory, ShouldNotEqual, s.LastCategory)
		})
	})

	Convey("Given equal ranks on different dates", t, func() {
		tbl := table.New("gestiones", []string{"deudor", "fecha", "resultado"})
		tbl.Append("2", "2024-03-01", "Mensaje")
		tbl.Append("2", "2024-06-01", "mensaje")
		tbl.Append("2", "2024-02-01", "MENSAJE")
		s, _ := aggregate.NewContacts(taxonomy).Aggregate(tbl).Get("2")

		Convey("Then the most recent of them is best", func() {
			So(s.BestRank, ShouldEqual, 4)
			So(s.BestDate, ShouldEqual, day("2024-06-01"))
		})
	})

	Convey("Given a category outside the taxonomy", t, func() {
		tx := aggregate.NewTaxonomy(taxonomy)

		Convey("Then it ranks after every mapped one", func() {
			So(tx.Rank("otra cosa"), ShouldEqual, len(taxonomy)+1)
			So(tx.Rank(""), ShouldEqual, tx.Unmapped())
			So(tx.Rank("promesa de PAGO"), ShouldEqual, 2)
		})
	})
}
