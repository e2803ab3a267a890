package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/debtscore/internal/adapters/repository"
	service "github.com/okian/debtscore/internal/app"
	"github.com/okian/debtscore/internal/config"
	"github.com/okian/debtscore/internal/domain/scoring"
	"github.com/okian/debtscore/internal/domain/table"
	"github.com/okian/debtscore/internal/fixtures"
	"github.com/okian/debtscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var reference = time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func portfolio(t *testing.T, debtors int) *fixtures.Portfolio {
	t.Helper()
	p, _, err := fixtures.Generate(context.Background(), &fixtures.Config{
		Debtors:           debtors,
		Seed:              fixtures.DefaultSeed,
		Workers:           2,
		Reference:         reference,
		OrphanRate:        fixtures.DefaultOrphanRate,
		InvalidAmountRate: fixtures.DefaultInvalidAmountRate,
	})
	if err != nil {
		t.Fatalf("generate portfolio: %v", err)
	}
	return p
}

func inputs(p *fixtures.Portfolio) service.Inputs {
	return service.Inputs{
		Cases:    p.Cases,
		Payments: p.Payments,
		Promises: p.Promises,
		Contacts: p.Contacts,
	}
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	p := portfolio(t, 300)

	Convey("Given a complete portfolio", t, func() {
		pipeline := service.New(service.WithReference(reference))
		res, err := pipeline.Run(ctx, inputs(p))
		So(err, ShouldBeNil)

		Convey("Then there is exactly one row per debtor", func() {
			So(res.Records, ShouldHaveLength, 300)
			So(res.Table.Len(), ShouldEqual, 300)
			So(res.Report.Debtors, ShouldEqual, 300)

			seen := map[string]bool{}
			for _, rec := range res.Records {
				So(seen[rec.Case.Debtor], ShouldBeFalse)
				seen[rec.Case.Debtor] = true
			}
		})

		Convey("Then records are in priority order", func() {
			for i, rec := range res.Records {
				So(rec.Scores.Priority, ShouldEqual, i+1)
				if i > 0 {
					So(rec.Scores.Score, ShouldBeLessThanOrEqualTo, res.Records[i-1].Scores.Score+1e-6)
				}
			}
			So(res.Table.Column("prioridad")[0], ShouldEqual, int64(1))
		})

		Convey("Then every score is in range with its category", func() {
			for _, rec := range res.Records {
				So(rec.Scores.Score, ShouldBeBetweenOrEqual, 0, 100)
				So(rec.Scores.Category, ShouldEqual, scoring.Category(rec.Scores.Score))
			}
			total := 0
			for _, n := range res.Report.Categories {
				total += n
			}
			So(total, ShouldEqual, 300)
		})

		Convey("Then every source is reported and none is degraded", func() {
			So(res.Report.Sources, ShouldHaveLength, 5)
			So(res.Report.Degraded(), ShouldBeEmpty)

			pay, ok := res.Report.Source(fixtures.PaymentsFile)
			So(ok, ShouldBeTrue)
			So(pay.Kind, ShouldEqual, service.KindPayments)
			So(pay.Matched, ShouldBeGreaterThan, 0)
			So(pay.Matched, ShouldBeLessThanOrEqualTo, 300)
		})

		Convey("Then the second extract wins for repeated debtors", func() {
			So(res.Report.Duplicates, ShouldBeGreaterThan, 0)
			So(res.Report.CaseDiffs, ShouldHaveLength, 1)
			So(res.Report.CaseDiffs[0].OnlyRight, ShouldContain, "abogado")
		})

		Convey("Then every stage is reported with its weight", func() {
			So(res.Report.Stages, ShouldHaveLength, 3)
			So(res.Report.Stages[0].Stage, ShouldEqual, "contact")
			So(res.Report.Stages[2].Stage, ShouldEqual, "payment")
		})

		Convey("Then the same inputs score the same way", func() {
			again, err := service.New(service.WithReference(reference)).Run(ctx, inputs(p))
			So(err, ShouldBeNil)
			So(again.Table.Rows, ShouldResemble, res.Table.Rows)
		})
	})
}

func TestPipeline_PriorityStore(t *testing.T) {
	ctx := context.Background()
	p := portfolio(t, 80)

	Convey("Given a pipeline with an observed priority store", t, func() {
		var store *repository.TreapStore
		capacity := 0
		pipeline := service.New(
			service.WithReference(reference),
			service.WithStoreFactory(func(n int) repository.Store {
				capacity = n
				store = repository.NewTreapStore(repository.WithCapacity(n))
				return store
			}),
		)
		res, err := pipeline.Run(ctx, inputs(p))
		So(err, ShouldBeNil)

		Convey("Then the store is sized for every debtor and leads with the first records", func() {
			So(capacity, ShouldEqual, 80)
			top, err := store.TopN(ctx, 3)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 3)
			for i, e := range top {
				So(e.Debtor, ShouldEqual, res.Records[i].Case.Debtor)
				So(e.Priority, ShouldEqual, res.Records[i].Scores.Priority)
			}
		})

		Convey("Then equal scores are ordered by numeric debtor key", func() {
			for i := 1; i < len(res.Records); i++ {
				prev, cur := res.Records[i-1], res.Records[i]
				if prev.Scores.Score == cur.Scores.Score {
					So(repository.DebtorLess(prev.Case.Debtor, cur.Case.Debtor), ShouldBeTrue)
				}
			}
		})
	})
}

func TestPipeline_Degraded(t *testing.T) {
	ctx := context.Background()
	p := portfolio(t, 200)

	Convey("Given no payments source", t, func() {
		in := inputs(p)
		in.Payments = nil
		res, err := service.New(service.WithReference(reference)).Run(ctx, in)
		So(err, ShouldBeNil)

		Convey("Then the run completes with empty payment summaries", func() {
			So(res.Records, ShouldHaveLength, 200)
			for _, rec := range res.Records {
				So(rec.Payment.Count, ShouldEqual, 0)
				So(rec.Payment.TotalPaid, ShouldEqual, 0)
			}
		})

		Convey("Then the payment stage degrades and carries no weight", func() {
			stage := res.Report.Stages[2]
			So(stage.Stage, ShouldEqual, "payment")
			So(stage.Status, ShouldEqual, string(scoring.StatusDegraded))
			So(stage.Reason, ShouldNotBeEmpty)
			So(stage.Weight, ShouldEqual, 0)
		})
	})

	Convey("Given a contacts source whose headers collide", t, func() {
		in := inputs(p)
		contacts := table.New(fixtures.ContactsFile, []string{"Documento", "Fecha Gestión", "FECHA GESTION"})
		contacts.Append("1000001", "2024-01-01", "2024-01-02")
		in.Contacts = contacts
		res, err := service.New(service.WithReference(reference)).Run(ctx, in)
		So(err, ShouldBeNil)

		Convey("Then only that source is degraded", func() {
			So(res.Report.Degraded(), ShouldResemble, []string{fixtures.ContactsFile})
			src, ok := res.Report.Source(fixtures.ContactsFile)
			So(ok, ShouldBeTrue)
			So(src.Reason, ShouldEqual, service.ReasonCollision)
			So(res.Records, ShouldHaveLength, 200)
		})
	})

	Convey("Given a promises source without an identifier column", t, func() {
		in := inputs(p)
		promises := table.New(fixtures.PromisesFile, []string{"Valor", "Fecha"})
		promises.Append(100.0, "2024-01-01")
		in.Promises = promises
		res, err := service.New(service.WithReference(reference)).Run(ctx, in)
		So(err, ShouldBeNil)

		Convey("Then it is reported as missing its identifier", func() {
			src, ok := res.Report.Source(fixtures.PromisesFile)
			So(ok, ShouldBeTrue)
			So(src.Degraded, ShouldBeTrue)
			So(src.Reason, ShouldEqual, service.ReasonMissingIdentifier)
		})
	})

	Convey("Given no case extract", t, func() {
		in := inputs(p)
		in.Cases = nil
		_, err := service.New().Run(ctx, in)

		Convey("Then the run fails", func() {
			So(errors.Is(err, service.ErrNoCaseTable), ShouldBeTrue)
		})
	})

	Convey("Given a case extract without an identifier column", t, func() {
		in := inputs(p)
		bad := table.New("casos", []string{"Saldo", "Producto"})
		bad.Append(1000.0, "Libranza")
		in.Cases = []*table.Table{bad}
		_, err := service.New().Run(ctx, in)

		Convey("Then the run fails", func() {
			So(errors.Is(err, service.ErrNoCaseTable), ShouldBeTrue)
		})
	})
}

func TestPipeline_RunFiles(t *testing.T) {
	ctx := context.Background()

	Convey("Given a portfolio written to disk", t, func() {
		dir := t.TempDir()
		files, err := fixtures.Run(ctx, &fixtures.Config{
			Debtors:   150,
			Seed:      fixtures.DefaultSeed,
			Workers:   2,
			Reference: reference,
			Dir:       dir,
			Format:    ".csv",
		})
		So(err, ShouldBeNil)

		cfg := config.New()
		cfg.CaseFiles = files.Cases
		cfg.PaymentsFile = files.Payments
		cfg.PromisesFile = filepath.Join(dir, "missing.csv")
		cfg.ContactsFile = files.Contacts
		cfg.OutputFile = filepath.Join(dir, "consolidado.csv")
		cfg.MetricsFile = filepath.Join(dir, "metrics.prom")
		cfg.ReferenceDate = reference.Format(time.DateOnly)
		cfg.Iterations = 100

		pipeline, err := service.NewFromConfig(cfg, time.Now())
		So(err, ShouldBeNil)
		res, err := pipeline.RunFiles(ctx, cfg)
		So(err, ShouldBeNil)

		Convey("Then the missing file degrades its source", func() {
			src, ok := res.Report.Source("missing")
			So(ok, ShouldBeTrue)
			So(src.Reason, ShouldEqual, service.ReasonMissingFile)
			So(src.Path, ShouldEqual, cfg.PromisesFile)
		})

		Convey("Then the consolidated output and metrics are written", func() {
			So(res.Report.Output, ShouldEqual, cfg.OutputFile)
			So(res.Report.Reference, ShouldEqual, reference)
			_, err = os.Stat(cfg.OutputFile)
			So(err, ShouldBeNil)
			_, err = os.Stat(cfg.MetricsFile)
			So(err, ShouldBeNil)

			pay, ok := res.Report.Source(fixtures.PaymentsFile)
			So(ok, ShouldBeTrue)
			So(pay.Path, ShouldEqual, files.Payments)
		})
	})

	Convey("Given an invalid reference date", t, func() {
		cfg := config.New()
		cfg.ReferenceDate = "30/09/2024"
		_, err := service.NewFromConfig(cfg, time.Now())

		Convey("Then the pipeline is not built", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
