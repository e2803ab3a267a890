// Package service runs the reconciliation and scoring pipeline: it
// normalizes and resolves every input, aggregates the auxiliary sources,
// consolidates one row per debtor, derives features and scores them.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/okian/debtscore/internal/adapters/repository"
	"github.com/okian/debtscore/internal/domain/aggregate"
	"github.com/okian/debtscore/internal/domain/consolidate"
	"github.com/okian/debtscore/internal/domain/features"
	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/schema"
	"github.com/okian/debtscore/internal/domain/scoring"
	"github.com/okian/debtscore/internal/domain/table"
	"github.com/okian/debtscore/pkg/logger"
	"github.com/okian/debtscore/pkg/metrics"
)

// topDebtors is how many of the first debtors in priority order are logged.
const topDebtors = 10

// Inputs are the raw tables of one run. Nil auxiliary tables are absent
// sources; case extracts are in chronological order.
type Inputs struct {
	Cases    []*table.Table
	Payments *table.Table
	Promises *table.Table
	Contacts *table.Table
	// Unread are sources that could not be loaded at all.
	Unread []SourceReport
}

// Result is the product of a run.
type Result struct {
	Report *Report
	// Records are in collection-priority order.
	Records []model.Record
	// Table is the consolidated artifact, rows in Records order.
	Table *table.Table
}

// Pipeline holds the run-independent configuration of the pipeline.
type Pipeline struct {
	logger    logger.Logger
	keywords  []string
	taxonomy  []string
	bands     []float64
	reference time.Time
	scorer    *scoring.Scorer
	newStore  func(capacity int) repository.Store
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		keywords: []string{"deudor", "documento", "identific"},
		taxonomy: []string{
			"PAGO TOTAL", "PAGO PARCIAL", "PROMESA DE PAGO", "NEGOCIACION",
			"CONTACTO TITULAR", "CONTACTO TERCERO", "MENSAJE", "NO CONTACTO",
		},
		bands:    features.DefaultBands,
		scorer:   scoring.New(),
		newStore: func(capacity int) repository.Store {
			return repository.NewTreapStore(repository.WithCapacity(capacity))
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Nop()
	}
	return p
}

// run carries the state of a single invocation through every step.
type run struct {
	id       string
	log      logger.Logger
	report   *Report
	resolver *schema.Resolver
}

// Run executes every step in order on in-memory tables. It fails only when
// no case extract is usable or ctx is done; any other problem degrades the
// affected source or stage and is recorded on the report.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*Result, error) {
	started := time.Now()
	reference := p.reference
	if reference.IsZero() {
		y, m, d := started.Date()
		reference = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	r := &run{
		id:       uuid.NewString(),
		resolver: schema.NewResolver(p.keywords),
	}
	r.log = p.logger.With(logger.String("run_id", r.id))
	r.report = &Report{RunID: r.id, Reference: reference, Started: started}
	r.report.Sources = append(r.report.Sources, in.Unread...)
	r.log.Info(ctx, "pipeline run started",
		logger.Int("caseExtracts", len(in.Cases)),
		logger.String("reference", reference.Format(time.DateOnly)))

	var extracts []*table.Table
	for _, t := range in.Cases {
		if t == nil {
			continue
		}
		if resolved := r.prepare(ctx, KindCase, t); resolved != nil {
			extracts = append(extracts, resolved)
		}
	}
	ct, err := consolidate.Cases(extracts)
	if err != nil {
		r.log.Error(ctx, "no usable case table", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrNoCaseTable, err)
	}
	r.recordCases(ctx, ct)

	summaries := consolidate.Summaries{
		Payments: aggregateSource[model.PaymentSummary](ctx, r, KindPayments, in.Payments, aggregate.Payments{}),
		Promises: aggregateSource[model.PromiseSummary](ctx, r, KindPromises, in.Promises, aggregate.Promises{}),
		Contacts: aggregateSource[model.ContactSummary](ctx, r, KindContacts, in.Contacts, aggregate.NewContacts(p.taxonomy)),
	}
	records, joinStats := consolidate.Join(ct, summaries)
	for i := range r.report.Sources {
		s := &r.report.Sources[i]
		if s.Kind != KindCase {
			s.Matched = joinStats.Matched[sourceName(s.Kind)]
		}
	}
	r.report.Debtors = len(records)
	r.log.Info(ctx, "consolidated", logger.Int("debtors", len(records)), logger.Any("matched", joinStats.Matched))

	features.New(reference, features.WithBands(p.bands)).DeriveAll(records)

	scored, err := p.scorer.Score(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	r.recordStages(ctx, scored)

	records, err = p.prioritize(ctx, r.log, records)
	if err != nil {
		return nil, err
	}
	out := consolidate.Flatten(ct, records)

	r.report.Categories = scored.Categories
	r.report.Duration = time.Since(started)
	for cat, n := range scored.Categories {
		metrics.UpdateCategoryCount(cat, n)
	}
	metrics.RecordRunCompleted(r.report.Duration.Seconds(), time.Now().Unix())
	r.log.Info(ctx, "pipeline run finished",
		logger.Int("debtors", len(records)),
		logger.Any("categories", scored.Categories),
		logger.Strings("degraded", r.report.Degraded()),
		logger.Duration("duration", r.report.Duration))

	return &Result{Report: r.report, Records: records, Table: out}, nil
}

// sourceName maps a source kind to its aggregate source name.
func sourceName(kind string) string {
	switch kind {
	case KindPayments:
		return aggregate.SourcePayments
	case KindPromises:
		return aggregate.SourcePromises
	case KindContacts:
		return aggregate.SourceContacts
	}
	return kind
}

// prepare normalizes headers and cells and resolves the identifier column.
// A nil return means the source is degraded; the reason is on the report.
func (r *run) prepare(ctx context.Context, kind string, t *table.Table) *table.Table {
	sr := SourceReport{Name: t.Name, Kind: kind, RowsRead: t.Len()}
	defer func() { r.report.Sources = append(r.report.Sources, sr) }()
	metrics.RecordRowsRead(t.Name, t.Len())

	norm, err := schema.Normalize(t)
	if err != nil {
		r.degrade(ctx, &sr, ReasonCollision, err)
		return nil
	}
	resolved, err := r.resolver.Resolve(norm)
	if err != nil {
		r.degrade(ctx, &sr, ReasonMissingIdentifier, err)
		return nil
	}
	sr.IdentifierColumn = resolved.Column
	sr.RowsDropped = resolved.Dropped
	if resolved.Dropped > 0 {
		metrics.RecordRowsDropped(t.Name, "invalid_key", resolved.Dropped)
		r.log.Warn(ctx, "dropped rows without a usable identifier",
			logger.String("source", t.Name), logger.Int("rows", resolved.Dropped))
	}
	if resolved.Table.Len() == 0 {
		r.degrade(ctx, &sr, ReasonNoRows, nil)
		return nil
	}
	r.log.Debug(ctx, "source resolved",
		logger.String("source", t.Name),
		logger.String("identifier", resolved.Column),
		logger.Int("rows", resolved.Table.Len()))
	return resolved.Table
}

func (r *run) degrade(ctx context.Context, sr *SourceReport, reason string, err error) {
	sr.Degraded = true
	sr.Reason = reason
	sr.Err = err
	metrics.RecordSourceDegraded(sr.Name, reason)

	fields := []logger.Field{logger.String("source", sr.Name), logger.String("reason", reason)}
	var collision *schema.CollisionError
	if errors.As(err, &collision) {
		fields = append(fields, logger.Strings("originals", collision.Originals))
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	r.log.Warn(ctx, "source degraded", fields...)
}

func (r *run) recordCases(ctx context.Context, ct *consolidate.CaseTable) {
	r.report.CaseDiffs = ct.Diffs
	r.report.Duplicates = ct.Duplicates
	for _, d := range ct.Diffs {
		r.log.Warn(ctx, "case extracts differ in columns",
			logger.String("left", d.Left),
			logger.String("right", d.Right),
			logger.Strings("onlyLeft", d.OnlyLeft),
			logger.Strings("onlyRight", d.OnlyRight))
	}
	for col, n := range ct.CoercionFailures {
		metrics.RecordCoercionFailures(consolidate.CaseTableName, col, n)
	}
	metrics.UpdateDebtorsAggregated(consolidate.CaseTableName, len(ct.Cases))
	r.log.Info(ctx, "case table built",
		logger.Int("debtors", len(ct.Cases)),
		logger.Int("duplicates", ct.Duplicates),
		logger.Any("columns", ct.Columns))
}

// aggregateSource prepares t and reduces it with agg. Absent and degraded
// sources yield an empty result.
func aggregateSource[T any](ctx context.Context, r *run, kind string, t *table.Table, agg aggregate.Aggregator[T]) *aggregate.Result[T] {
	name := sourceName(kind)
	if t == nil {
		return aggregate.Empty[T](name)
	}
	resolved := r.prepare(ctx, kind, t)
	if resolved == nil {
		return aggregate.Empty[T](name)
	}
	res := agg.Aggregate(resolved)

	sr := &r.report.Sources[len(r.report.Sources)-1]
	sr.Debtors = res.Stats.Debtors
	sr.Columns = res.Stats.Columns
	sr.MissingColumns = res.Stats.MissingColumns
	sr.CoercionFailures = res.Stats.CoercionFailures

	for col, n := range res.Stats.CoercionFailures {
		metrics.RecordCoercionFailures(t.Name, col, n)
	}
	metrics.UpdateDebtorsAggregated(name, res.Stats.Debtors)
	if len(res.Stats.MissingColumns) > 0 {
		r.log.Warn(ctx, "source columns not found",
			logger.String("source", t.Name), logger.Strings("fields", res.Stats.MissingColumns))
	}
	r.log.Info(ctx, "source aggregated",
		logger.String("source", t.Name),
		logger.Int("rows", res.Stats.Rows),
		logger.Int("debtors", res.Stats.Debtors))
	return res
}

func (r *run) recordStages(ctx context.Context, res *scoring.Result) {
	for _, d := range res.Stages {
		stage := d.Stage.String()
		metrics.RecordStageOutcome(stage, string(d.Status))
		metrics.RecordStageDuration(stage, d.Duration.Seconds())
		if !math.IsNaN(d.AUC) {
			metrics.UpdateStageAUC(stage, d.AUC)
		}
		r.report.Stages = append(r.report.Stages, StageReport{
			Stage:     stage,
			Status:    string(d.Status),
			Reason:    d.Reason(),
			Rows:      d.Rows,
			Train:     d.Train,
			Eval:      d.Eval,
			Positives: d.Positives,
			AUC:       d.AUC,
			Accuracy:  d.Accuracy,
			Weight:    res.Weights[d.Stage],
			Duration:  d.Duration,
		})

		if d.Status == scoring.StatusDegraded {
			r.log.Warn(ctx, "stage degraded", logger.String("stage", stage), logger.Error(d.Err))
			continue
		}
		r.log.Info(ctx, "stage trained",
			logger.String("stage", stage),
			logger.Int("train", d.Train),
			logger.Int("eval", d.Eval),
			logger.Int("positives", d.Positives),
			logger.Float64("auc", d.AUC),
			logger.Float64("accuracy", d.Accuracy))
	}
}

// prioritize ranks records through the priority store and returns them in
// collection order with Scores.Priority set.
func (p *Pipeline) prioritize(ctx context.Context, log logger.Logger, records []model.Record) ([]model.Record, error) {
	store := p.newStore(len(records))
	byDebtor := make(map[string]int, len(records))
	for i := range records {
		rec := &records[i]
		byDebtor[rec.Case.Debtor] = i
		if err := store.Put(ctx, rec.Case.Debtor, rec.Scores.Score, rec.Scores.Category); err != nil {
			return nil, fmt.Errorf("rank debtor %s: %w", rec.Case.Debtor, err)
		}
	}
	out := make([]model.Record, 0, len(records))
	for _, e := range store.All(ctx) {
		rec := records[byDebtor[e.Debtor]]
		rec.Scores.Priority = e.Priority
		out = append(out, rec)
	}

	if top, err := store.TopN(ctx, topDebtors); err == nil {
		debtors := make([]string, 0, len(top))
		for _, e := range top {
			debtors = append(debtors, e.Debtor)
		}
		log.Info(ctx, "top priority debtors", logger.Strings("debtors", debtors))
	}
	return out, nil
}
