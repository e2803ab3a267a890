package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/okian/debtscore/internal/adapters/sheet"
	"github.com/okian/debtscore/internal/config"
	"github.com/okian/debtscore/internal/domain/scoring"
	"github.com/okian/debtscore/internal/domain/table"
	"github.com/okian/debtscore/pkg/logger"
	"github.com/okian/debtscore/pkg/metrics"
)

// NewFromConfig builds a Pipeline from process configuration. now anchors
// the reference date when none is configured.
func NewFromConfig(cfg *config.Config, now time.Time, opts ...Option) (*Pipeline, error) {
	reference, err := cfg.Reference(now)
	if err != nil {
		return nil, err
	}
	scorer := scoring.New(
		scoring.WithSeed(cfg.Seed),
		scoring.WithTestFraction(cfg.TestFraction),
		scoring.WithClip(cfg.ClipMin, cfg.ClipMax),
		scoring.WithWeights(cfg.WeightContact, cfg.WeightNegotiation, cfg.WeightPayment),
		scoring.WithRenormalize(cfg.RenormalizeWeights),
		scoring.WithCascade(cfg.Cascade),
		scoring.WithClassifier(scoring.LogisticFactory(
			scoring.WithIterations(cfg.Iterations),
			scoring.WithLearningRate(cfg.LearningRate),
			scoring.WithL2(cfg.L2),
		)),
	)
	base := []Option{
		WithReference(reference),
		WithIdentifierKeywords(cfg.IdentifierKeywords),
		WithContactTaxonomy(cfg.ContactTaxonomy),
		WithBalanceBands(cfg.BalanceBands),
		WithScorer(scorer),
	}
	return New(append(base, opts...)...), nil
}

// RunFiles reads every configured input, runs the pipeline and writes the
// consolidated artifact to cfg.OutputFile. When cfg.MetricsFile is set the
// run metrics are written there as well.
func (p *Pipeline) RunFiles(ctx context.Context, cfg *config.Config) (*Result, error) {
	var in Inputs
	paths := map[string]string{}

	load := func(kind, path string) *table.Table {
		if path == "" {
			return nil
		}
		paths[sheet.Name(path)] = path
		t, err := read(ctx, path)
		if err == nil {
			return t
		}
		sr := SourceReport{Name: sheet.Name(path), Kind: kind, Path: path, Degraded: true, Reason: ReasonReadError, Err: err}
		if errors.Is(err, fs.ErrNotExist) {
			sr.Reason = ReasonMissingFile
		}
		metrics.RecordSourceDegraded(sr.Name, sr.Reason)
		p.logger.Warn(ctx, "source unavailable",
			logger.String("source", sr.Name),
			logger.String("path", path),
			logger.String("reason", sr.Reason),
			logger.Error(err))
		in.Unread = append(in.Unread, sr)
		return nil
	}

	for _, path := range cfg.CaseFiles {
		if t := load(KindCase, path); t != nil {
			in.Cases = append(in.Cases, t)
		}
	}
	in.Payments = load(KindPayments, cfg.PaymentsFile)
	in.Promises = load(KindPromises, cfg.PromisesFile)
	in.Contacts = load(KindContacts, cfg.ContactsFile)

	res, err := p.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	for i := range res.Report.Sources {
		s := &res.Report.Sources[i]
		if s.Path == "" {
			s.Path = paths[s.Name]
		}
	}

	if err := sheet.Write(ctx, cfg.OutputFile, res.Table); err != nil {
		return res, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	res.Report.Output = cfg.OutputFile
	p.logger.Info(ctx, "consolidated output written",
		logger.String("path", cfg.OutputFile),
		logger.Int("rows", res.Table.Len()))

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			p.logger.Warn(ctx, "failed to write metrics textfile",
				logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}
	return res, nil
}

func read(ctx context.Context, path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return sheet.Read(ctx, path)
}
