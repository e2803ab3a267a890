package service

import (
	"time"

	"github.com/okian/debtscore/internal/adapters/repository"
	"github.com/okian/debtscore/internal/domain/scoring"
	"github.com/okian/debtscore/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithIdentifierKeywords sets the vocabulary the identifier column is found by.
func WithIdentifierKeywords(words []string) Option {
	return func(p *Pipeline) {
		if len(words) > 0 {
			p.keywords = words
		}
	}
}

// WithContactTaxonomy sets the contact categories, most effective first.
func WithContactTaxonomy(categories []string) Option {
	return func(p *Pipeline) {
		if len(categories) > 0 {
			p.taxonomy = categories
		}
	}
}

// WithBalanceBands sets ascending balance thresholds.
func WithBalanceBands(bands []float64) Option {
	return func(p *Pipeline) {
		if len(bands) > 0 {
			p.bands = bands
		}
	}
}

// WithReference anchors recency features at t.
func WithReference(t time.Time) Option {
	return func(p *Pipeline) {
		if !t.IsZero() {
			p.reference = t
		}
	}
}

// WithScorer sets the propensity scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithStoreFactory sets how the per-run priority store is built. capacity is
// the number of debtors it will hold.
func WithStoreFactory(f func(capacity int) repository.Store) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.newStore = f
		}
	}
}
