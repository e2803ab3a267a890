// Package scoring trains the contact, negotiation and payment propensity
// models as a probability cascade and blends them into one score.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/debtscore/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultSeed         = 42
	DefaultTestFraction = 0.25
	DefaultClipMin      = 0.05
	DefaultClipMax      = 0.95

	maxScoreValue = 100
)

// Score categories.
const (
	CategoryHigh   = "High"
	CategoryMedium = "Medium"
	CategoryLow    = "Low"

	highThreshold   = 80
	mediumThreshold = 50
)

// DefaultWeights is the blend weight of each stage, indexed by Stage.
var DefaultWeights = [3]float64{0.30, 0.30, 0.40}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSeed sets the seed of the train/evaluation split.
func WithSeed(seed int64) Option {
	return func(s *Scorer) { s.seed = seed }
}

// WithTestFraction sets the share of each class held out for evaluation.
func WithTestFraction(f float64) Option {
	return func(s *Scorer) {
		if f >= 0 && f < 1 {
			s.testFraction = f
		}
	}
}

// WithClip bounds every probability to [lo, hi].
func WithClip(lo, hi float64) Option {
	return func(s *Scorer) {
		if lo >= 0 && hi <= 1 && lo < hi {
			s.clipMin, s.clipMax = lo, hi
		}
	}
}

// WithWeights sets the blend weights of the contact, negotiation and payment
// stages.
func WithWeights(contact, negotiation, payment float64) Option {
	return func(s *Scorer) {
		if contact >= 0 && negotiation >= 0 && payment >= 0 && contact+negotiation+payment > 0 {
			s.weights = [3]float64{contact, negotiation, payment}
		}
	}
}

// WithRenormalize redistributes a degraded stage's weight over the trained
// stages when on. When off the missing stage contributes 0 and scores are
// diluted.
func WithRenormalize(on bool) Option {
	return func(s *Scorer) { s.renormalize = on }
}

// WithCascade feeds each stage's probability to the next stage when on.
func WithCascade(on bool) Option {
	return func(s *Scorer) { s.cascade = on }
}

// WithClassifier sets the model used by every stage.
func WithClassifier(f ClassifierFactory) Option {
	return func(s *Scorer) {
		if f != nil {
			s.factory = f
		}
	}
}

// Scorer runs the propensity cascade.
type Scorer struct {
	seed         int64
	testFraction float64
	clipMin      float64
	clipMax      float64
	weights      [3]float64
	renormalize  bool
	cascade      bool
	factory      ClassifierFactory
}

// New creates a scorer with configuration options.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		seed:         DefaultSeed,
		testFraction: DefaultTestFraction,
		clipMin:      DefaultClipMin,
		clipMax:      DefaultClipMax,
		weights:      DefaultWeights,
		renormalize:  true,
		cascade:      true,
		factory:      LogisticFactory(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result summarizes a scoring run.
type Result struct {
	Stages []Diagnostics
	// Weights are the blend weights actually applied, indexed by Stage.
	Weights [3]float64
	// Categories counts records per score category.
	Categories map[string]int
}

// Score runs every stage in order, writes the probabilities, blended score
// and category into each record and reports per-stage diagnostics. A failing
// stage only degrades its own probability. The returned error is non-nil only
// when ctx is done.
func (s *Scorer) Score(ctx context.Context, records []model.Record) (*Result, error) {
	res := &Result{Categories: map[string]int{CategoryHigh: 0, CategoryMedium: 0, CategoryLow: 0}}
	var trained [3]bool

	for _, st := range Stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scoring cancelled before %s: %w", st, err)
		}
		probs, d := s.runStage(ctx, st, records)
		for i := range records {
			*st.probability(&records[i].Scores) = probs[i]
		}
		trained[st] = d.Status == StatusTrained
		res.Stages = append(res.Stages, d)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring cancelled: %w", err)
	}

	res.Weights = EffectiveWeights(s.weights, trained, s.renormalize)
	for i := range records {
		sc := &records[i].Scores
		sc.Score = Blend([3]float64{sc.Contact, sc.Negotiation, sc.Payment}, res.Weights)
		sc.Category = Category(sc.Score)
		res.Categories[sc.Category]++
	}
	return res, nil
}

// EffectiveWeights returns the weights to blend with. With renormalize on,
// the weights of trained stages are scaled to keep their original sum; if no
// stage trained every weight is 0.
func EffectiveWeights(weights [3]float64, trained [3]bool, renormalize bool) [3]float64 {
	var out [3]float64
	var total, kept float64
	for i, w := range weights {
		total += w
		if trained[i] {
			out[i] = w
			kept += w
		}
	}
	if !renormalize || kept == 0 || kept == total {
		return out
	}
	for i := range out {
		out[i] *= total / kept
	}
	return out
}

// Blend returns 100 times the weighted sum of probs. Missing probabilities
// contribute 0.
func Blend(probs, weights [3]float64) float64 {
	var s float64
	for i, p := range probs {
		if math.IsNaN(p) {
			continue
		}
		s += weights[i] * p
	}
	return maxScoreValue * s
}

// Category bands a score: at least 80 is High, at least 50 is Medium.
func Category(score float64) string {
	switch {
	case score >= highThreshold:
		return CategoryHigh
	case score >= mediumThreshold:
		return CategoryMedium
	default:
		return CategoryLow
	}
}
