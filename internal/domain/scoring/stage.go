package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/debtscore/internal/domain/model"
)

// Stage identifies one model of the cascade.
type Stage int

// Cascade stages, in run order.
const (
	StageContact Stage = iota
	StageNegotiation
	StagePayment
)

// Stages lists the cascade in run order.
var Stages = []Stage{StageContact, StageNegotiation, StagePayment}

func (s Stage) String() string {
	switch s {
	case StageContact:
		return "contact"
	case StageNegotiation:
		return "negotiation"
	case StagePayment:
		return "payment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Label returns 1 when the debtor reached the stage's outcome.
func (s Stage) Label(rec *model.Record) int {
	var n int
	switch s {
	case StageContact:
		n = rec.Contact.Count
	case StageNegotiation:
		n = rec.Promise.Count
	case StagePayment:
		n = rec.Payment.Count
	}
	if n > 0 {
		return 1
	}
	return 0
}

// probability points at the stage's slot in sc.
func (s Stage) probability(sc *model.Scores) *float64 {
	switch s {
	case StageContact:
		return &sc.Contact
	case StageNegotiation:
		return &sc.Negotiation
	default:
		return &sc.Payment
	}
}

// Status is the outcome of a stage run.
type Status string

// Stage outcomes.
const (
	StatusTrained  Status = "trained"
	StatusDegraded Status = "degraded"
)

// Diagnostics describes one stage run.
type Diagnostics struct {
	Stage    Stage
	Status   Status
	Err      error
	Features []string
	Width    int
	Rows     int
	Train    int
	Eval     int
	// Positives counts positive labels over all rows.
	Positives int
	// AUC and Accuracy are measured on the evaluation partition; NaN when it
	// cannot be measured.
	AUC      float64
	Accuracy float64
	Duration time.Duration
}

// Reason explains a degraded stage.
func (d Diagnostics) Reason() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// features returns the inputs of stage s. With the cascade on, every earlier
// stage's probability is appended in stage order.
func (sc *Scorer) features(s Stage) []Feature {
	fs := append([]Feature(nil), BaseFeatures...)
	if !sc.cascade {
		return fs
	}
	for prev := StageContact; prev < s; prev++ {
		fs = append(fs, NumericFeature("p_"+prev.String(), func(r *model.Record) float64 {
			return *prev.probability(&r.Scores)
		}))
	}
	return fs
}

// runStage fits stage s and returns one clipped probability per record, or
// all NaN when the stage degrades.
func (sc *Scorer) runStage(ctx context.Context, s Stage, records []model.Record) ([]float64, Diagnostics) {
	start := time.Now()
	features := sc.features(s)
	d := Diagnostics{Stage: s, Status: StatusDegraded, Rows: len(records), AUC: math.NaN(), Accuracy: math.NaN()}
	for _, f := range features {
		d.Features = append(d.Features, f.Name)
	}

	probs, err := sc.fitAndPredict(ctx, s, records, features, &d)
	d.Duration = time.Since(start)
	if err != nil {
		d.Err = &StageError{Stage: s, Err: err}
		return missing(len(records)), d
	}
	d.Status = StatusTrained
	return probs, d
}

func (sc *Scorer) fitAndPredict(ctx context.Context, s Stage, records []model.Record, features []Feature, d *Diagnostics) ([]float64, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	labels := make([]int, len(records))
	for i := range records {
		labels[i] = s.Label(&records[i])
		d.Positives += labels[i]
	}
	if d.Positives == 0 || d.Positives == len(records) {
		return nil, fmt.Errorf("%w: %d of %d rows positive", ErrInsufficientLabelVariance, d.Positives, len(records))
	}

	rng := rand.New(rand.NewSource(sc.seed + int64(s))) //nolint:gosec // reproducible split
	train, eval := stratifiedSplit(labels, sc.testFraction, rng)
	d.Train, d.Eval = len(train), len(eval)

	enc := fitEncoder(features, records, train)
	d.Width = enc.width
	if enc.width == 0 {
		return nil, ErrEmptyFeatures
	}

	y := make([]int, len(train))
	for k, i := range train {
		y[k] = labels[i]
	}
	clf := sc.factory()
	if err := guard(func() error { return clf.Fit(ctx, enc.matrix(records, train), y, balancedWeights(y)) }); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	all := make([]int, len(records))
	for i := range all {
		all[i] = i
	}
	var raw []float64
	if err := guard(func() error {
		var err error
		raw, err = clf.Predict(enc.matrix(records, all))
		return err
	}); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(raw) != len(records) {
		return nil, fmt.Errorf("predict: %w: %d probabilities for %d rows", ErrInvalidInput, len(raw), len(records))
	}

	if len(eval) > 0 {
		es, el := make([]float64, len(eval)), make([]int, len(eval))
		for k, i := range eval {
			es[k], el[k] = raw[i], labels[i]
		}
		d.AUC = AUC(es, el)
		d.Accuracy = Accuracy(es, el)
	}

	out := make([]float64, len(raw))
	for i, p := range raw {
		out[i] = sc.clip(p)
	}
	return out, nil
}

// guard turns a classifier panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrClassifierPanic, r)
		}
	}()
	return fn()
}

func (sc *Scorer) clip(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return math.NaN()
	}
	return math.Min(sc.clipMax, math.Max(sc.clipMin, p))
}

func missing(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
