package scoring

import (
	"context"
	"fmt"
	"math"
)

// Classifier turns a labeled feature matrix into per-row probabilities of the
// positive class.
type Classifier interface {
	// Fit trains on x with binary labels y and per-row sample weights w.
	Fit(ctx context.Context, x [][]float64, y []int, w []float64) error
	// Predict returns one probability per row of x.
	Predict(x [][]float64) ([]float64, error)
}

// ClassifierFactory creates a fresh classifier for each stage.
type ClassifierFactory func() Classifier

// Default logistic regression settings.
const (
	DefaultIterations   = 400
	DefaultLearningRate = 0.3
	DefaultL2           = 0.001
)

// LogisticOption configures a Logistic classifier.
type LogisticOption func(*Logistic)

// WithIterations sets the number of gradient steps.
func WithIterations(n int) LogisticOption {
	return func(l *Logistic) {
		if n > 0 {
			l.iterations = n
		}
	}
}

// WithLearningRate sets the gradient step size.
func WithLearningRate(rate float64) LogisticOption {
	return func(l *Logistic) {
		if rate > 0 {
			l.rate = rate
		}
	}
}

// WithL2 sets the ridge penalty.
func WithL2(l2 float64) LogisticOption {
	return func(l *Logistic) {
		if l2 >= 0 {
			l.l2 = l2
		}
	}
}

// Logistic is a weighted, L2-regularized logistic regression fitted by
// full-batch gradient descent on standardized inputs. Training starts from
// zero coefficients, so fits are deterministic.
type Logistic struct {
	iterations int
	rate       float64
	l2         float64

	mean  []float64
	scale []float64
	coef  []float64
	bias  float64
}

// NewLogistic returns an unfitted logistic regression.
func NewLogistic(opts ...LogisticOption) *Logistic {
	l := &Logistic{iterations: DefaultIterations, rate: DefaultLearningRate, l2: DefaultL2}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogisticFactory returns a factory producing identically configured models.
func LogisticFactory(opts ...LogisticOption) ClassifierFactory {
	return func() Classifier { return NewLogistic(opts...) }
}

// Fit implements Classifier.
func (l *Logistic) Fit(ctx context.Context, x [][]float64, y []int, w []float64) error {
	n := len(x)
	if n == 0 || len(y) != n || len(w) != n {
		return fmt.Errorf("%w: %d rows, %d labels, %d weights", ErrInvalidInput, n, len(y), len(w))
	}
	d := len(x[0])
	if d == 0 {
		return ErrEmptyFeatures
	}

	l.mean = make([]float64, d)
	l.scale = make([]float64, d)
	for j := 0; j < d; j++ {
		var sum float64
		for i := range x {
			sum += x[i][j]
		}
		m := sum / float64(n)
		var ss float64
		for i := range x {
			ss += (x[i][j] - m) * (x[i][j] - m)
		}
		sd := math.Sqrt(ss / float64(n))
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		l.mean[j], l.scale[j] = m, sd
	}

	z := make([][]float64, n)
	var total float64
	for i := range x {
		z[i] = l.standardize(x[i])
		total += w[i]
	}
	if total <= 0 {
		return fmt.Errorf("%w: non-positive total weight", ErrInvalidInput)
	}

	l.coef = make([]float64, d)
	l.bias = 0
	grad := make([]float64, d)
	for it := 0; it < l.iterations; it++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fit cancelled: %w", err)
		}
		for j := range grad {
			grad[j] = 0
		}
		var gb float64
		for i := range z {
			r := w[i] * (sigmoid(l.linear(z[i])) - float64(y[i]))
			gb += r
			for j, v := range z[i] {
				grad[j] += r * v
			}
		}
		l.bias -= l.rate * gb / total
		for j := range l.coef {
			l.coef[j] -= l.rate * (grad[j]/total + l.l2*l.coef[j])
		}
	}
	return nil
}

// Predict implements Classifier.
func (l *Logistic) Predict(x [][]float64) ([]float64, error) {
	if l.coef == nil {
		return nil, fmt.Errorf("%w: model not fitted", ErrInvalidInput)
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(l.coef) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidInput, i, len(row), len(l.coef))
		}
		out[i] = sigmoid(l.linear(l.standardize(row)))
	}
	return out, nil
}

func (l *Logistic) standardize(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - l.mean[j]) / l.scale[j]
	}
	return out
}

func (l *Logistic) linear(z []float64) float64 {
	s := l.bias
	for j, v := range z {
		s += l.coef[j] * v
	}
	return s
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
