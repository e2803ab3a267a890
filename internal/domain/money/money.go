// Package money sums monetary cell values without binary floating-point drift.
package money

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

const precision = 34

var ctx = apd.BaseContext.WithPrecision(precision)

// Amount is an exact decimal amount. The zero value is 0.
type Amount struct {
	value apd.Decimal
}

// FromFloat converts a parsed cell value. The shortest decimal representation
// of f is used, so 0.1 stays 0.1.
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Amount{}, fmt.Errorf("invalid amount %v", f)
	}
	var d apd.Decimal
	if _, _, err := d.SetString(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
		return Amount{}, fmt.Errorf("invalid amount %v: %w", f, err)
	}
	return Amount{value: d}, nil
}

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	var result apd.Decimal
	_, _ = ctx.Add(&result, &a.value, &other.value)
	return Amount{value: result}
}

// Float64 returns the nearest float64.
func (a Amount) Float64() float64 {
	f, err := a.value.Float64()
	if err != nil {
		return 0
	}
	return f
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

func (a Amount) String() string {
	return a.value.Text('f')
}

// Sum accumulates amounts.
type Sum struct {
	total Amount
}

// Add adds a to the running total.
func (s *Sum) Add(a Amount) {
	s.total = s.total.Add(a)
}

// Total returns the accumulated amount.
func (s *Sum) Total() Amount {
	return s.total
}
