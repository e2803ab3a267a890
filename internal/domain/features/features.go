// Package features derives recency, ratio and band features from
// consolidated records. Every function is pure.
package features

import (
	"math"
	"sort"
	"time"

	"github.com/okian/debtscore/internal/domain/model"
)

// DefaultBands are the balance thresholds used when none are configured.
var DefaultBands = []float64{1_000_000, 5_000_000, 20_000_000, 50_000_000}

// Deriver computes features relative to a reference date.
type Deriver struct {
	reference time.Time
	bands     []float64
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithBands sets ascending balance thresholds.
func WithBands(bands []float64) Option {
	return func(d *Deriver) {
		if len(bands) > 0 {
			d.bands = append([]float64(nil), bands...)
		}
	}
}

// New returns a deriver anchored at reference.
func New(reference time.Time, opts ...Option) *Deriver {
	d := &Deriver{reference: truncate(reference), bands: DefaultBands}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive fills rec.Features.
func (d *Deriver) Derive(rec *model.Record) {
	rec.Features = model.Features{
		DaysSincePayment: d.Recency(rec.Payment.LastDate),
		DaysSincePromise: d.Recency(rec.Promise.LastDate),
		DaysSinceContact: d.Recency(rec.Contact.LastDate),
		PaidRatio:        Ratio(rec.Payment.TotalPaid, rec.Case.Balance),
		FulfilledRatio:   Ratio(rec.Promise.TotalFulfilled, &rec.Promise.TotalPromised),
		BalanceBand:      d.Band(rec.Case.Balance),
	}
}

// DeriveAll fills the features of every record.
func (d *Deriver) DeriveAll(records []model.Record) {
	for i := range records {
		d.Derive(&records[i])
	}
}

// Recency returns the whole days from event to the reference date, or nil
// when the event date is missing. Future dates yield negative days.
func (d *Deriver) Recency(event time.Time) *int {
	if event.IsZero() {
		return nil
	}
	days := int(math.Round(d.reference.Sub(truncate(event)).Hours() / 24))
	return &days
}

// Ratio returns num/den, or 0 when den is missing, zero or the quotient is
// not finite.
func Ratio(num float64, den *float64) float64 {
	if den == nil || *den == 0 {
		return 0
	}
	r := num / *den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Band maps a balance to 1..len(bands)+1. Below the first threshold is band
// 1, at or above the last is the top band; a missing balance is band 0.
func (d *Deriver) Band(balance *float64) int {
	if balance == nil || math.IsNaN(*balance) {
		return 0
	}
	return sort.Search(len(d.bands), func(i int) bool { return *balance < d.bands[i] }) + 1
}

func truncate(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
