package scoring

import (
	"math"
	"sort"
	"strconv"

	"github.com/okian/debtscore/internal/domain/model"
)

// Kind distinguishes numeric from categorical features.
type Kind int

// Feature kinds.
const (
	Numeric Kind = iota
	Categorical
)

// Feature reads one model input from a record. Numeric extractors return NaN
// for missing values, categorical ones return "".
type Feature struct {
	Name     string
	Kind     Kind
	Number   func(rec *model.Record) float64
	Category func(rec *model.Record) string
}

// NumericFeature builds a numeric feature.
func NumericFeature(name string, fn func(rec *model.Record) float64) Feature {
	return Feature{Name: name, Kind: Numeric, Number: fn}
}

// CategoricalFeature builds a categorical feature.
func CategoricalFeature(name string, fn func(rec *model.Record) string) Feature {
	return Feature{Name: name, Kind: Categorical, Category: fn}
}

func optional(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

// BaseFeatures are the case-level inputs shared by every stage.
var BaseFeatures = []Feature{
	NumericFeature("saldo", func(r *model.Record) float64 { return optional(r.Case.Balance) }),
	NumericFeature("dias_mora", func(r *model.Record) float64 { return optional(r.Case.DaysPastDue) }),
	CategoricalFeature("banda_saldo", func(r *model.Record) string {
		if r.Features.BalanceBand == 0 {
			return ""
		}
		return strconv.Itoa(r.Features.BalanceBand)
	}),
	CategoricalFeature("producto", func(r *model.Record) string { return r.Case.Product }),
	CategoricalFeature("etapa", func(r *model.Record) string { return r.Case.LegalStage }),
	CategoricalFeature("acuerdo", func(r *model.Record) string { return r.Case.Agreement }),
}

// encoder imputes and one-hot encodes features. It is learned on the
// training partition only.
type encoder struct {
	features []Feature
	medians  map[string]float64
	modes    map[string]string
	levels   map[string][]string
	width    int
}

func fitEncoder(features []Feature, records []model.Record, train []int) *encoder {
	e := &encoder{
		features: features,
		medians:  map[string]float64{},
		modes:    map[string]string{},
		levels:   map[string][]string{},
	}
	for _, f := range features {
		switch f.Kind {
		case Numeric:
			var vals []float64
			for _, i := range train {
				if v := f.Number(&records[i]); !math.IsNaN(v) && !math.IsInf(v, 0) {
					vals = append(vals, v)
				}
			}
			e.medians[f.Name] = median(vals)
			e.width++
		case Categorical:
			counts := map[string]int{}
			for _, i := range train {
				if v := f.Category(&records[i]); v != "" {
					counts[v]++
				}
			}
			e.modes[f.Name] = mostFrequent(counts)
			levels := make([]string, 0, len(counts))
			for v := range counts {
				levels = append(levels, v)
			}
			sort.Strings(levels)
			e.levels[f.Name] = levels
			e.width += len(levels)
		}
	}
	return e
}

// encode returns the row vector of rec. Categories unseen in training
// encode as all zeros.
func (e *encoder) encode(rec *model.Record) []float64 {
	row := make([]float64, 0, e.width)
	for _, f := range e.features {
		switch f.Kind {
		case Numeric:
			v := f.Number(rec)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = e.medians[f.Name]
			}
			row = append(row, v)
		case Categorical:
			v := f.Category(rec)
			if v == "" {
				v = e.modes[f.Name]
			}
			for _, level := range e.levels[f.Name] {
				if level == v {
					row = append(row, 1)
				} else {
					row = append(row, 0)
				}
			}
		}
	}
	return row
}

func (e *encoder) matrix(records []model.Record, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for k, i := range idx {
		out[k] = e.encode(&records[i])
	}
	return out
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m]
	}
	return (s[m-1] + s[m]) / 2
}

// mostFrequent breaks ties by the lexicographically smallest value.
func mostFrequent(counts map[string]int) string {
	best, n := "", 0
	for v, c := range counts {
		if c > n || (c == n && v < best) {
			best, n = v, c
		}
	}
	return best
}
