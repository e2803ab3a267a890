// Package config defines the pipeline configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// CaseFiles lists the case extracts in chronological order. Later files win
	// when a debtor appears more than once.
	CaseFiles    []string `koanf:"case_files" validate:"min=1,dive,required"`
	PaymentsFile string   `koanf:"payments_file"`
	PromisesFile string   `koanf:"promises_file"`
	ContactsFile string   `koanf:"contacts_file"`
	OutputFile   string   `koanf:"output_file" validate:"required"`
	// MetricsFile, when set, receives the Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file"`

	// ReferenceDate (YYYY-MM-DD) anchors recency features; empty means today.
	ReferenceDate string `koanf:"reference_date" validate:"omitempty,datetime=2006-01-02"`

	// Seed drives the stratified split of every propensity stage.
	Seed int64 `koanf:"seed"`
	// TestFraction is the share of each class held out for evaluation.
	TestFraction float64 `koanf:"test_fraction" validate:"gte=0,lt=1"`
	ClipMin      float64 `koanf:"clip_min" validate:"gte=0,lt=1"`
	ClipMax      float64 `koanf:"clip_max" validate:"gt=0,lte=1,gtfield=ClipMin"`

	// Blend weights for the contact, negotiation and payment stages.
	WeightContact     float64 `koanf:"weight_contact" validate:"gte=0"`
	WeightNegotiation float64 `koanf:"weight_negotiation" validate:"gte=0"`
	WeightPayment     float64 `koanf:"weight_payment" validate:"gte=0"`
	// RenormalizeWeights redistributes the weight of a degraded stage over
	// the stages that trained.
	RenormalizeWeights bool `koanf:"renormalize_weights"`
	// Cascade feeds each stage's probability into the next stage.
	Cascade bool `koanf:"cascade"`

	// Classifier hyper-parameters.
	Iterations   int     `koanf:"iterations" validate:"gt=0"`
	LearningRate float64 `koanf:"learning_rate" validate:"gt=0"`
	L2           float64 `koanf:"l2" validate:"gte=0"`

	// BalanceBands are ascending thresholds; n thresholds give n+1 bands.
	BalanceBands []float64 `koanf:"balance_bands" validate:"min=1"`
	// IdentifierKeywords are matched in order against normalized headers.
	IdentifierKeywords []string `koanf:"identifier_keywords" validate:"min=1,dive,required"`
	// ContactTaxonomy orders contact outcomes from most to least effective.
	ContactTaxonomy []string `koanf:"contact_taxonomy" validate:"min=1,dive,required"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		CaseFiles:          []string{"jur_ene_marzo.xlsx", "jur_abril_sep.xlsx"},
		PaymentsFile:       "pagos.xlsx",
		PromisesFile:       "promesas.xlsx",
		ContactsFile:       "gestiones.xlsx",
		OutputFile:         "consolidado_scoring.xlsx",
		Seed:               42,
		TestFraction:       0.25,
		ClipMin:            0.05,
		ClipMax:            0.95,
		WeightContact:      0.30,
		WeightNegotiation:  0.30,
		WeightPayment:      0.40,
		RenormalizeWeights: true,
		Cascade:            true,
		Iterations:         400,
		LearningRate:       0.3,
		L2:                 0.001,
		BalanceBands:       []float64{1_000_000, 5_000_000, 20_000_000, 50_000_000},
		IdentifierKeywords: []string{"deudor", "documento", "identific"},
		ContactTaxonomy: []string{
			"PAGO TOTAL",
			"PAGO PARCIAL",
			"PROMESA DE PAGO",
			"NEGOCIACION",
			"CONTACTO TITULAR",
			"CONTACTO TERCERO",
			"MENSAJE",
			"NO CONTACTO",
		},
	}
}

// Reference returns the parsed reference date, or now truncated to the day
// when ReferenceDate is empty.
func (c *Config) Reference(now time.Time) (time.Time, error) {
	if c.ReferenceDate == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, c.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reference_date: %w", ErrInvalidConfig, err)
	}
	return t, nil
}
