package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/debtscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.ClipMin, convey.ShouldEqual, 0.05)
			convey.So(cfg.ClipMax, convey.ShouldEqual, 0.95)
			convey.So(cfg.WeightContact+cfg.WeightNegotiation+cfg.WeightPayment, convey.ShouldAlmostEqual, 1.0, 1e-9)
			convey.So(cfg.IdentifierKeywords, convey.ShouldResemble, []string{"deudor", "documento", "identific"})
			convey.So(len(cfg.CaseFiles), convey.ShouldEqual, 2)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When clip bounds are inverted", func() {
			cfg.ClipMin, cfg.ClipMax = 0.9, 0.1

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When all weights are zero", func() {
			cfg.WeightContact, cfg.WeightNegotiation, cfg.WeightPayment = 0, 0, 0

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "positive")
			})
		})

		convey.Convey("When balance bands are not ascending", func() {
			cfg.BalanceBands = []float64{10, 5}

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When balance bands repeat a threshold", func() {
			cfg.BalanceBands = []float64{5, 5}

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When no case files are configured", func() {
			cfg.CaseFiles = nil

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the reference date is malformed", func() {
			cfg.ReferenceDate = "31/12/2024"

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfig_Reference(t *testing.T) {
	convey.Convey("Given a config", t, func() {
		cfg := config.New()
		now := time.Date(2025, 3, 14, 17, 45, 0, 0, time.UTC)

		convey.Convey("When no reference date is set", func() {
			ref, err := cfg.Reference(now)

			convey.Convey("Then today at midnight is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ref, convey.ShouldEqual, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When a reference date is set", func() {
			cfg.ReferenceDate = "2024-12-31"
			ref, err := cfg.Reference(now)

			convey.Convey("Then it is parsed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ref.Format(time.DateOnly), convey.ShouldEqual, "2024-12-31")
			})
		})
	})
}
