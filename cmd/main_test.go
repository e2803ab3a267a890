package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/debtscore/internal/fixtures"
	"github.com/okian/debtscore/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		t.Fatal(err)
	}

	convey.Convey("Given a portfolio on disk and env configuration", t, func() {
		dir := t.TempDir()
		files, err := fixtures.Run(context.Background(), &fixtures.Config{
			Debtors:   120,
			Seed:      fixtures.DefaultSeed,
			Workers:   2,
			Reference: time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
			Dir:       dir,
			Format:    ".csv",
		})
		convey.So(err, convey.ShouldBeNil)

		output := filepath.Join(dir, "consolidado.csv")
		t.Setenv("DEBTSCORE_CASE_FILES", strings.Join(files.Cases, ","))
		t.Setenv("DEBTSCORE_PAYMENTS_FILE", files.Payments)
		t.Setenv("DEBTSCORE_PROMISES_FILE", files.Promises)
		t.Setenv("DEBTSCORE_CONTACTS_FILE", files.Contacts)
		t.Setenv("DEBTSCORE_OUTPUT_FILE", output)
		t.Setenv("DEBTSCORE_REFERENCE_DATE", "2024-09-30")
		t.Setenv("DEBTSCORE_LOG_LEVEL", "error")

		convey.Convey("When the batch runs", func() {
			code := run()

			convey.Convey("Then it succeeds and writes the consolidated file", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				_, err := os.Stat(output)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When no case file can be read", func() {
			t.Setenv("DEBTSCORE_CASE_FILES", filepath.Join(dir, "missing.csv"))

			convey.Convey("Then the run fails", func() {
				convey.So(run(), convey.ShouldEqual, exitFailed)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("DEBTSCORE_TEST_FRACTION", "1.5")

			convey.Convey("Then it reports a configuration error", func() {
				convey.So(run(), convey.ShouldEqual, exitConfig)
			})
		})
	})
}
