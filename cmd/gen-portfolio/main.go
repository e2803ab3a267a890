package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/debtscore/internal/fixtures"
	"github.com/okian/debtscore/pkg/logger"
)

const defaultTimeout = 10 * time.Minute

func main() {
	var (
		dir       = flag.String("dir", "testdata", "Output directory")
		debtors   = flag.Int("debtors", fixtures.DefaultDebtors, "Number of debtors")
		seed      = flag.Int64("seed", fixtures.DefaultSeed, "Random seed")
		format    = flag.String("format", ".xlsx", "File format, .xlsx or .csv")
		workers   = flag.Int("workers", fixtures.DefaultWorkers, "Concurrent generators")
		reference = flag.String("reference", "", "Reference date, YYYY-MM-DD (default today)")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fixtures.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ref := time.Now().UTC().Truncate(24 * time.Hour)
	if *reference != "" {
		t, err := time.Parse(time.DateOnly, *reference)
		if err != nil {
			os.Stderr.WriteString("Invalid reference date: " + err.Error() + "\n")
			os.Exit(2)
		}
		ref = t
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cfg := &fixtures.Config{
		Debtors:           *debtors,
		Seed:              *seed,
		Workers:           *workers,
		Reference:         ref,
		Dir:               *dir,
		Format:            *format,
		OrphanRate:        fixtures.DefaultOrphanRate,
		InvalidAmountRate: fixtures.DefaultInvalidAmountRate,
	}
	if _, err := fixtures.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
