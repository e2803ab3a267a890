package fixtures

import "os"

// ShowHelp prints usage information for the portfolio generator.
func ShowHelp() {
	os.Stdout.WriteString(`debtscore portfolio generator
=============================

Writes a reproducible synthetic portfolio: two case extracts plus the
payments, promises and contacts logs.

Usage:
  go run ./cmd/gen-portfolio [options]

Options:
  -dir string
        Output directory (default "testdata")
  -debtors int
        Number of debtors (default 500)
  -seed int
        Random seed (default 42)
  -format string
        File format, .xlsx or .csv (default ".xlsx")
  -workers int
        Concurrent generators (default 4)
  -reference string
        Reference date, YYYY-MM-DD (default today)
  -help
        Show this help message

Examples:
  # Default portfolio as spreadsheets
  go run ./cmd/gen-portfolio

  # Larger csv portfolio with another seed
  go run ./cmd/gen-portfolio -debtors 20000 -seed 7 -format .csv -dir /tmp/cartera
`)
}
