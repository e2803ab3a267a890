// Package fixtures generates reproducible synthetic collection portfolios:
// the case extracts plus the payments, promises and contacts logs, with the
// header noise and identifier formats real extracts carry.
package fixtures

import (
	"time"

	"github.com/okian/debtscore/internal/domain/table"
)

// Config holds configuration for portfolio generation.
type Config struct {
	Debtors   int       // Number of distinct debtors
	Seed      int64     // Seed for every random draw
	Workers   int       // Concurrent debtor generators
	Reference time.Time // Dates are drawn in the year before this day
	Dir       string    // Output directory
	Format    string    // ".xlsx" or ".csv"
	// OrphanRate is the share of auxiliary rows whose debtor has no case.
	OrphanRate float64
	// InvalidAmountRate is the share of payment amounts written as junk.
	InvalidAmountRate float64
}

// Portfolio is one generated data set.
type Portfolio struct {
	Cases    []*table.Table
	Payments *table.Table
	Promises *table.Table
	Contacts *table.Table
}

// Files are the paths a portfolio was written to.
type Files struct {
	Cases    []string
	Payments string
	Promises string
	Contacts string
}

// Stats holds generation statistics.
type Stats struct {
	Debtors  int
	CaseRows int
	Payments int
	Promises int
	Contacts int
	Duration time.Duration
}
