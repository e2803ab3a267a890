// Package model contains the per-debtor records passed between pipeline stages.
package model

import "time"

// Sentinels written for categorical fields with no data.
const (
	NoData         = "SIN_DATO"
	UnknownChannel = "DESCONOCIDO"
)

// Case is one debtor row of the unioned, deduplicated case table.
type Case struct {
	Debtor      string
	Balance     *float64
	DaysPastDue *float64
	Product     string
	LegalStage  string
	Agreement   string
	// Extract names the case file the surviving row came from.
	Extract string
	// Cells are the normalized case-table cells, aligned with the case header.
	Cells []any
}

// PaymentSummary reduces a debtor's payment history.
type PaymentSummary struct {
	TotalPaid float64
	Count     int
	// LastDate is zero when no payment row carried a parseable date.
	LastDate time.Time
	// InvalidAmounts counts rows whose amount could not be parsed. They are
	// included in Count and contribute 0 to TotalPaid.
	InvalidAmounts int
}

// PromiseSummary reduces a debtor's payment commitments. The Last* fields come
// from the most recent promise by promised date.
type PromiseSummary struct {
	Count          int
	LastValue      *float64
	LastDate       time.Time
	LastStatus     string
	LastChannel    string
	TotalPromised  float64
	TotalFulfilled float64
}

// ContactSummary reduces a debtor's collector interactions. Best* is the most
// effective contact, Last* the most recent one; they are independent.
type ContactSummary struct {
	Count        int
	BestRank     int
	BestCategory string
	BestDate     time.Time
	BestAction   string
	BestResponse string
	LastCategory string
	LastDate     time.Time
	LastAction   string
	LastResponse string
}

// Features are derived from a consolidated record.
type Features struct {
	// Recency in whole days; nil when the event date is missing.
	DaysSincePayment *int
	DaysSincePromise *int
	DaysSinceContact *int
	// PaidRatio is total paid over balance, 0 when undefined.
	PaidRatio float64
	// FulfilledRatio is fulfilled over promised amount, 0 when undefined.
	FulfilledRatio float64
	// BalanceBand is 1..n; 0 means the balance was missing.
	BalanceBand int
}

// Scores holds stage probabilities (NaN when the stage produced none), the
// blended score and its category.
type Scores struct {
	Contact     float64
	Negotiation float64
	Payment     float64
	Score       float64
	Category    string
	// Priority is the 1-based collection order by descending score.
	Priority int
}

// Record is the consolidated, widened row for one debtor.
type Record struct {
	Case     Case
	Payment  PaymentSummary
	Promise  PromiseSummary
	Contact  ContactSummary
	Features Features
	Scores   Scores
}
