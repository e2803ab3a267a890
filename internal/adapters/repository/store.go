// Package repository holds scored debtors in collection-priority order.
package repository

import "context"

// Entry is one scored debtor.
type Entry struct {
	// Priority is the 1-based position in collection order.
	Priority int
	Debtor   string
	Score    float64
	Category string
}

// Store provides read/write access to the priority ordering.
type Store interface {
	// Put inserts or replaces the score of a debtor.
	Put(ctx context.Context, debtor string, score float64, category string) error

	// TopN returns the first n entries in priority order.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// All returns every entry in priority order.
	All(ctx context.Context) []Entry
}
