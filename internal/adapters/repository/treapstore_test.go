package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if all := store.All(ctx); len(all) != 0 {
		t.Errorf("expected no entries, got %d", len(all))
	}

	if err := store.Put(ctx, "101", 85.5, "High"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := store.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
	entry := all[0]
	if entry.Priority != 1 || entry.Debtor != "101" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Score != 85.5 || entry.Category != "High" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestTreapStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	puts := []struct {
		id    string
		score float64
	}{
		{"30", 50}, {"10", 90}, {"20", 50}, {"40", 12.5}, {"9", 90}, {"100", 50},
	}
	for _, p := range puts {
		if err := store.Put(ctx, p.id, p.score, ""); err != nil {
			t.Fatalf("put %s: %v", p.id, err)
		}
	}

	want := []string{"9", "10", "20", "30", "100", "40"}
	all := store.All(ctx)
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, e := range all {
		if e.Debtor != want[i] {
			t.Errorf("position %d: expected %s, got %s", i+1, want[i], e.Debtor)
		}
		if e.Priority != i+1 {
			t.Errorf("%s: expected priority %d, got %d", e.Debtor, i+1, e.Priority)
		}
	}

	top, err := store.TopN(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 2 || top[0].Debtor != "9" || top[1].Debtor != "10" {
		t.Errorf("unexpected top 2: %+v", top)
	}
}

func TestTreapStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	_ = store.Put(ctx, "1", 10, "Low")
	_ = store.Put(ctx, "2", 20, "Low")
	if err := store.Put(ctx, "1", 99, "High"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := store.All(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 debtors, got %d", len(all))
	}
	if e := all[0]; e.Debtor != "1" || e.Priority != 1 || e.Category != "High" {
		t.Errorf("expected replaced entry first, got %+v", e)
	}
}

func TestTreapStore_InvalidInput(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if err := store.Put(ctx, "1", math.NaN(), ""); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("expected ErrInvalidScore, got %v", err)
	}
	if err := store.Put(ctx, "", 1, ""); !errors.Is(err, ErrEmptyDebtor) {
		t.Errorf("expected ErrEmptyDebtor, got %v", err)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTreapStore_MatchesSort(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithCapacity(500))
	rng := rand.New(rand.NewSource(3))

	type pair struct {
		id    string
		score float64
	}
	var pairs []pair
	for i := 0; i < 500; i++ {
		p := pair{id: fmt.Sprintf("%d", i*7919%100003+1), score: float64(rng.Intn(100))}
		pairs = append(pairs, p)
		if err := store.Put(ctx, p.id, p.score, ""); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return DebtorLess(pairs[i].id, pairs[j].id)
	})

	all := store.All(ctx)
	for i, e := range all {
		if e.Debtor != pairs[i].id {
			t.Fatalf("position %d: expected %s, got %s", i+1, pairs[i].id, e.Debtor)
		}
	}
}

func TestDebtorLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"9", "10", true},
		{"10", "9", false},
		{"123", "124", true},
		{"1000000", "999999", false},
		{"5", "5", false},
	}
	for _, c := range cases {
		if got := DebtorLess(c.a, c.b); got != c.want {
			t.Errorf("DebtorLess(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func BenchmarkTreapStore_Put(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(WithCapacity(b.N))
	for i := 0; i < b.N; i++ {
		_ = store.Put(ctx, fmt.Sprintf("%d", i), float64(i%100), "")
	}
}
