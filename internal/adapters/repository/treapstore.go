package repository

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/okian/debtscore/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then debtor key in numeric order (deterministic).
// "less" means comes earlier in collection order, so in-order traversal
// yields the worklist from best to worst. Heap priorities are a hash of the
// debtor key, which keeps the tree balanced independent of score order.

// defaultScoreScale keeps nine decimals of a 0..100 score.
const defaultScoreScale = 1e9

type scoreFP int64

func (s *TreapStore) toFixedPoint(x float64) scoreFP {
	scaled := math.Round(x * s.scale)
	if scaled >= math.MaxInt64 {
		return scoreFP(math.MaxInt64)
	}
	if scaled <= math.MinInt64 {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(scaled)
}

// record stores the fixed-point score plus metadata for a debtor.
type record struct {
	score    scoreFP
	raw      float64
	category string
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
}

// less returns true if (aScore, aID) comes before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return DebtorLess(aID, bID)
}

// DebtorLess orders canonical debtor keys numerically. Keys are digit-only
// without leading zeros, so a shorter key is the smaller number.
func DebtorLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	return y
}

func priority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id)}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	return n
}

// collect appends up to limit entries in priority order.
func collect(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, ok := records[n.id]; ok {
			*out = append(*out, Entry{Priority: len(*out) + 1, Debtor: n.id, Score: rec.raw, Category: rec.category})
		}
	}
	if len(*out) < limit {
		collect(n.right, limit, records, out)
	}
}

// TreapStore is a treap of scored debtors.
type TreapStore struct {
	mu    sync.RWMutex
	root  *node
	byID  map[string]record
	scale float64
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:  make(map[string]record),
		scale: defaultScoreScale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put implements Store.Put in O(log n) expected time.
func (s *TreapStore) Put(ctx context.Context, debtor string, score float64, category string) error {
	if debtor == "" {
		return ErrEmptyDebtor
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return ErrInvalidScore
	}
	ns := s.toFixedPoint(score)

	s.mu.Lock()
	if old, ok := s.byID[debtor]; ok {
		s.root = deleteNode(s.root, debtor, old.score)
	}
	s.byID[debtor] = record{score: ns, raw: score, category: category}
	s.root = insert(s.root, debtor, ns)
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateDebtorsScored(n)
	return nil
}

// TopN returns the first n entries in priority order.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collect(s.root, n, s.byID, &out)
	return out, nil
}

// All returns every entry in priority order.
func (s *TreapStore) All(ctx context.Context) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.byID))
	collect(s.root, len(s.byID), s.byID, &out)
	return out
}

var _ Store = (*TreapStore)(nil)
