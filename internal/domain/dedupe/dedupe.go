// Package dedupe tracks debtor keys already seen so duplicated case rows can
// be collapsed to one occurrence.
package dedupe

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord checks whether key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(key string) bool
}

// keySet implements Deduper with a plain map. Pipeline runs are
// single-threaded, so no locking.
type keySet struct {
	seen map[string]struct{}
}

// New creates an empty deduper.
func New(opts ...Option) Deduper {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &keySet{seen: make(map[string]struct{}, o.capacity)}
}

func (k *keySet) SeenAndRecord(key string) bool {
	if _, ok := k.seen[key]; ok {
		return true
	}
	k.seen[key] = struct{}{}
	return false
}

// KeepLast returns, in ascending order, the indexes of the last occurrence of
// every key. Empty keys are never kept.
func KeepLast(keys []string) []int {
	d := New(WithCapacity(len(keys)))
	keep := make([]int, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] == "" || d.SeenAndRecord(keys[i]) {
			continue
		}
		keep = append(keep, i)
	}
	for l, r := 0, len(keep)-1; l < r; l, r = l+1, r-1 {
		keep[l], keep[r] = keep[r], keep[l]
	}
	return keep
}
