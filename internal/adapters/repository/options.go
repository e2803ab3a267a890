package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithCapacity presizes the debtor index.
func WithCapacity(n int) Option {
	return func(s *TreapStore) {
		if n > 0 {
			s.byID = make(map[string]record, n)
		}
	}
}

// WithScoreScale sets the fixed-point scale scores are ordered by. Scores
// closer than 1/scale are ordered by debtor key.
func WithScoreScale(scale float64) Option {
	return func(s *TreapStore) {
		if scale >= 1 {
			s.scale = scale
		}
	}
}
