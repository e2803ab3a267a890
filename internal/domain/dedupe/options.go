package dedupe

type options struct {
	capacity int
}

// Option configures a Deduper.
type Option func(*options)

// WithCapacity pre-sizes the key set.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
