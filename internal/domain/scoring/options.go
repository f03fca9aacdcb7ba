package scoring

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithCompletenessFactor sets the share of a criterion's ceiling credited to an
// assignment that has validated documents but no evaluations yet.
func WithCompletenessFactor(factor float64) Option {
	return func(a *Aggregator) {
		if factor >= 0 && factor <= 1 {
			a.completenessFactor = factor
		}
	}
}
