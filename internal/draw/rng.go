package draw

import (
	"log/slog"
	"math/rand"
	"time"
)

// Option configures a Draw.
type Option func(*Draw)

// WithSeed makes every pick and shuffle reproducible: two draws built from
// the same participants, exclusions and seed return the same cycle.
func WithSeed(seed int64) Option {
	return func(d *Draw) {
		d.seed = seed
		d.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a caller-owned source. The draw does not know its seed, so
// Seed reports 0. *rand.Rand is not safe for concurrent use; do not share it.
func WithRand(rng *rand.Rand) Option {
	return func(d *Draw) {
		d.seed = 0
		d.rng = rng
	}
}

// WithLogger sets the logger used for search tracing at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Draw) {
		d.logger = logger
	}
}

// newSeed returns a time-derived seed for draws that were not given one.
func newSeed() int64 {
	return time.Now().UnixNano()
}

// shuffle performs an in-place Fisher-Yates shuffle driven by the draw's source.
func (d *Draw) shuffle(names []string) {
	d.rng.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
}
