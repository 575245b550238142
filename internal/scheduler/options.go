package scheduler

import "time"

const (
	DefaultAlpha           = 20.0
	DefaultBeta            = 20.0
	DefaultIterationCap    = 300
	DefaultRecencyHalfLife = 14 * 24 * time.Hour
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWeights sets the partnership (alpha) and opposition (beta) penalty weights.
// Negative values are ignored.
func WithWeights(alpha, beta float64) Option {
	return func(s *Scheduler) {
		if alpha >= 0 {
			s.scorer.Alpha = alpha
		}
		if beta >= 0 {
			s.scorer.Beta = beta
		}
	}
}

// WithIterationCap bounds the number of swap attempts per round. Zero disables
// the local search and keeps the greedy assignment.
func WithIterationCap(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.iterationCap = n
		}
	}
}

// WithRecencyHalfLife sets how fast the recency boost on repeated pairs decays.
func WithRecencyHalfLife(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.scorer.HalfLife = d
		}
	}
}

// WithClock overrides the time source Schedule and Plan use to age pair
// history. Callers that need repeatable plans pass the time to PlanAt instead.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}
