// Package rating implements the Elo-style team rating update applied after a
// doubles result.
package rating

import (
	"fmt"
	"math"
)

const (
	// DefaultRating is the rating a new player starts with.
	DefaultRating = 1500.0
	// DefaultKFactor bounds the rating swing of a single match.
	DefaultKFactor = 32.0
	// spread is the rating gap at which the stronger side is a 10:1 favourite.
	spread = 400.0
)

// Option configures an Engine.
type Option func(*Engine)

// WithKFactor sets the K-factor. Non-positive values are ignored.
func WithKFactor(k float64) Option {
	return func(e *Engine) {
		if k > 0 {
			e.kFactor = k
		}
	}
}

// Engine computes rating changes. It holds no state besides its constants and
// is safe for concurrent use.
type Engine struct {
	kFactor float64
}

// New creates an Engine with the default K-factor unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{kFactor: DefaultKFactor}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// KFactor returns the configured K-factor.
func (e *Engine) KFactor() float64 { return e.kFactor }

// Outcome is the result of applying a match result to four ratings.
type Outcome struct {
	Team1       [2]float64 `json:"team1_new_ratings" msgpack:"team1_new_ratings"`
	Team2       [2]float64 `json:"team2_new_ratings" msgpack:"team2_new_ratings"`
	Delta       float64    `json:"delta" msgpack:"delta"`
	Expected1   float64    `json:"expected1" msgpack:"expected1"`
	WinningTeam int        `json:"winning_team" msgpack:"winning_team"`
}

// Deltas returns the signed change of each participant in the order
// team1[0], team1[1], team2[0], team2[1]. The four values sum to exactly 0.
func (o Outcome) Deltas() [4]float64 {
	return [4]float64{o.Delta, o.Delta, -o.Delta, -o.Delta}
}

// Expected returns the expected score of a side rated r1 against a side rated r2.
func Expected(r1, r2 float64) float64 {
	return 1 / (1 + math.Pow(10, (r2-r1)/spread))
}

// TeamAverage returns the mean rating of a doubles team.
func TeamAverage(team [2]float64) float64 {
	return (team[0] + team[1]) / 2
}

// RecordResult applies a finished match to the four participants' ratings.
// Team 1 players gain delta and team 2 players lose exactly the same amount.
func (e *Engine) RecordResult(team1, team2 [2]float64, team1Score, team2Score int) (Outcome, error) {
	if team1Score == team2Score {
		return Outcome{}, fmt.Errorf("%w: tied score %d-%d", ErrInvalidResult, team1Score, team2Score)
	}
	if team1Score < 0 || team2Score < 0 {
		return Outcome{}, fmt.Errorf("%w: negative score %d-%d", ErrInvalidResult, team1Score, team2Score)
	}

	e1 := Expected(TeamAverage(team1), TeamAverage(team2))

	var s1 float64
	winner := 2
	if team1Score > team2Score {
		s1 = 1
		winner = 1
	}
	delta := e.kFactor * (s1 - e1)

	return Outcome{
		Team1:       [2]float64{team1[0] + delta, team1[1] + delta},
		Team2:       [2]float64{team2[0] - delta, team2[1] - delta},
		Delta:       delta,
		Expected1:   e1,
		WinningTeam: winner,
	}, nil
}
