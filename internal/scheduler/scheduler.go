// Package scheduler builds balanced doubles rotations: for every round it
// decides who sits out, groups the rest into quartets and splits each quartet
// into two teams, minimising rating imbalance and repeated pairings.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/samber/lo"
)

const epsilon = 1e-9

// Scheduler is stateless between calls and safe for concurrent use.
type Scheduler struct {
	scorer       Scorer
	iterationCap int
	now          func() time.Time
}

// New creates a Scheduler with default weights unless overridden.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		scorer: Scorer{
			Alpha:    DefaultAlpha,
			Beta:     DefaultBeta,
			HalfLife: DefaultRecencyHalfLife,
		},
		iterationCap: DefaultIterationCap,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scorer returns the cost function in use.
func (s *Scheduler) Scorer() Scorer { return s.scorer }

// Schedule produces rounds 1..rounds for the given players.
func (s *Scheduler) Schedule(players []roster.Player, courts, rounds int, partnerships, oppositions []pairs.Record) ([]Round, error) {
	plan, err := s.Plan(players, courts, rounds, partnerships, oppositions)
	if err != nil {
		return nil, err
	}
	return plan.Rounds, nil
}

// Plan is Schedule with search statistics.
func (s *Scheduler) Plan(players []roster.Player, courts, rounds int, partnerships, oppositions []pairs.Record) (*Plan, error) {
	return s.PlanAt(s.now(), players, courts, rounds, partnerships, oppositions)
}

// PlanAt is Plan with pair history aged relative to at instead of the
// configured clock. Identical arguments always produce the identical plan.
func (s *Scheduler) PlanAt(at time.Time, players []roster.Player, courts, rounds int, partnerships, oppositions []pairs.Record) (*Plan, error) {
	if courts < 1 || rounds < 1 {
		return nil, fmt.Errorf("%w: courts=%d rounds=%d", ErrInvalidConfiguration, courts, rounds)
	}

	eligible := lo.UniqBy(players, func(p roster.Player) string { return p.ID })
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })
	if len(eligible) < roster.MinPlayers {
		return nil, fmt.Errorf("%w: %d eligible, need %d", roster.ErrInsufficientPlayers, len(eligible), roster.MinPlayers)
	}

	ids := roster.IDs(eligible)
	ratings := lo.SliceToMap(eligible, func(p roster.Player) (string, float64) { return p.ID, p.Rating })
	perRound := min(courts, len(eligible)/4)

	mem := newMemory(at, partnerships, oppositions)
	bench := newBenchTracker()
	plan := &Plan{Rounds: make([]Round, 0, rounds)}

	for n := 1; n <= rounds; n++ {
		play, benched := bench.split(ids, 4*perRound)

		slots := s.greedy(play, ratings, mem)
		cost, attempts, swaps := s.improve(slots, ratings, mem)
		log.Debug("Scheduled round", "round", n, "cost", cost, "attempts", attempts, "swaps", swaps)

		matches := make([]Match, 0, perRound)
		for q := 0; q < perRound; q++ {
			m := toMatch(q+1, slots[4*q:4*q+4])
			mem.record(m)
			matches = append(matches, m)
		}
		bench.advance(n, play, benched)

		plan.Rounds = append(plan.Rounds, Round{Number: n, Matches: matches, Benched: benched})
		plan.Cost += cost
		plan.Attempts += attempts
		plan.Swaps += swaps
	}
	return plan, nil
}

// greedy sorts players by rating, chunks them into quartets of neighbours and
// picks the cheapest team split of each. The result is a slot layout where
// quartet q occupies slots 4q..4q+3: team1 first, team2 second.
func (s *Scheduler) greedy(play []string, ratings map[string]float64, mem *memory) []string {
	sorted := append([]string(nil), play...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := ratings[sorted[i]], ratings[sorted[j]]
		if ri != rj {
			return ri > rj
		}
		return sorted[i] < sorted[j]
	})

	slots := make([]string, 0, len(sorted))
	for q := 0; q+4 <= len(sorted); q += 4 {
		a, b, c, d := sorted[q], sorted[q+1], sorted[q+2], sorted[q+3]
		// Strongest with weakest first; earlier splits win ties.
		splits := [3][4]string{
			{a, d, b, c},
			{a, c, b, d},
			{a, b, c, d},
		}
		best, bestCost := 0, 0.0
		for i, sp := range splits {
			cost := s.scorer.MatchCost([2]string{sp[0], sp[1]}, [2]string{sp[2], sp[3]}, ratings, mem)
			if i == 0 || cost < bestCost-epsilon {
				best, bestCost = i, cost
			}
		}
		slots = append(slots, splits[best][:]...)
	}
	return slots
}

// improve runs a first-improvement local search over pairwise slot swaps
// between different teams, accepting strict improvements only. It stops after
// a full pass without improvement or once iterationCap swaps were attempted.
func (s *Scheduler) improve(slots []string, ratings map[string]float64, mem *memory) (total float64, attempts, swaps int) {
	quartets := len(slots) / 4
	costs := make([]float64, quartets)
	for q := range costs {
		costs[q] = s.quartetCost(slots, q, ratings, mem)
	}

	improved := true
	for improved && attempts < s.iterationCap {
		improved = false
		for i := 0; i < len(slots) && attempts < s.iterationCap; i++ {
			for j := i + 1; j < len(slots) && attempts < s.iterationCap; j++ {
				if i/2 == j/2 {
					continue
				}
				attempts++

				qi, qj := i/4, j/4
				before := costs[qi]
				if qj != qi {
					before += costs[qj]
				}

				slots[i], slots[j] = slots[j], slots[i]
				ci := s.quartetCost(slots, qi, ratings, mem)
				after, cj := ci, 0.0
				if qj != qi {
					cj = s.quartetCost(slots, qj, ratings, mem)
					after += cj
				}

				if after < before-epsilon {
					costs[qi] = ci
					if qj != qi {
						costs[qj] = cj
					}
					swaps++
					improved = true
					continue
				}
				slots[i], slots[j] = slots[j], slots[i]
			}
		}
	}

	for _, c := range costs {
		total += c
	}
	return total, attempts, swaps
}

func (s *Scheduler) quartetCost(slots []string, q int, ratings map[string]float64, mem *memory) float64 {
	base := 4 * q
	return s.scorer.MatchCost(
		[2]string{slots[base], slots[base+1]},
		[2]string{slots[base+2], slots[base+3]},
		ratings, mem,
	)
}

func toMatch(court int, quartet []string) Match {
	return Match{
		Court: court,
		Team1: sortedPair(quartet[0], quartet[1]),
		Team2: sortedPair(quartet[2], quartet[3]),
	}
}

func sortedPair(x, y string) [2]string {
	if x > y {
		x, y = y, x
	}
	return [2]string{x, y}
}
