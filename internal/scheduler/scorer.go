package scheduler

import (
	"math"
	"time"

	"github.com/mauv0809/padel-rotation/internal/pairs"
)

// Scorer computes the fairness cost of a match: rating imbalance between the
// two teams plus weighted penalties for repeated partners and opponents.
type Scorer struct {
	Alpha    float64
	Beta     float64
	HalfLife time.Duration
}

// memory is the pair history a scheduling call scores against: the supplied
// historical counters plus everything formed earlier in the same call.
type memory struct {
	now          time.Time
	partnerships pairs.History
	oppositions  pairs.History
	partnered    map[pairs.Key]int
	opposed      map[pairs.Key]int
}

func newMemory(now time.Time, partnerships, oppositions []pairs.Record) *memory {
	return &memory{
		now:          now,
		partnerships: pairs.NewHistory(partnerships),
		oppositions:  pairs.NewHistory(oppositions),
		partnered:    make(map[pairs.Key]int),
		opposed:      make(map[pairs.Key]int),
	}
}

func (m *memory) record(match Match) {
	for _, k := range pairs.Teammates(match.Team1, match.Team2) {
		m.partnered[k]++
	}
	for _, k := range pairs.Opponents(match.Team1, match.Team2) {
		m.opposed[k]++
	}
}

// Penalty is g(n, elapsed): quadratic in the number of previous meetings,
// boosted by up to 2x the more recent the last meeting was. A pair with no
// timestamp gets no boost.
func (s Scorer) Penalty(count int, last *time.Time, now time.Time) float64 {
	if count <= 0 {
		return 0
	}
	base := float64(count * count)
	if last == nil {
		return base
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		elapsed = 0
	}
	return base * (1 + math.Exp2(-elapsed.Seconds()/s.HalfLife.Seconds()))
}

func (s Scorer) pairPenalty(h pairs.History, sameCall map[pairs.Key]int, key pairs.Key, now time.Time) float64 {
	r := h.Get(key)
	n := r.Count + sameCall[key]
	if sameCall[key] > 0 {
		return s.Penalty(n, &now, now)
	}
	return s.Penalty(n, r.Last, now)
}

// MatchCost scores a single match.
func (s Scorer) MatchCost(team1, team2 [2]string, ratings map[string]float64, mem *memory) float64 {
	imbalance := math.Abs(ratings[team1[0]] + ratings[team1[1]] - ratings[team2[0]] - ratings[team2[1]])

	var partner float64
	for _, k := range pairs.Teammates(team1, team2) {
		partner += s.pairPenalty(mem.partnerships, mem.partnered, k, mem.now)
	}
	var opponent float64
	for _, k := range pairs.Opponents(team1, team2) {
		opponent += s.pairPenalty(mem.oppositions, mem.opposed, k, mem.now)
	}
	return imbalance + s.Alpha*partner + s.Beta*opponent
}
