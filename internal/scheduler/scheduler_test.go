package scheduler_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

func newScheduler(opts ...scheduler.Option) *scheduler.Scheduler {
	opts = append([]scheduler.Option{scheduler.WithClock(func() time.Time { return fixedNow })}, opts...)
	return scheduler.New(opts...)
}

func equalPlayers(n int) []roster.Player {
	players := make([]roster.Player, n)
	for i := range players {
		players[i] = roster.Player{ID: fmt.Sprintf("p%02d", i+1), Rating: 1500, Active: true}
	}
	return players
}

func spreadPlayers(n int) []roster.Player {
	players := make([]roster.Player, n)
	for i := range players {
		players[i] = roster.Player{
			ID:     fmt.Sprintf("p%02d", i+1),
			Rating: 1200 + float64((i*137)%600),
			Active: true,
		}
	}
	return players
}

func TestSchedule_EightEqualPlayersTwoCourts(t *testing.T) {
	s := newScheduler()
	players := equalPlayers(8)

	rounds, err := s.Schedule(players, 2, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, rounds, 1)

	r := rounds[0]
	assert.Equal(t, 1, r.Number)
	require.Len(t, r.Matches, 2)
	assert.Empty(t, r.Benched)

	seen := map[string]int{}
	ratings := map[string]float64{}
	for _, p := range players {
		ratings[p.ID] = p.Rating
	}
	for i, m := range r.Matches {
		assert.Equal(t, i+1, m.Court)
		for _, id := range m.Players() {
			seen[id]++
		}
		imbalance := ratings[m.Team1[0]] + ratings[m.Team1[1]] - ratings[m.Team2[0]] - ratings[m.Team2[1]]
		assert.Zero(t, imbalance)
	}
	assert.Len(t, seen, 8)
	for id, n := range seen {
		assert.Equal(t, 1, n, "player %s", id)
	}
}

func TestSchedule_FivePlayersOneCourt(t *testing.T) {
	s := newScheduler()

	rounds, err := s.Schedule(equalPlayers(5), 1, 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	require.Len(t, rounds[0].Matches, 1)
	assert.Equal(t, []string{"p05"}, rounds[0].Benched)
}

func TestSchedule_InvalidInput(t *testing.T) {
	s := newScheduler()

	tests := []struct {
		name    string
		players []roster.Player
		courts  int
		rounds  int
		wantErr error
	}{
		{"zero courts", equalPlayers(8), 0, 1, scheduler.ErrInvalidConfiguration},
		{"zero rounds", equalPlayers(8), 1, 0, scheduler.ErrInvalidConfiguration},
		{"negative courts", equalPlayers(8), -2, 3, scheduler.ErrInvalidConfiguration},
		{"three players", equalPlayers(3), 1, 1, roster.ErrInsufficientPlayers},
		{"duplicates do not count", append(equalPlayers(3), equalPlayers(3)...), 1, 1, roster.ErrInsufficientPlayers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounds, err := s.Schedule(tt.players, tt.courts, tt.rounds, nil, nil)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, rounds)
		})
	}
}

func TestSchedule_RoundShape(t *testing.T) {
	tests := []struct {
		players, courts, rounds int
	}{
		{4, 1, 3},
		{7, 1, 7},
		{9, 3, 4},
		{13, 3, 6},
		{16, 4, 5},
		{22, 4, 8},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dp_%dc_%dr", tt.players, tt.courts, tt.rounds), func(t *testing.T) {
			s := newScheduler()
			rounds, err := s.Schedule(spreadPlayers(tt.players), tt.courts, tt.rounds, nil, nil)
			require.NoError(t, err)
			require.Len(t, rounds, tt.rounds)

			wantMatches := min(tt.courts, tt.players/4)
			for i, r := range rounds {
				assert.Equal(t, i+1, r.Number)
				assert.Len(t, r.Matches, wantMatches)
				assert.Len(t, r.Benched, tt.players-4*wantMatches)

				seen := map[string]bool{}
				for _, m := range r.Matches {
					for _, id := range m.Players() {
						assert.False(t, seen[id], "round %d: %s plays twice", r.Number, id)
						seen[id] = true
					}
					assert.Less(t, m.Team1[0], m.Team1[1])
					assert.Less(t, m.Team2[0], m.Team2[1])
				}
				for _, id := range r.Benched {
					assert.False(t, seen[id], "round %d: %s both benched and playing", r.Number, id)
					seen[id] = true
				}
				assert.Len(t, seen, tt.players)
			}
		})
	}
}

func TestSchedule_BenchFairness(t *testing.T) {
	tests := []struct {
		players, courts, rounds int
	}{
		{5, 1, 5},
		{7, 1, 7},
		{10, 2, 9},
		{11, 2, 4},
		{14, 3, 6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dp_%dc_%dr", tt.players, tt.courts, tt.rounds), func(t *testing.T) {
			s := newScheduler()
			players := spreadPlayers(tt.players)
			rounds, err := s.Schedule(players, tt.courts, tt.rounds, nil, nil)
			require.NoError(t, err)

			counts := map[string]int{}
			for _, p := range players {
				counts[p.ID] = 0
			}
			for _, r := range rounds {
				for _, id := range r.Benched {
					counts[id]++
				}
			}
			lo, hi := tt.rounds, 0
			for _, c := range counts {
				lo = min(lo, c)
				hi = max(hi, c)
			}
			assert.LessOrEqual(t, hi-lo, 1)
		})
	}
}

func TestSchedule_Deterministic(t *testing.T) {
	last := fixedNow.Add(-72 * time.Hour)
	partnerships := []pairs.Record{
		{Key: pairs.NewKey("p01", "p02"), Count: 3, Last: &last},
		{Key: pairs.NewKey("p03", "p07"), Count: 1},
	}
	oppositions := []pairs.Record{
		{Key: pairs.NewKey("p04", "p09"), Count: 2, Last: &last},
	}
	players := spreadPlayers(11)

	first, err := newScheduler().Schedule(players, 2, 6, partnerships, oppositions)
	require.NoError(t, err)

	reversed := make([]roster.Player, len(players))
	for i, p := range players {
		reversed[len(players)-1-i] = p
	}
	second, err := newScheduler().Schedule(reversed, 2, 6, partnerships, oppositions)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("schedules differ (-first +second):\n%s", diff)
	}
}

func TestPlanAt_IgnoresClock(t *testing.T) {
	last := fixedNow.Add(-36 * time.Hour)
	partnerships := []pairs.Record{
		{Key: pairs.NewKey("p01", "p02"), Count: 2, Last: &last},
		{Key: pairs.NewKey("p05", "p06"), Count: 2},
	}
	oppositions := []pairs.Record{
		{Key: pairs.NewKey("p01", "p03"), Count: 1, Last: &last},
	}
	players := spreadPlayers(10)

	ticks := 0
	s := scheduler.New(scheduler.WithClock(func() time.Time {
		ticks++
		return fixedNow.Add(time.Duration(ticks) * 30 * 24 * time.Hour)
	}))

	first, err := s.PlanAt(fixedNow, players, 2, 4, partnerships, oppositions)
	require.NoError(t, err)
	second, err := s.PlanAt(fixedNow, players, 2, 4, partnerships, oppositions)
	require.NoError(t, err)
	assert.Equal(t, 0, ticks)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("plans differ (-first +second):\n%s", diff)
	}

	viaClock, err := newScheduler().Plan(players, 2, 4, partnerships, oppositions)
	require.NoError(t, err)
	if diff := cmp.Diff(first, viaClock); diff != "" {
		t.Errorf("PlanAt and Plan disagree at the same time (-at +clock):\n%s", diff)
	}
}

func TestSchedule_AvoidsRepeatedPartnership(t *testing.T) {
	s := newScheduler()
	partnerships := []pairs.Record{{Key: pairs.NewKey("p01", "p04"), Count: 5}}

	rounds, err := s.Schedule(equalPlayers(4), 1, 1, partnerships, nil)
	require.NoError(t, err)

	m := rounds[0].Matches[0]
	assert.NotEqual(t, [2]string{"p01", "p04"}, m.Team1)
	assert.NotEqual(t, [2]string{"p01", "p04"}, m.Team2)
}

func TestSchedule_RotatesPartnersWithinCall(t *testing.T) {
	s := newScheduler()

	rounds, err := s.Schedule(equalPlayers(4), 1, 3, nil, nil)
	require.NoError(t, err)

	partnered := map[pairs.Key]int{}
	for _, r := range rounds {
		for _, k := range pairs.Teammates(r.Matches[0].Team1, r.Matches[0].Team2) {
			partnered[k]++
		}
	}
	assert.Len(t, partnered, 6)
	for k, n := range partnered {
		assert.Equal(t, 1, n, "pair %v", k)
	}
}

func TestPlan_LocalSearchImprovesGreedy(t *testing.T) {
	var partnerships, oppositions []pairs.Record
	ids := []string{"p01", "p02", "p03", "p04"}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			partnerships = append(partnerships, pairs.Record{Key: pairs.NewKey(ids[i], ids[j]), Count: 3})
			oppositions = append(oppositions, pairs.Record{Key: pairs.NewKey(ids[i], ids[j]), Count: 3})
		}
	}

	greedy, err := newScheduler(scheduler.WithIterationCap(0)).Plan(equalPlayers(8), 2, 1, partnerships, oppositions)
	require.NoError(t, err)
	assert.Zero(t, greedy.Swaps)
	assert.InDelta(t, 1080, greedy.Cost, 1e-9)

	searched, err := newScheduler().Plan(equalPlayers(8), 2, 1, partnerships, oppositions)
	require.NoError(t, err)
	assert.Positive(t, searched.Swaps)
	assert.Less(t, searched.Cost, greedy.Cost)
	assert.LessOrEqual(t, searched.Attempts, scheduler.DefaultIterationCap)
}

func TestPlan_IterationCapBoundsAttempts(t *testing.T) {
	plan, err := newScheduler(scheduler.WithIterationCap(5)).Plan(spreadPlayers(16), 4, 3, nil, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, plan.Attempts, 15)
}

func TestScorer_Penalty(t *testing.T) {
	sc := newScheduler().Scorer()

	assert.Zero(t, sc.Penalty(0, &fixedNow, fixedNow))
	assert.Equal(t, 4.0, sc.Penalty(2, nil, fixedNow))
	assert.Equal(t, 8.0, sc.Penalty(2, &fixedNow, fixedNow))

	halfLifeAgo := fixedNow.Add(-scheduler.DefaultRecencyHalfLife)
	assert.InDelta(t, 6.0, sc.Penalty(2, &halfLifeAgo, fixedNow), 1e-9)

	longAgo := fixedNow.AddDate(-2, 0, 0)
	assert.Less(t, sc.Penalty(2, &longAgo, fixedNow), sc.Penalty(2, &halfLifeAgo, fixedNow))
	assert.Greater(t, sc.Penalty(3, nil, fixedNow), sc.Penalty(2, nil, fixedNow))
}
