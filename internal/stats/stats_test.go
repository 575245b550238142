package stats_test

import (
	"testing"
	"time"

	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Streaks(t *testing.T) {
	tests := []struct {
		name        string
		outcomes    []bool
		wantCurrent int
		wantLongest int
		wantWins    int
	}{
		{"no matches", nil, 0, 0, 0},
		{"three wins", []bool{true, true, true}, 3, 3, 3},
		{"loss after wins resets", []bool{true, true, false}, -1, 2, 2},
		{"losing run", []bool{false, false, false}, -3, 0, 0},
		{"win after losses resets", []bool{false, false, true}, 1, 1, 1},
		{"longest kept across breaks", []bool{true, true, true, false, true}, 1, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stats.PlayerStatistics{PlayerID: "p1"}
			for _, won := range tt.outcomes {
				s = stats.Apply(s, won)
				assert.Equal(t, s.TotalMatches, s.Wins+s.Losses)
				assert.Equal(t, float64(s.Wins)/float64(s.TotalMatches), s.WinRate)
			}
			assert.Equal(t, tt.wantCurrent, s.CurrentStreak)
			assert.Equal(t, tt.wantLongest, s.LongestWinStreak)
			assert.Equal(t, tt.wantWins, s.Wins)
			assert.Equal(t, len(tt.outcomes), s.TotalMatches)
		})
	}
}

func TestWinRateOf_NoMatches(t *testing.T) {
	assert.Equal(t, 0.0, stats.WinRateOf(0, 0))
	assert.Equal(t, 0.25, stats.WinRateOf(1, 4))
}

func TestAggregate(t *testing.T) {
	at := time.Date(2026, 3, 4, 19, 30, 0, 0, time.UTC)
	earlier := at.Add(-48 * time.Hour)

	in := stats.Input{
		Team1:       [2]string{"b", "a"},
		Team2:       [2]string{"c", "d"},
		WinningTeam: 2,
		At:          at,
		Players: map[string]stats.PlayerStatistics{
			"a": {PlayerID: "a", TotalMatches: 2, Wins: 2, WinRate: 1, CurrentStreak: 2, LongestWinStreak: 2},
			"c": {PlayerID: "c", TotalMatches: 1, Losses: 1, CurrentStreak: -1},
		},
		Partnerships: pairs.NewHistory([]pairs.Record{
			{Key: pairs.NewKey("a", "b"), Count: 3, Last: &earlier},
		}),
	}

	out, err := stats.Aggregate(in)
	require.NoError(t, err)

	a := out.Players[1]
	assert.Equal(t, "a", a.PlayerID)
	assert.Equal(t, 3, a.TotalMatches)
	assert.Equal(t, 1, a.Losses)
	assert.Equal(t, -1, a.CurrentStreak)
	assert.Equal(t, 2, a.LongestWinStreak)

	b := out.Players[0]
	assert.Equal(t, "b", b.PlayerID)
	assert.Equal(t, 1, b.TotalMatches)
	assert.Equal(t, 0.0, b.WinRate)

	c := out.Players[2]
	assert.Equal(t, 2, c.TotalMatches)
	assert.Equal(t, 1, c.CurrentStreak)
	assert.Equal(t, 0.5, c.WinRate)

	require.Equal(t, pairs.NewKey("a", "b"), out.Partnerships[0].Key)
	assert.Equal(t, 4, out.Partnerships[0].Count)
	require.NotNil(t, out.Partnerships[0].Last)
	assert.Equal(t, at, *out.Partnerships[0].Last)
	assert.Equal(t, 1, out.Partnerships[1].Count)

	for _, o := range out.Oppositions {
		assert.Equal(t, 1, o.Count)
		assert.True(t, o.Key.A < o.Key.B)
	}

	// Input history is not mutated.
	assert.Equal(t, 3, in.Partnerships[pairs.NewKey("a", "b")].Count)
	assert.Equal(t, 2, in.Players["a"].TotalMatches)
}

func TestAggregate_RejectsUnknownWinningTeam(t *testing.T) {
	for _, winner := range []int{0, 3, -1} {
		_, err := stats.Aggregate(stats.Input{
			Team1:       [2]string{"a", "b"},
			Team2:       [2]string{"c", "d"},
			WinningTeam: winner,
		})
		assert.ErrorIs(t, err, stats.ErrInvalidWinningTeam, "winning team %d", winner)
	}
}
