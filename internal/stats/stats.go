// Package stats aggregates per-player win/loss statistics and partnership and
// opposition counters from recorded results.
package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/padel-rotation/internal/pairs"
)

// ErrInvalidWinningTeam is returned when a result names a winner other than team 1 or 2.
var ErrInvalidWinningTeam = errors.New("winning team must be 1 or 2")

// PlayerStatistics holds the running record of one player.
type PlayerStatistics struct {
	PlayerID         string  `json:"player_id" msgpack:"player_id"`
	TotalMatches     int     `json:"total_matches" msgpack:"total_matches"`
	Wins             int     `json:"wins" msgpack:"wins"`
	Losses           int     `json:"losses" msgpack:"losses"`
	WinRate          float64 `json:"win_rate" msgpack:"win_rate"`
	CurrentStreak    int     `json:"current_streak" msgpack:"current_streak"`
	LongestWinStreak int     `json:"longest_win_streak" msgpack:"longest_win_streak"`
}

// WinRateOf returns wins/total, or 0 when no match has been played.
func WinRateOf(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// Apply returns s updated with one more match.
func Apply(s PlayerStatistics, won bool) PlayerStatistics {
	s.TotalMatches++
	if won {
		s.Wins++
		if s.CurrentStreak > 0 {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.LongestWinStreak {
			s.LongestWinStreak = s.CurrentStreak
		}
	} else {
		s.Losses++
		if s.CurrentStreak < 0 {
			s.CurrentStreak--
		} else {
			s.CurrentStreak = -1
		}
	}
	s.WinRate = WinRateOf(s.Wins, s.TotalMatches)
	return s
}

// Input describes one recorded result and the prior state of everything it touches.
// Missing players or pair records start from zero.
type Input struct {
	Team1        [2]string
	Team2        [2]string
	WinningTeam  int
	At           time.Time
	Players      map[string]PlayerStatistics
	Partnerships pairs.History
	Oppositions  pairs.History
}

// Update is the full set of records a result changes. Players are ordered
// team1[0], team1[1], team2[0], team2[1].
type Update struct {
	Players      [4]PlayerStatistics
	Partnerships [2]pairs.Record
	Oppositions  [4]pairs.Record
}

// Aggregate computes the new records for a result without mutating in.
func Aggregate(in Input) (Update, error) {
	var out Update
	if in.WinningTeam != 1 && in.WinningTeam != 2 {
		return out, fmt.Errorf("%w: got %d", ErrInvalidWinningTeam, in.WinningTeam)
	}

	ids := [4]string{in.Team1[0], in.Team1[1], in.Team2[0], in.Team2[1]}
	for i, id := range ids {
		prev, ok := in.Players[id]
		if !ok {
			prev = PlayerStatistics{PlayerID: id}
		}
		won := (i < 2) == (in.WinningTeam == 1)
		out.Players[i] = Apply(prev, won)
	}

	for i, key := range pairs.Teammates(in.Team1, in.Team2) {
		out.Partnerships[i] = bump(in.Partnerships.Get(key), in.At)
	}
	for i, key := range pairs.Opponents(in.Team1, in.Team2) {
		out.Oppositions[i] = bump(in.Oppositions.Get(key), in.At)
	}
	return out, nil
}

func bump(r pairs.Record, at time.Time) pairs.Record {
	r.Count++
	stamp := at
	r.Last = &stamp
	return r
}
