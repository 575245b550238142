package session

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/stats"
)

// store handles database operations for sessions
type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Session is one club evening: a fixed number of courts and rounds.
type Session struct {
	ID         string    `json:"id" msgpack:"id"`
	Name       string    `json:"name" msgpack:"name"`
	Courts     int       `json:"courts" msgpack:"courts"`
	Rounds     int       `json:"rounds" msgpack:"rounds"`
	Generation int       `json:"generation" msgpack:"generation"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at"`
}

// Result is the recorded outcome of a match.
type Result struct {
	Team1Score  int       `json:"team1_score" msgpack:"team1_score"`
	Team2Score  int       `json:"team2_score" msgpack:"team2_score"`
	WinningTeam int       `json:"winning_team" msgpack:"winning_team"`
	ResolvedAt  time.Time `json:"resolved_at" msgpack:"resolved_at"`
}

// Match is a persisted scheduled match.
type Match struct {
	ID         string    `json:"id" msgpack:"id"`
	SessionID  string    `json:"session_id" msgpack:"session_id"`
	Generation int       `json:"generation" msgpack:"generation"`
	Round      int       `json:"round" msgpack:"round"`
	Court      int       `json:"court" msgpack:"court"`
	Team1      [2]string `json:"team1" msgpack:"team1"`
	Team2      [2]string `json:"team2" msgpack:"team2"`
	Result     *Result   `json:"result,omitempty" msgpack:"result,omitempty"`
}

// Resolved reports whether a result has been recorded.
func (m Match) Resolved() bool { return m.Result != nil }

// Round groups the matches and bench of one round.
type Round struct {
	Number  int      `json:"round" msgpack:"round"`
	Matches []Match  `json:"matches" msgpack:"matches"`
	Benched []string `json:"benched" msgpack:"benched"`
}

// Schedule is everything currently planned or played in a session.
type Schedule struct {
	Session Session `json:"session" msgpack:"session"`
	Rounds  []Round `json:"rounds" msgpack:"rounds"`
}

// RatingUpdate is the before/after rating of one participant. Delta is the
// engine's signed change, stored as is so the four deltas of a match cancel out.
type RatingUpdate struct {
	PlayerID string  `json:"player_id" msgpack:"player_id"`
	Before   float64 `json:"before" msgpack:"before"`
	After    float64 `json:"after" msgpack:"after"`
	Delta    float64 `json:"delta" msgpack:"delta"`
}

// ResultCommit is the full write set of one recorded result.
type ResultCommit struct {
	MatchID      string
	Team1Score   int
	Team2Score   int
	WinningTeam  int
	At           time.Time
	Ratings      [4]RatingUpdate
	Statistics   [4]stats.PlayerStatistics
	Partnerships [2]pairs.Record
	Oppositions  [4]pairs.Record
}
