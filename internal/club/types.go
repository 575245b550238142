package club

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerStats represents a player's statistics for the leaderboard.
type PlayerStats struct {
	PlayerID         string  `json:"player_id"`
	PlayerName       string  `json:"player_name"`
	Rating           float64 `json:"rating"`
	TotalMatches     int     `json:"total_matches"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinPercentage    float64 `json:"win_percentage"`
	CurrentStreak    int     `json:"current_streak"`
	LongestWinStreak int     `json:"longest_win_streak"`
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Active bool    `json:"active"`
}

// RatingChange is one entry of a player's rating history.
type RatingChange struct {
	MatchID      string    `json:"match_id"`
	RatingBefore float64   `json:"rating_before"`
	RatingAfter  float64   `json:"rating_after"`
	Delta        float64   `json:"delta"`
	RecordedAt   time.Time `json:"recorded_at"`
}
