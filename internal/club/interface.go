package club

import (
	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/stats"
)

// ClubStore defines the interface for interacting with the club's players and
// their accumulated history.
type ClubStore interface {
	AddPlayer(playerID, name string, rating float64)
	UpsertPlayers(players []PlayerInfo) error
	SetActive(playerID string, active bool) error
	IsKnownPlayer(playerID string) bool
	GetAllPlayers() ([]PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	GetPlayersSortedByRating() ([]PlayerInfo, error)
	GetPlayerStats() ([]PlayerStats, error)
	GetPlayerStatsByName(playerName string) (*PlayerStats, error)
	GetStatistics(playerIDs []string) (map[string]stats.PlayerStatistics, error)
	GetPartnerships() ([]pairs.Record, error)
	GetOppositions() ([]pairs.Record, error)
	GetPairRecords(keys []pairs.Key) (partnerships, oppositions pairs.History, err error)
	GetRatingHistory(playerID string) ([]RatingChange, error)
	Clear()
}
