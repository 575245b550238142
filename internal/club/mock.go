package club

import (
	"sync"

	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/stats"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	AddPlayerFunc                func(playerID, name string, rating float64)
	UpsertPlayersFunc            func(players []PlayerInfo) error
	SetActiveFunc                func(playerID string, active bool) error
	IsKnownPlayerFunc            func(playerID string) bool
	GetAllPlayersFunc            func() ([]PlayerInfo, error)
	GetPlayersFunc               func(playerIDs []string) ([]PlayerInfo, error)
	GetPlayersSortedByRatingFunc func() ([]PlayerInfo, error)
	GetPlayerStatsFunc           func() ([]PlayerStats, error)
	GetPlayerStatsByNameFunc     func(playerName string) (*PlayerStats, error)
	GetStatisticsFunc            func(playerIDs []string) (map[string]stats.PlayerStatistics, error)
	GetPartnershipsFunc          func() ([]pairs.Record, error)
	GetOppositionsFunc           func() ([]pairs.Record, error)
	GetPairRecordsFunc           func(keys []pairs.Key) (pairs.History, pairs.History, error)
	GetRatingHistoryFunc         func(playerID string) ([]RatingChange, error)
	ClearFunc                    func()

	// Call records
	AddPlayerCalls []PlayerInfo
	UpsertPlayersCalls [][]PlayerInfo
	SetActiveCalls []struct {
		PlayerID string
		Active   bool
	}
	GetPlayerStatsByNameCalls []string
	GetStatisticsCalls        [][]string
	GetPairRecordsCalls       [][]pairs.Key
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = nil
	m.UpsertPlayersCalls = nil
	m.SetActiveCalls = nil
	m.GetPlayerStatsByNameCalls = nil
	m.GetStatisticsCalls = nil
	m.GetPairRecordsCalls = nil
}

func (m *MockStore) AddPlayer(playerID, name string, rating float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, PlayerInfo{ID: playerID, Name: name, Rating: rating, Active: true})
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name, rating)
	}
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) SetActive(playerID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetActiveCalls = append(m.SetActiveCalls, struct {
		PlayerID string
		Active   bool
	}{playerID, active})
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(playerID, active)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetPlayersSortedByRating() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayersSortedByRatingFunc != nil {
		return m.GetPlayersSortedByRatingFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerStats() ([]PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerStatsFunc != nil {
		return m.GetPlayerStatsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayerStatsByNameCalls = append(m.GetPlayerStatsByNameCalls, playerName)
	if m.GetPlayerStatsByNameFunc != nil {
		return m.GetPlayerStatsByNameFunc(playerName)
	}
	return nil, nil
}

func (m *MockStore) GetStatistics(playerIDs []string) (map[string]stats.PlayerStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetStatisticsCalls = append(m.GetStatisticsCalls, playerIDs)
	if m.GetStatisticsFunc != nil {
		return m.GetStatisticsFunc(playerIDs)
	}
	return map[string]stats.PlayerStatistics{}, nil
}

func (m *MockStore) GetPartnerships() ([]pairs.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPartnershipsFunc != nil {
		return m.GetPartnershipsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetOppositions() ([]pairs.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetOppositionsFunc != nil {
		return m.GetOppositionsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPairRecords(keys []pairs.Key) (pairs.History, pairs.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPairRecordsCalls = append(m.GetPairRecordsCalls, keys)
	if m.GetPairRecordsFunc != nil {
		return m.GetPairRecordsFunc(keys)
	}
	return pairs.History{}, pairs.History{}, nil
}

func (m *MockStore) GetRatingHistory(playerID string) ([]RatingChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRatingHistoryFunc != nil {
		return m.GetRatingHistoryFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
