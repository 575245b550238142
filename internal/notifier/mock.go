package notifier

import (
	"sync"

	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendScheduleNotificationCalls []pubsub.ScheduleGenerated
	SendResultNotificationCalls   []pubsub.ResultRecorded
	FormatPlayerNotFoundCalls     []string

	// Spies
	SendScheduleNotificationFunc        func(event pubsub.ScheduleGenerated, dryRun bool) error
	SendResultNotificationFunc          func(event pubsub.ResultRecorded, dryRun bool) error
	FormatLeaderboardResponseFunc       func(stats []club.PlayerStats) (any, error)
	FormatRatingLeaderboardResponseFunc func(players []club.PlayerInfo) (any, error)
	FormatPlayerStatsResponseFunc       func(stats *club.PlayerStats) (any, error)
	FormatPlayerNotFoundResponseFunc    func(query string, suggestions []club.PlayerSuggestion) (any, error)
}

// NewMock creates a new mock notifier.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendScheduleNotification(event pubsub.ScheduleGenerated, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendScheduleNotificationCalls = append(m.SendScheduleNotificationCalls, event)
	if m.SendScheduleNotificationFunc != nil {
		return m.SendScheduleNotificationFunc(event, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(event pubsub.ResultRecorded, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, event)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(event, dryRun)
	}
	return nil
}

func (m *Mock) FormatLeaderboardResponse(stats []club.PlayerStats) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(stats)
	}
	return map[string]any{"text": "leaderboard"}, nil
}

func (m *Mock) FormatRatingLeaderboardResponse(players []club.PlayerInfo) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatRatingLeaderboardResponseFunc != nil {
		return m.FormatRatingLeaderboardResponseFunc(players)
	}
	return map[string]any{"text": "ratings"}, nil
}

func (m *Mock) FormatPlayerStatsResponse(stats *club.PlayerStats) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		return m.FormatPlayerStatsResponseFunc(stats)
	}
	return map[string]any{"text": stats.PlayerName}, nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string, suggestions []club.PlayerSuggestion) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatPlayerNotFoundCalls = append(m.FormatPlayerNotFoundCalls, query)
	if m.FormatPlayerNotFoundResponseFunc != nil {
		return m.FormatPlayerNotFoundResponseFunc(query, suggestions)
	}
	return map[string]any{"text": "not found: " + query}, nil
}
