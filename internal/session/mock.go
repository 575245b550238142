package session

import (
	"sync"

	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
)

// MockStore is a mock implementation of the SessionStore interface for testing.
type MockStore struct {
	mu sync.Mutex

	CreateSessionFunc     func(name string, courts, rounds int) (*Session, error)
	GetSessionFunc        func(sessionID string) (*Session, error)
	ListSessionsFunc      func() ([]Session, error)
	AddAttendeeFunc       func(sessionID, playerID string) error
	RemoveAttendeeFunc    func(sessionID, playerID string) error
	SetPausedFunc         func(sessionID, playerID string, paused bool) error
	GetAttendeesFunc      func(sessionID string) ([]roster.Attendee, error)
	LastResolvedRoundFunc func(sessionID string) (int, error)
	ReplaceScheduleFunc   func(sessionID string, offset int, rounds []scheduler.Round) (int, error)
	GetScheduleFunc       func(sessionID string) (*Schedule, error)
	GetMatchFunc          func(matchID string) (*Match, error)
	CommitResultFunc      func(commit ResultCommit) error

	// Call records
	AddAttendeeCalls    [][2]string
	SetPausedCalls      []SetPausedCall
	ReplaceScheduleCalls []ReplaceScheduleCall
	CommitResultCalls   []ResultCommit
}

type SetPausedCall struct {
	SessionID string
	PlayerID  string
	Paused    bool
}

type ReplaceScheduleCall struct {
	SessionID string
	Offset    int
	Rounds    []scheduler.Round
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) CreateSession(name string, courts, rounds int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(name, courts, rounds)
	}
	return &Session{ID: "mock-session", Name: name, Courts: courts, Rounds: rounds}, nil
}

func (m *MockStore) GetSession(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(sessionID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListSessions() ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc()
	}
	return []Session{}, nil
}

func (m *MockStore) AddAttendee(sessionID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddAttendeeCalls = append(m.AddAttendeeCalls, [2]string{sessionID, playerID})
	if m.AddAttendeeFunc != nil {
		return m.AddAttendeeFunc(sessionID, playerID)
	}
	return nil
}

func (m *MockStore) RemoveAttendee(sessionID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveAttendeeFunc != nil {
		return m.RemoveAttendeeFunc(sessionID, playerID)
	}
	return nil
}

func (m *MockStore) SetPaused(sessionID, playerID string, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetPausedCalls = append(m.SetPausedCalls, SetPausedCall{sessionID, playerID, paused})
	if m.SetPausedFunc != nil {
		return m.SetPausedFunc(sessionID, playerID, paused)
	}
	return nil
}

func (m *MockStore) GetAttendees(sessionID string) ([]roster.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAttendeesFunc != nil {
		return m.GetAttendeesFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) LastResolvedRound(sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LastResolvedRoundFunc != nil {
		return m.LastResolvedRoundFunc(sessionID)
	}
	return 0, nil
}

func (m *MockStore) ReplaceSchedule(sessionID string, offset int, rounds []scheduler.Round) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceScheduleCalls = append(m.ReplaceScheduleCalls, ReplaceScheduleCall{sessionID, offset, rounds})
	if m.ReplaceScheduleFunc != nil {
		return m.ReplaceScheduleFunc(sessionID, offset, rounds)
	}
	return len(m.ReplaceScheduleCalls), nil
}

func (m *MockStore) GetSchedule(sessionID string) (*Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetScheduleFunc != nil {
		return m.GetScheduleFunc(sessionID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetMatch(matchID string) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) CommitResult(commit ResultCommit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitResultCalls = append(m.CommitResultCalls, commit)
	if m.CommitResultFunc != nil {
		return m.CommitResultFunc(commit)
	}
	return nil
}
