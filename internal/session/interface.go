package session

import (
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
)

// SessionStore persists sessions, attendance, schedules and results.
type SessionStore interface {
	// CreateSession creates a session with the given court and round counts
	CreateSession(name string, courts, rounds int) (*Session, error)

	// GetSession retrieves a session by ID
	GetSession(sessionID string) (*Session, error)

	// ListSessions returns all sessions, newest first
	ListSessions() ([]Session, error)

	AddAttendee(sessionID, playerID string) error
	RemoveAttendee(sessionID, playerID string) error
	SetPaused(sessionID, playerID string, paused bool) error

	// GetAttendees returns the attending players with their current rating and flags
	GetAttendees(sessionID string) ([]roster.Attendee, error)

	// LastResolvedRound returns the highest round holding a recorded result, or 0
	LastResolvedRound(sessionID string) (int, error)

	// ReplaceSchedule atomically swaps every unresolved match and bench entry of
	// the session for rounds, renumbered to start after offset. It returns the
	// new generation, or ErrConcurrentUpdate when offset is no longer the last
	// resolved round.
	ReplaceSchedule(sessionID string, offset int, rounds []scheduler.Round) (int, error)

	GetSchedule(sessionID string) (*Schedule, error)
	GetMatch(matchID string) (*Match, error)

	// CommitResult atomically records a result with its rating, statistics
	// and pair history changes
	CommitResult(commit ResultCommit) error
}
