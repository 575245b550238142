package session

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
)

// NewStore creates a new session store
func NewStore(db *sql.DB) SessionStore {
	return &store{
		db:  db,
		now: time.Now,
	}
}

// CreateSession creates a new session
func (s *store) CreateSession(name string, courts, rounds int) (*Session, error) {
	if courts < 1 || rounds < 1 {
		return nil, fmt.Errorf("%w: courts=%d rounds=%d", scheduler.ErrInvalidConfiguration, courts, rounds)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		ID:        uuid.New().String(),
		Name:      name,
		Courts:    courts,
		Rounds:    rounds,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (id, name, courts, rounds, generation, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, session.ID, session.Name, session.Courts, session.Rounds, session.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("Created session", "id", session.ID, "name", name, "courts", courts, "rounds", rounds)
	return session, nil
}

// GetSession retrieves a session by ID
func (s *store) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSession(s.db, sessionID)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func (s *store) getSession(q querier, sessionID string) (*Session, error) {
	var session Session
	var createdAt int64
	err := q.QueryRow(`
		SELECT id, name, courts, rounds, generation, created_at
		FROM sessions WHERE id = ?
	`, sessionID).Scan(&session.ID, &session.Name, &session.Courts, &session.Rounds, &session.Generation, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &session, nil
}

// ListSessions returns all sessions, newest first
func (s *store) ListSessions() ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, courts, rounds, generation, created_at
		FROM sessions ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var session Session
		var createdAt int64
		if err := rows.Scan(&session.ID, &session.Name, &session.Courts, &session.Rounds, &session.Generation, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		session.CreatedAt = time.Unix(createdAt, 0).UTC()
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// AddAttendee registers a player for a session. Adding an existing attendee is a no-op.
func (s *store) AddAttendee(sessionID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getSession(s.db, sessionID); err != nil {
		return err
	}
	var known bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&known); err != nil {
		return fmt.Errorf("failed to check player: %w", err)
	}
	if !known {
		return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}

	_, err := s.db.Exec(`
		INSERT INTO session_attendance (session_id, player_id, paused) VALUES (?, ?, 0)
		ON CONFLICT(session_id, player_id) DO NOTHING
	`, sessionID, playerID)
	if err != nil {
		return fmt.Errorf("failed to add attendee: %w", err)
	}
	log.Info("Added attendee", "sessionID", sessionID, "playerID", playerID)
	return nil
}

func (s *store) RemoveAttendee(sessionID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM session_attendance WHERE session_id = ? AND player_id = ?", sessionID, playerID)
	if err != nil {
		return fmt.Errorf("failed to remove attendee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: attendee %s in session %s", ErrNotFound, playerID, sessionID)
	}
	log.Info("Removed attendee", "sessionID", sessionID, "playerID", playerID)
	return nil
}

func (s *store) SetPaused(sessionID, playerID string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE session_attendance SET paused = ? WHERE session_id = ? AND player_id = ?", paused, sessionID, playerID)
	if err != nil {
		return fmt.Errorf("failed to update pause flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: attendee %s in session %s", ErrNotFound, playerID, sessionID)
	}
	return nil
}

// GetAttendees returns the attending players ordered by id
func (s *store) GetAttendees(sessionID string) ([]roster.Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getSession(s.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.rating, p.active, a.paused
		FROM session_attendance a
		JOIN players p ON p.id = a.player_id
		WHERE a.session_id = ?
		ORDER BY p.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees: %w", err)
	}
	defer rows.Close()

	attendees := []roster.Attendee{}
	for rows.Next() {
		var a roster.Attendee
		if err := rows.Scan(&a.ID, &a.Name, &a.Rating, &a.Active, &a.Paused); err != nil {
			return nil, fmt.Errorf("failed to scan attendee row: %w", err)
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (s *store) LastResolvedRound(sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lastResolvedRound(s.db, sessionID)
}

func lastResolvedRound(q querier, sessionID string) (int, error) {
	var round int
	err := q.QueryRow(`
		SELECT COALESCE(MAX(round), 0) FROM session_matches
		WHERE session_id = ? AND winning_team IS NOT NULL
	`, sessionID).Scan(&round)
	if err != nil {
		return 0, fmt.Errorf("failed to query last resolved round: %w", err)
	}
	return round, nil
}

// ReplaceSchedule swaps the unresolved part of a session's schedule in a single
// transaction. Resolved matches and the bench entries of rounds up to offset
// are kept.
func (s *store) ReplaceSchedule(sessionID string, offset int, rounds []scheduler.Round) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := s.getSession(tx, sessionID)
	if err != nil {
		return 0, err
	}
	generation := session.Generation + 1

	// The plan was built from offset; a result recorded since then would put
	// new matches into an already played round.
	current, err := lastResolvedRound(tx, sessionID)
	if err != nil {
		return 0, err
	}
	if current != offset {
		return 0, fmt.Errorf("%w: last resolved round is %d, schedule planned from %d", ErrConcurrentUpdate, current, offset)
	}

	res, err := tx.Exec("DELETE FROM session_matches WHERE session_id = ? AND winning_team IS NULL", sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete unresolved matches: %w", err)
	}
	removed, _ := res.RowsAffected()
	if _, err := tx.Exec("DELETE FROM session_bench WHERE session_id = ? AND round > ?", sessionID, offset); err != nil {
		return 0, fmt.Errorf("failed to delete bench entries: %w", err)
	}

	matchStmt, err := tx.Prepare(`
		INSERT INTO session_matches (id, session_id, generation, round, court, team1_player1, team1_player2, team2_player1, team2_player2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	benchStmt, err := tx.Prepare("INSERT INTO session_bench (session_id, generation, round, player_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare bench insert: %w", err)
	}
	defer benchStmt.Close()

	for _, r := range rounds {
		round := r.Number + offset
		for _, m := range r.Matches {
			_, err := matchStmt.Exec(uuid.New().String(), sessionID, generation, round, m.Court,
				m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1])
			if err != nil {
				return 0, fmt.Errorf("failed to insert match round %d court %d: %w", round, m.Court, err)
			}
		}
		for _, id := range r.Benched {
			if _, err := benchStmt.Exec(sessionID, generation, round, id); err != nil {
				return 0, fmt.Errorf("failed to insert bench entry round %d: %w", round, err)
			}
		}
	}

	if _, err := tx.Exec("UPDATE sessions SET generation = ? WHERE id = ?", generation, sessionID); err != nil {
		return 0, fmt.Errorf("failed to bump generation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit schedule: %w", err)
	}

	log.Info("Replaced schedule", "sessionID", sessionID, "generation", generation, "offset", offset, "rounds", len(rounds), "removedMatches", removed)
	return generation, nil
}

const matchColumns = `id, session_id, generation, round, court, team1_player1, team1_player2, team2_player1, team2_player2,
	team1_score, team2_score, winning_team, resolved_at`

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var s1, s2, winner, resolvedAt sql.NullInt64
	err := scanner.Scan(&m.ID, &m.SessionID, &m.Generation, &m.Round, &m.Court,
		&m.Team1[0], &m.Team1[1], &m.Team2[0], &m.Team2[1],
		&s1, &s2, &winner, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		m.Result = &Result{
			Team1Score:  int(s1.Int64),
			Team2Score:  int(s2.Int64),
			WinningTeam: int(winner.Int64),
			ResolvedAt:  time.Unix(resolvedAt.Int64, 0).UTC(),
		}
	}
	return &m, nil
}

func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanMatch(s.db.QueryRow("SELECT "+matchColumns+" FROM session_matches WHERE id = ?", matchID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// GetSchedule returns the session's matches and bench grouped by round.
func (s *store) GetSchedule(sessionID string) (*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(s.db, sessionID)
	if err != nil {
		return nil, err
	}

	byRound := map[int]*Round{}
	var order []int
	roundFor := func(n int) *Round {
		if r, ok := byRound[n]; ok {
			return r
		}
		r := &Round{Number: n, Matches: []Match{}, Benched: []string{}}
		byRound[n] = r
		order = append(order, n)
		return r
	}

	rows, err := s.db.Query("SELECT "+matchColumns+" FROM session_matches WHERE session_id = ? ORDER BY round, court", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		r := roundFor(m.Round)
		r.Matches = append(r.Matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	benchRows, err := s.db.Query("SELECT round, player_id FROM session_bench WHERE session_id = ? ORDER BY round, player_id", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bench: %w", err)
	}
	defer benchRows.Close()
	for benchRows.Next() {
		var n int
		var id string
		if err := benchRows.Scan(&n, &id); err != nil {
			return nil, fmt.Errorf("failed to scan bench row: %w", err)
		}
		r := roundFor(n)
		r.Benched = append(r.Benched, id)
	}
	if err := benchRows.Err(); err != nil {
		return nil, err
	}

	schedule := &Schedule{Session: *session, Rounds: make([]Round, 0, len(order))}
	sort.Ints(order)
	for _, n := range order {
		schedule.Rounds = append(schedule.Rounds, *byRound[n])
	}
	return schedule, nil
}

// CommitResult writes a result and everything derived from it in one
// transaction. The match must still be unresolved and every participant's
// rating must still equal its Before value.
func (s *store) CommitResult(c ResultCommit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	at := c.At.Unix()
	res, err := tx.Exec(`
		UPDATE session_matches
		SET team1_score = ?, team2_score = ?, winning_team = ?, resolved_at = ?
		WHERE id = ? AND winning_team IS NULL
	`, c.Team1Score, c.Team2Score, c.WinningTeam, at, c.MatchID)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM session_matches WHERE id = ?)", c.MatchID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check match: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: match %s", ErrNotFound, c.MatchID)
		}
		return ErrMatchResolved
	}

	for _, r := range c.Ratings {
		res, err := tx.Exec("UPDATE players SET rating = ? WHERE id = ? AND rating = ?", r.After, r.PlayerID, r.Before)
		if err != nil {
			return fmt.Errorf("failed to update rating of %s: %w", r.PlayerID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: player %s", ErrConcurrentUpdate, r.PlayerID)
		}
		_, err = tx.Exec(`
			INSERT INTO rating_history (player_id, match_id, rating_before, rating_after, delta, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.PlayerID, c.MatchID, r.Before, r.After, r.Delta, at)
		if err != nil {
			return fmt.Errorf("failed to insert rating history of %s: %w", r.PlayerID, err)
		}
	}

	for _, st := range c.Statistics {
		_, err := tx.Exec(`
			INSERT INTO player_stats (player_id, total_matches, wins, losses, current_streak, longest_win_streak)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				total_matches = excluded.total_matches,
				wins = excluded.wins,
				losses = excluded.losses,
				current_streak = excluded.current_streak,
				longest_win_streak = excluded.longest_win_streak
		`, st.PlayerID, st.TotalMatches, st.Wins, st.Losses, st.CurrentStreak, st.LongestWinStreak)
		if err != nil {
			return fmt.Errorf("failed to update statistics of %s: %w", st.PlayerID, err)
		}
	}

	for _, p := range c.Partnerships {
		_, err := tx.Exec(`
			INSERT INTO partnerships (player_a, player_b, times_partnered, last_partnered) VALUES (?, ?, ?, ?)
			ON CONFLICT(player_a, player_b) DO UPDATE SET
				times_partnered = excluded.times_partnered,
				last_partnered = excluded.last_partnered
		`, p.Key.A, p.Key.B, p.Count, unixOrNil(p.Last))
		if err != nil {
			return fmt.Errorf("failed to update partnership %s/%s: %w", p.Key.A, p.Key.B, err)
		}
	}
	for _, o := range c.Oppositions {
		_, err := tx.Exec(`
			INSERT INTO oppositions (player_a, player_b, times_opposed, last_opposed) VALUES (?, ?, ?, ?)
			ON CONFLICT(player_a, player_b) DO UPDATE SET
				times_opposed = excluded.times_opposed,
				last_opposed = excluded.last_opposed
		`, o.Key.A, o.Key.B, o.Count, unixOrNil(o.Last))
		if err != nil {
			return fmt.Errorf("failed to update opposition %s/%s: %w", o.Key.A, o.Key.B, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	log.Info("Committed result", "matchID", c.MatchID, "score", fmt.Sprintf("%d-%d", c.Team1Score, c.Team2Score), "winningTeam", c.WinningTeam)
	return nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
