package club

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/stats"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) AddPlayer(playerID, name string, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return
	}

	if !exists {
		_, err := s.db.Exec("INSERT INTO players (id, name, rating) VALUES (?, ?, ?)", playerID, name, rating)
		if err != nil {
			log.Error("Failed to add player", "error", err, "playerID", playerID)
		} else {
			log.Info("Added new player to the store", "playerID", playerID, "name", name, "rating", rating)
		}
	} else {
		_, err := s.db.Exec("UPDATE players SET name = ? WHERE id = ?", name, playerID)
		if err != nil {
			log.Error("Failed to update player", "error", err, "playerID", playerID)
		} else {
			log.Info("Updated existing player in the store", "playerID", playerID, "name", name)
		}
	}
}

// UpsertPlayers inserts or renames players in one transaction. Ratings of
// existing players are never overwritten; they only move through results.
func (s *store) UpsertPlayers(players []PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating, active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		r := p.Rating
		if r == 0 {
			r = rating.DefaultRating
		}
		if _, err := stmt.Exec(p.ID, p.Name, r, p.Active); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *store) SetActive(playerID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE players SET active = ? WHERE id = ?", active, playerID)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", playerID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, playerID)
	}
	return nil
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPlayers("SELECT id, name, rating, active FROM players ORDER BY name")
}

// GetPlayersSortedByRating retrieves all players, strongest first.
func (s *store) GetPlayersSortedByRating() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPlayers("SELECT id, name, rating, active FROM players ORDER BY rating DESC, id ASC")
}

func (s *store) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	if len(playerIDs) == 0 {
		return []PlayerInfo{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT id, name, rating, active FROM players WHERE id IN (%s) ORDER BY id",
		placeholders(len(playerIDs)))
	return s.queryPlayers(query, ToAnySlice(playerIDs)...)
}

func (s *store) queryPlayers(query string, args ...any) ([]PlayerInfo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query players", "error", err)
		return nil, err
	}
	defer rows.Close()

	players := []PlayerInfo{}
	for rows.Next() {
		var p PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name, &p.Rating, &p.Active); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String
		players = append(players, p)
	}
	return players, rows.Err()
}

const statsSelect = `
	SELECT
		p.id,
		p.name,
		p.rating,
		COALESCE(ps.total_matches, 0),
		COALESCE(ps.wins, 0),
		COALESCE(ps.losses, 0),
		COALESCE(ps.current_streak, 0),
		COALESCE(ps.longest_win_streak, 0)
	FROM players p
	LEFT JOIN player_stats ps ON p.id = ps.player_id
`

func scanStats(scanner interface{ Scan(...any) error }) (PlayerStats, error) {
	var stat PlayerStats
	err := scanner.Scan(
		&stat.PlayerID,
		&stat.PlayerName,
		&stat.Rating,
		&stat.TotalMatches,
		&stat.Wins,
		&stat.Losses,
		&stat.CurrentStreak,
		&stat.LongestWinStreak,
	)
	if err != nil {
		return stat, err
	}
	stat.WinPercentage = stats.WinRateOf(stat.Wins, stat.TotalMatches) * 100
	return stat, nil
}

// GetPlayerStats returns the leaderboard: every player who has played, by
// rating and then wins.
func (s *store) GetPlayerStats() ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(statsSelect + `
		WHERE COALESCE(ps.total_matches, 0) > 0
		ORDER BY p.rating DESC, ps.wins DESC, p.id ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaderboard []PlayerStats
	for rows.Next() {
		stat, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		leaderboard = append(leaderboard, stat)
	}
	return leaderboard, rows.Err()
}

// GetPlayerStatsByName retrieves the statistics for a single player by their name.
// It performs a case-insensitive, fuzzy search (e.g., "morten" will match "Morten Voss").
func (s *store) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := "%" + playerName + "%"
	row := s.db.QueryRow(statsSelect+`
		WHERE p.name LIKE ? COLLATE NOCASE
		ORDER BY p.name
		LIMIT 1
	`, pattern)

	stat, err := scanStats(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("No stats found for player matching pattern", "pattern", pattern)
			return nil, fmt.Errorf("%w: matching '%s'", ErrNotFound, playerName)
		}
		log.Error("Failed to query player stats by name", "error", err, "pattern", pattern)
		return nil, fmt.Errorf("database error: %w", err)
	}

	log.Debug("Found player stats by name", "player", stat.PlayerName)
	return &stat, nil
}

// GetStatistics loads the statistics rows of the given players. Players
// without a row are absent from the map.
func (s *store) GetStatistics(playerIDs []string) (map[string]stats.PlayerStatistics, error) {
	result := make(map[string]stats.PlayerStatistics, len(playerIDs))
	if len(playerIDs) == 0 {
		return result, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT player_id, total_matches, wins, losses, current_streak, longest_win_streak
		FROM player_stats WHERE player_id IN (%s)
	`, placeholders(len(playerIDs))), ToAnySlice(playerIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st stats.PlayerStatistics
		if err := rows.Scan(&st.PlayerID, &st.TotalMatches, &st.Wins, &st.Losses, &st.CurrentStreak, &st.LongestWinStreak); err != nil {
			return nil, fmt.Errorf("failed to scan statistics: %w", err)
		}
		st.WinRate = stats.WinRateOf(st.Wins, st.TotalMatches)
		result[st.PlayerID] = st
	}
	return result, rows.Err()
}

func (s *store) GetPartnerships() ([]pairs.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPairs("SELECT player_a, player_b, times_partnered, last_partnered FROM partnerships ORDER BY player_a, player_b")
}

func (s *store) GetOppositions() ([]pairs.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPairs("SELECT player_a, player_b, times_opposed, last_opposed FROM oppositions ORDER BY player_a, player_b")
}

// GetPairRecords loads the partnership and opposition records for the given
// keys. Keys without a record are absent from the returned histories.
func (s *store) GetPairRecords(keys []pairs.Key) (pairs.History, pairs.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partnerships := pairs.History{}
	oppositions := pairs.History{}
	for _, k := range keys {
		k = pairs.NewKey(k.A, k.B)
		p, err := s.queryPairs("SELECT player_a, player_b, times_partnered, last_partnered FROM partnerships WHERE player_a = ? AND player_b = ?", k.A, k.B)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range p {
			partnerships[r.Key] = r
		}
		o, err := s.queryPairs("SELECT player_a, player_b, times_opposed, last_opposed FROM oppositions WHERE player_a = ? AND player_b = ?", k.A, k.B)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range o {
			oppositions[r.Key] = r
		}
	}
	return partnerships, oppositions, nil
}

func (s *store) queryPairs(query string, args ...any) ([]pairs.Record, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pair history: %w", err)
	}
	defer rows.Close()

	var records []pairs.Record
	for rows.Next() {
		var r pairs.Record
		var last sql.NullInt64
		if err := rows.Scan(&r.Key.A, &r.Key.B, &r.Count, &last); err != nil {
			return nil, fmt.Errorf("failed to scan pair history: %w", err)
		}
		if last.Valid {
			t := time.Unix(last.Int64, 0).UTC()
			r.Last = &t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *store) GetRatingHistory(playerID string) ([]RatingChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT match_id, rating_before, rating_after, delta, recorded_at
		FROM rating_history
		WHERE player_id = ?
		ORDER BY recorded_at ASC, id ASC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	history := []RatingChange{}
	for rows.Next() {
		var c RatingChange
		var at int64
		if err := rows.Scan(&c.MatchID, &c.RatingBefore, &c.RatingAfter, &c.Delta, &at); err != nil {
			return nil, fmt.Errorf("failed to scan rating history: %w", err)
		}
		c.RecordedAt = time.Unix(at, 0).UTC()
		history = append(history, c)
	}
	return history, rows.Err()
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"rating_history", "session_bench", "session_matches", "session_attendance", "sessions", "partnerships", "oppositions", "player_stats", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
