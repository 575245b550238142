// Package pairs holds the canonical unordered player-pair key used for
// partnership and opposition counters.
package pairs

import "time"

// Key identifies an unordered pair of players. A is always the lower id.
type Key struct {
	A string `json:"player_a" msgpack:"player_a"`
	B string `json:"player_b" msgpack:"player_b"`
}

// NewKey returns the canonical key for two player ids.
func NewKey(x, y string) Key {
	if x > y {
		x, y = y, x
	}
	return Key{A: x, B: y}
}

// Has reports whether id is one of the two players.
func (k Key) Has(id string) bool {
	return k.A == id || k.B == id
}

// Record counts how often a pair has partnered (or opposed) and when it last happened.
type Record struct {
	Key   Key        `json:"key" msgpack:"key"`
	Count int        `json:"count" msgpack:"count"`
	Last  *time.Time `json:"last,omitempty" msgpack:"last,omitempty"`
}

// History indexes records by their canonical key.
type History map[Key]Record

// NewHistory builds a History from a list of records. Records that share a
// key are merged: counts are summed and the most recent timestamp wins.
func NewHistory(records []Record) History {
	h := make(History, len(records))
	for _, r := range records {
		r.Key = NewKey(r.Key.A, r.Key.B)
		existing, ok := h[r.Key]
		if !ok {
			h[r.Key] = r
			continue
		}
		existing.Count += r.Count
		if r.Last != nil && (existing.Last == nil || r.Last.After(*existing.Last)) {
			existing.Last = r.Last
		}
		h[r.Key] = existing
	}
	return h
}

// Get returns the record for key, or a zero-count record when none exists.
func (h History) Get(key Key) Record {
	if r, ok := h[key]; ok {
		return r
	}
	return Record{Key: key}
}

// Add increments the counter for key and stamps it with at.
func (h History) Add(key Key, at time.Time) Record {
	r := h.Get(key)
	r.Count++
	t := at
	r.Last = &t
	h[key] = r
	return r
}

// Teammates returns the keys of the two partnerships in a doubles match.
func Teammates(team1, team2 [2]string) [2]Key {
	return [2]Key{
		NewKey(team1[0], team1[1]),
		NewKey(team2[0], team2[1]),
	}
}

// Opponents returns the keys of the four cross-team pairings in a doubles match.
func Opponents(team1, team2 [2]string) [4]Key {
	return [4]Key{
		NewKey(team1[0], team2[0]),
		NewKey(team1[0], team2[1]),
		NewKey(team1[1], team2[0]),
		NewKey(team1[1], team2[1]),
	}
}
