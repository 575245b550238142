package pubsub

import (
	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/padel-rotation/internal/session"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventScheduleGenerated EventType = "schedule-generated"
	EventResultRecorded    EventType = "result-recorded"
)

// ScheduleGenerated is published after a schedule generation is persisted.
type ScheduleGenerated struct {
	SessionID  string            `msgpack:"session_id"`
	Generation int               `msgpack:"generation"`
	FromRound  int               `msgpack:"from_round"`
	Rounds     []session.Round   `msgpack:"rounds"`
	Names      map[string]string `msgpack:"names"`
}

// ResultRecorded is published after a result is committed.
type ResultRecorded struct {
	SessionID   string                  `msgpack:"session_id"`
	Match       session.Match           `msgpack:"match"`
	Ratings     [4]session.RatingUpdate `msgpack:"ratings"`
	WinningTeam int                     `msgpack:"winning_team"`
	Names       map[string]string       `msgpack:"names"`
}
