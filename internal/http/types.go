package http

import (
	"net/http"

	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/config"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/notifier"
	"github.com/mauv0809/padel-rotation/internal/processor"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/session"
)

type Server struct {
	Store          club.ClubStore
	Sessions       session.SessionStore
	Mapper         *club.PlayerMapper
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type createPlayerRequest struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type createSessionRequest struct {
	Name   string `json:"name"`
	Courts int    `json:"courts"`
	Rounds int    `json:"rounds"`
}

type attendeesRequest struct {
	PlayerIDs []string `json:"player_ids"`
}

type resultRequest struct {
	Team1Score *int `json:"team1_score"`
	Team2Score *int `json:"team2_score"`
}

type sessionResponse struct {
	Session   session.Session   `json:"session"`
	Attendees []roster.Attendee `json:"attendees"`
}

// pushMessage is the envelope Pub/Sub push subscriptions POST to us.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"` // base64-encoded MessagePack payload
		MessageID string `json:"messageId"`
	} `json:"message"`
}
