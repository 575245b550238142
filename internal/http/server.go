package http

import (
	"net/http"

	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/config"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/notifier"
	"github.com/mauv0809/padel-rotation/internal/processor"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/session"
)

func NewServer(store club.ClubStore, sessions session.SessionStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Sessions:       sessions,
		Mapper:         club.NewPlayerMapper(store),
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	slackVerify := slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /clear", Chain(s.ClearStoreHandler(), paramsMiddleware))

	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("POST /players", Chain(s.CreatePlayerHandler(), paramsMiddleware))
	s.Router.Handle("POST /players/{id}/active", Chain(s.SetActiveHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/ratings", Chain(s.RatingHistoryHandler(), paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))

	s.Router.Handle("POST /sessions", Chain(s.CreateSessionHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions", Chain(s.ListSessionsHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions/{id}", Chain(s.GetSessionHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/attendees", Chain(s.AddAttendeesHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /sessions/{id}/attendees/{playerID}", Chain(s.RemoveAttendeeHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/attendees/{playerID}/pause", Chain(s.PauseHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/schedule", Chain(s.GenerateScheduleHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions/{id}/schedule", Chain(s.GetScheduleHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/result", Chain(s.RecordResultHandler(), paramsMiddleware))

	s.Router.Handle("POST /notify-schedule", Chain(s.NotifyScheduleHandler(), paramsMiddleware))
	s.Router.Handle("POST /notify-result", Chain(s.NotifyResultHandler(), paramsMiddleware))

	s.Router.Handle("POST /slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slackVerify))
	s.Router.Handle("POST /slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), paramsMiddleware, slackVerify))
	s.Router.Handle("POST /slack/command/rating-leaderboard", Chain(s.RatingLeaderboardCommandHandler(), paramsMiddleware, slackVerify))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
