package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SchedulesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_schedules_generated_total",
			Help: "The total number of schedules generated or regenerated.",
		}),
		ScheduleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rotation_schedule_duration_seconds",
			Help:    "Time spent computing a schedule.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		LocalSearchSwaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_local_search_swaps_total",
			Help: "The total number of improving swaps accepted by the local search.",
		}),
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_results_recorded_total",
			Help: "The total number of match results committed.",
		}),
		ResultsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_results_rejected_total",
			Help: "The total number of submitted results rejected as invalid.",
		}),
		UnknownReferences: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_unknown_player_references_total",
			Help: "History records dropped because they named a player outside the roster.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rotation_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SchedulesGenerated,
		s.ScheduleDuration,
		s.LocalSearchSwaps,
		s.ResultsRecorded,
		s.ResultsRejected,
		s.UnknownReferences,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSchedulesGenerated() {
	s.SchedulesGenerated.Inc()
}

func (s *Service) ObserveScheduleDuration(seconds float64) {
	s.ScheduleDuration.Observe(seconds)
}

func (s *Service) AddLocalSearchSwaps(n int) {
	s.LocalSearchSwaps.Add(float64(n))
}

func (s *Service) IncResultsRecorded() {
	s.ResultsRecorded.Inc()
}

func (s *Service) IncResultsRejected() {
	s.ResultsRejected.Inc()
}

func (s *Service) AddUnknownReferences(n int) {
	s.UnknownReferences.Add(float64(n))
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
