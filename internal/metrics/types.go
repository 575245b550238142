package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	SchedulesGenerated prometheus.Counter
	ScheduleDuration   prometheus.Histogram
	LocalSearchSwaps   prometheus.Counter
	ResultsRecorded    prometheus.Counter
	ResultsRejected    prometheus.Counter
	UnknownReferences  prometheus.Counter
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
