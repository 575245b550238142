package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSchedulesGenerated()
	ObserveScheduleDuration(seconds float64)
	AddLocalSearchSwaps(n int)
	IncResultsRecorded()
	IncResultsRejected()
	AddUnknownReferences(n int)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
