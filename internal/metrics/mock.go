package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	schedulesGenerated int
	scheduleDurations  []float64
	localSearchSwaps   int
	resultsRecorded    int
	resultsRejected    int
	unknownReferences  int
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		scheduleDurations: make([]float64, 0),
	}
}

func (m *Mock) IncSchedulesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedulesGenerated++
}

func (m *Mock) ObserveScheduleDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleDurations = append(m.scheduleDurations, seconds)
}

func (m *Mock) AddLocalSearchSwaps(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localSearchSwaps += n
}

func (m *Mock) IncResultsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsRecorded++
}

func (m *Mock) IncResultsRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsRejected++
}

func (m *Mock) AddUnknownReferences(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unknownReferences += n
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SchedulesGenerated returns the number of times IncSchedulesGenerated was called.
func (m *Mock) SchedulesGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedulesGenerated
}

// ScheduleDurations returns every observed schedule duration.
func (m *Mock) ScheduleDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.scheduleDurations...)
}

func (m *Mock) LocalSearchSwaps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.localSearchSwaps
}

// ResultsRecorded returns the number of times IncResultsRecorded was called.
func (m *Mock) ResultsRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsRecorded
}

// ResultsRejected returns the number of times IncResultsRejected was called.
func (m *Mock) ResultsRejected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsRejected
}

func (m *Mock) UnknownReferences() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unknownReferences
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}
