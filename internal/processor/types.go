package processor

import (
	"time"

	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
	"github.com/mauv0809/padel-rotation/internal/session"
	"github.com/mauv0809/padel-rotation/internal/stats"
)

// maxCommitAttempts bounds how often a result or a schedule is recomputed
// after the store reports a concurrent update.
const maxCommitAttempts = 3

// Processor orchestrates schedule generation and result recording.
type Processor struct {
	club      club.ClubStore
	sessions  session.SessionStore
	scheduler *scheduler.Scheduler
	rating    *rating.Engine
	notifier  Notifier
	metrics   metrics.Metrics
	pubsub    pubsub.PubSubClient
	now       func() time.Time
}

// ResultSummary describes what recording a result changed.
type ResultSummary struct {
	Match      session.Match             `json:"match"`
	Outcome    rating.Outcome            `json:"outcome"`
	Ratings    [4]session.RatingUpdate   `json:"ratings"`
	Statistics [4]stats.PlayerStatistics `json:"statistics"`
	DryRun     bool                      `json:"dry_run"`
}
