package notifier

import (
	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For freshly generated or regenerated schedules
	SendScheduleNotification(event pubsub.ScheduleGenerated, dryRun bool) error
	// For recorded results
	SendResultNotification(event pubsub.ResultRecorded, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(stats []club.PlayerStats) (any, error)
	FormatRatingLeaderboardResponse(players []club.PlayerInfo) (any, error)
	FormatPlayerStatsResponse(stats *club.PlayerStats) (any, error)
	FormatPlayerNotFoundResponse(query string, suggestions []club.PlayerSuggestion) (any, error)
}
