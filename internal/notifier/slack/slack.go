package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/notifier"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendScheduleNotification(event pubsub.ScheduleGenerated, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatScheduleNotification(event), dryRun)
	return err
}

func (s *Notifier) SendResultNotification(event pubsub.ResultRecorded, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatResultNotification(event), dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(stats []club.PlayerStats) (any, error) {
	return s.formatLeaderboard(stats), nil
}

// FormatRatingLeaderboardResponse formats the players ordered by rating.
func (s *Notifier) FormatRatingLeaderboardResponse(players []club.PlayerInfo) (any, error) {
	return s.formatRatingLeaderboard(players), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(stats *club.PlayerStats) (any, error) {
	return s.formatPlayerStats(stats), nil
}

// FormatPlayerNotFoundResponse formats a player not found message, listing close matches if any.
func (s *Notifier) FormatPlayerNotFoundResponse(query string, suggestions []club.PlayerSuggestion) (any, error) {
	return s.formatPlayerNotFound(query, suggestions), nil
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

func teamName(names map[string]string, team [2]string) string {
	return displayName(names, team[0]) + " & " + displayName(names, team[1])
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func localTime(t time.Time) string {
	if loc, err := time.LoadLocation("Europe/Copenhagen"); err == nil {
		t = t.In(loc)
	}
	return t.Format("Monday 02 Jan, 15:04")
}

// formatScheduleNotification lists every round of a new schedule generation.
func (s *Notifier) formatScheduleNotification(event pubsub.ScheduleGenerated) slack.Message {
	blocks := make([]slack.Block, 0, len(event.Rounds)+2)

	headerText := slack.NewTextBlockObject("plain_text", "🎾 New rotation is out! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(event.Rounds) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No rounds left to play.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, round := range event.Rounds {
		lines := []string{fmt.Sprintf("*Round %d*", round.Number)}
		for _, m := range round.Matches {
			lines = append(lines, fmt.Sprintf("• Court %d: %s vs %s", m.Court, teamName(event.Names, m.Team1), teamName(event.Names, m.Team2)))
		}
		if len(round.Benched) > 0 {
			benched := make([]string, len(round.Benched))
			for i, id := range round.Benched {
				benched[i] = displayName(event.Names, id)
			}
			lines = append(lines, "_Sitting out: "+strings.Join(benched, ", ")+"_")
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))
	}

	if event.Generation > 1 {
		contextText := fmt.Sprintf("Regenerated from round %d (version %d)", event.FromRound, event.Generation)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, false, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification announces a recorded result and the rating changes it caused.
func (s *Notifier) formatResultNotification(event pubsub.ResultRecorded) slack.Message {
	blocks := make([]slack.Block, 0, 4)
	match := event.Match

	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match finished! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Round %d, court %d", match.Round, match.Court)
	if match.Result != nil {
		detailsText += " at " + localTime(match.Result.ResolvedAt)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, false, false), nil, nil))

	winners := match.Team1
	if event.WinningTeam == 2 {
		winners = match.Team2
	}
	resultText := fmt.Sprintf("Result: %s won! 🏆", teamName(event.Names, winners))
	var fields []*slack.TextBlockObject
	if match.Result != nil {
		fields = append(fields,
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s\n%d", teamName(event.Names, match.Team1), match.Result.Team1Score), true, false),
			slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s\n%d", teamName(event.Names, match.Team2), match.Result.Team2Score), true, false),
		)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), fields, nil))

	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("mrkdwn", formatRatingChanges(event), false, false)))

	return slack.NewBlockMessage(blocks...)
}

func formatRatingChanges(event pubsub.ResultRecorded) string {
	lines := make([]string, 0, 5)
	for _, u := range event.Ratings {
		lines = append(lines, fmt.Sprintf("%s: %.0f → %.0f (%+.1f)", displayName(event.Names, u.PlayerID), u.Before, u.After, u.Delta))
	}
	odds := rating.Expected(
		rating.TeamAverage([2]float64{event.Ratings[0].Before, event.Ratings[1].Before}),
		rating.TeamAverage([2]float64{event.Ratings[2].Before, event.Ratings[3].Before}),
	)
	lines = append(lines, fmt.Sprintf("Pre-match odds for %s: %.0f%%", teamName(event.Names, event.Match.Team1), odds*100))
	return strings.Join(lines, "\n")
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(stats []club.PlayerStats) slack.Message {
	blocks := make([]slack.Block, 0, len(stats)+1)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(stats) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, stat := range stats {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> Match Win %%: %.2f%% (%d/%d) | Rating: %.0f | Streak: %d",
			rank,
			medal(rank),
			stat.PlayerName,
			stat.WinPercentage,
			stat.Wins,
			stat.TotalMatches,
			stat.Rating,
			stat.CurrentStreak,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatRatingLeaderboard creates a Slack message ranking players by rating.
func (s *Notifier) formatRatingLeaderboard(players []club.PlayerInfo) slack.Message {
	blocks := make([]slack.Block, 0, len(players)+1)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard (by Rating) 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players found.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, player := range players {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> *Rating*: %.0f", rank, medal(rank), player.Name, player.Rating)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's stats.
func (s *Notifier) formatPlayerStats(stat *club.PlayerStats) slack.Message {
	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", stat.PlayerName)
	playerText := fmt.Sprintf("> *Rating*: %.0f\n> *Match Win %%*: %.2f%% (%d/%d)\n> *Current streak*: %d\n> *Longest win streak*: %d",
		stat.Rating,
		stat.WinPercentage,
		stat.Wins,
		stat.TotalMatches,
		stat.CurrentStreak,
		stat.LongestWinStreak,
	)
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil),
	)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string, suggestions []club.PlayerSuggestion) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	if len(suggestions) > 0 {
		names := make([]string, len(suggestions))
		for i, sg := range suggestions {
			names[i] = fmt.Sprintf("• %s (%.0f%%)", sg.Player.Name, sg.Confidence*100)
		}
		text = fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Did you mean:\n%s", query, strings.Join(names, "\n"))
	}
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
