package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
	"github.com/mauv0809/padel-rotation/internal/session"
	"github.com/mauv0809/padel-rotation/internal/stats"
	"github.com/samber/lo"
)

// New creates a new Processor.
func New(
	clubStore club.ClubStore,
	sessionStore session.SessionStore,
	sched *scheduler.Scheduler,
	engine *rating.Engine,
	notifier Notifier,
	metrics metrics.Metrics,
	pubsub pubsub.PubSubClient,
) *Processor {
	return &Processor{
		club:      clubStore,
		sessions:  sessionStore,
		scheduler: sched,
		rating:    engine,
		notifier:  notifier,
		metrics:   metrics,
		pubsub:    pubsub,
		now:       time.Now,
	}
}

// GenerateSchedule plans every round of the session that has not produced a
// result yet and replaces the unplayed part of the stored schedule with it.
// With dryRun the new schedule is returned without being stored or published.
func (p *Processor) GenerateSchedule(sessionID string, dryRun bool) (*session.Schedule, error) {
	return p.generate(sessionID, dryRun, nil)
}

// SetPaused changes a player's paused flag for the session and regenerates the
// remaining rounds so the change takes effect immediately.
func (p *Processor) SetPaused(sessionID, playerID string, paused, dryRun bool) (*session.Schedule, error) {
	log.Info("Setting paused flag", "sessionID", sessionID, "playerID", playerID, "paused", paused, "dryRun", dryRun)

	sess, err := p.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	var adjust func([]roster.Attendee)
	if dryRun {
		adjust = func(attendees []roster.Attendee) {
			for i := range attendees {
				if attendees[i].ID == playerID {
					attendees[i].Paused = paused
				}
			}
		}
	} else if err := p.sessions.SetPaused(sessionID, playerID, paused); err != nil {
		return nil, err
	}

	if sess.Generation == 0 {
		log.Info("No schedule generated yet, nothing to regenerate", "sessionID", sessionID)
		return p.sessions.GetSchedule(sessionID)
	}
	offset, err := p.sessions.LastResolvedRound(sessionID)
	if err != nil {
		return nil, err
	}
	if offset >= sess.Rounds {
		log.Info("All rounds played, nothing to regenerate", "sessionID", sessionID)
		return p.sessions.GetSchedule(sessionID)
	}
	return p.generate(sessionID, dryRun, adjust)
}

// generate plans and stores the remaining rounds. A result recorded between
// reading the offset and replacing the schedule makes the store reject the
// plan, in which case it is rebuilt from the new offset.
func (p *Processor) generate(sessionID string, dryRun bool, adjust func([]roster.Attendee)) (*session.Schedule, error) {
	at := p.now().UTC()
	for attempt := 1; ; attempt++ {
		schedule, err := p.generateOnce(sessionID, dryRun, adjust, at)
		if errors.Is(err, session.ErrConcurrentUpdate) && attempt < maxCommitAttempts {
			log.Warn("Results recorded while regenerating, retrying", "sessionID", sessionID, "attempt", attempt)
			continue
		}
		return schedule, err
	}
}

func (p *Processor) generateOnce(sessionID string, dryRun bool, adjust func([]roster.Attendee), at time.Time) (*session.Schedule, error) {
	start := time.Now()
	log.Info("Generating schedule", "sessionID", sessionID, "dryRun", dryRun)

	sess, err := p.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	attendees, err := p.sessions.GetAttendees(sessionID)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(attendees)
	}
	eligible, err := roster.Normalize(attendees)
	if err != nil {
		log.Warn("Cannot generate schedule", "sessionID", sessionID, "attendees", len(attendees), "error", err)
		return nil, err
	}

	offset, err := p.sessions.LastResolvedRound(sessionID)
	if err != nil {
		return nil, err
	}
	remaining := sess.Rounds - offset
	if remaining < 1 {
		return nil, fmt.Errorf("%w: all %d rounds of session %s have results", scheduler.ErrInvalidConfiguration, sess.Rounds, sessionID)
	}

	partnerships, oppositions, err := p.history(sessionID, eligible)
	if err != nil {
		return nil, err
	}

	plan, err := p.scheduler.PlanAt(at, eligible, sess.Courts, remaining, partnerships, oppositions)
	if err != nil {
		return nil, err
	}
	p.metrics.AddLocalSearchSwaps(plan.Swaps)
	log.Debug("Planned rounds", "sessionID", sessionID, "rounds", len(plan.Rounds), "cost", plan.Cost, "attempts", plan.Attempts, "swaps", plan.Swaps)

	if dryRun {
		current, err := p.sessions.GetSchedule(sessionID)
		if err != nil {
			return nil, err
		}
		log.Info("[Dry Run] Would replace schedule", "sessionID", sessionID, "fromRound", offset+1, "rounds", len(plan.Rounds))
		return preview(current, sess.Generation+1, offset, plan.Rounds), nil
	}

	generation, err := p.sessions.ReplaceSchedule(sessionID, offset, plan.Rounds)
	if err != nil {
		log.Error("Failed to replace schedule", "sessionID", sessionID, "offset", offset, "error", err)
		return nil, err
	}
	schedule, err := p.sessions.GetSchedule(sessionID)
	if err != nil {
		return nil, err
	}

	p.metrics.IncSchedulesGenerated()
	p.metrics.ObserveScheduleDuration(time.Since(start).Seconds())
	log.Info("Generated schedule", "sessionID", sessionID, "generation", generation, "fromRound", offset+1, "rounds", len(plan.Rounds), "players", len(eligible))

	event := pubsub.ScheduleGenerated{
		SessionID:  sessionID,
		Generation: generation,
		FromRound:  offset + 1,
		Rounds:     lo.Filter(schedule.Rounds, func(r session.Round, _ int) bool { return r.Number > offset }),
		Names:      lo.SliceToMap(eligible, func(pl roster.Player) (string, string) { return pl.ID, pl.Name }),
	}
	if err := p.pubsub.SendMessage(pubsub.EventScheduleGenerated, event); err != nil {
		log.Error("Failed to publish schedule", "sessionID", sessionID, "error", err)
	}
	return schedule, nil
}

// history loads the pair history and drops records naming players outside
// the roster.
func (p *Processor) history(sessionID string, eligible []roster.Player) (partnerships, oppositions []pairs.Record, err error) {
	allPartnerships, err := p.club.GetPartnerships()
	if err != nil {
		return nil, nil, err
	}
	allOppositions, err := p.club.GetOppositions()
	if err != nil {
		return nil, nil, err
	}

	partnerships, droppedPartnerships := roster.FilterHistory(eligible, allPartnerships)
	oppositions, droppedOppositions := roster.FilterHistory(eligible, allOppositions)

	dropped := append(droppedPartnerships, droppedOppositions...)
	for _, r := range dropped {
		log.Debug("Ignoring pair history", "sessionID", sessionID, "playerA", r.Key.A, "playerB", r.Key.B, "error", roster.ErrUnknownPlayerReference)
	}
	if len(dropped) > 0 {
		log.Warn("Ignored pair history for players outside the roster", "sessionID", sessionID, "records", len(dropped))
		p.metrics.AddUnknownReferences(len(dropped))
	}
	return partnerships, oppositions, nil
}

// preview lays a planned generation over the current schedule the same way
// ReplaceSchedule would: rounds up to offset keep their resolved matches and
// bench, everything after it is replaced.
func preview(current *session.Schedule, generation, offset int, planned []scheduler.Round) *session.Schedule {
	out := &session.Schedule{Session: current.Session, Rounds: []session.Round{}}
	out.Session.Generation = generation

	for _, r := range current.Rounds {
		if r.Number > offset {
			continue
		}
		kept := lo.Filter(r.Matches, func(m session.Match, _ int) bool { return m.Resolved() })
		out.Rounds = append(out.Rounds, session.Round{Number: r.Number, Matches: kept, Benched: r.Benched})
	}

	for _, r := range planned {
		number := offset + r.Number
		matches := lo.Map(r.Matches, func(m scheduler.Match, _ int) session.Match {
			return session.Match{
				SessionID:  current.Session.ID,
				Generation: generation,
				Round:      number,
				Court:      m.Court,
				Team1:      m.Team1,
				Team2:      m.Team2,
			}
		})
		out.Rounds = append(out.Rounds, session.Round{Number: number, Matches: matches, Benched: r.Benched})
	}
	return out
}

// RecordResult applies a finished match to ratings, statistics and pair
// history. Ties, negative scores and matches that already have a result are
// rejected before anything is written.
func (p *Processor) RecordResult(matchID string, team1Score, team2Score int, dryRun bool) (*ResultSummary, error) {
	log.Info("Recording result", "matchID", matchID, "team1Score", team1Score, "team2Score", team2Score, "dryRun", dryRun)

	for attempt := 1; ; attempt++ {
		summary, commit, names, err := p.prepareResult(matchID, team1Score, team2Score)
		if err != nil {
			if errors.Is(err, rating.ErrInvalidResult) {
				p.metrics.IncResultsRejected()
				log.Warn("Rejected result", "matchID", matchID, "error", err)
			}
			return nil, err
		}

		if dryRun {
			log.Info("[Dry Run] Would record result", "matchID", matchID, "winningTeam", commit.WinningTeam, "delta", summary.Outcome.Delta)
			summary.DryRun = true
			return summary, nil
		}

		err = p.sessions.CommitResult(commit)
		if errors.Is(err, session.ErrConcurrentUpdate) && attempt < maxCommitAttempts {
			log.Warn("Ratings changed while recording result, retrying", "matchID", matchID, "attempt", attempt)
			continue
		}
		if err != nil {
			if errors.Is(err, rating.ErrInvalidResult) {
				p.metrics.IncResultsRejected()
			}
			log.Error("Failed to commit result", "matchID", matchID, "error", err)
			return nil, err
		}

		p.metrics.IncResultsRecorded()
		log.Info("Recorded result", "matchID", matchID, "winningTeam", commit.WinningTeam, "delta", summary.Outcome.Delta)

		event := pubsub.ResultRecorded{
			SessionID:   summary.Match.SessionID,
			Match:       summary.Match,
			Ratings:     summary.Ratings,
			WinningTeam: commit.WinningTeam,
			Names:       names,
		}
		if err := p.pubsub.SendMessage(pubsub.EventResultRecorded, event); err != nil {
			log.Error("Failed to publish result", "matchID", matchID, "error", err)
		}
		return summary, nil
	}
}

func (p *Processor) prepareResult(matchID string, team1Score, team2Score int) (*ResultSummary, session.ResultCommit, map[string]string, error) {
	var commit session.ResultCommit

	match, err := p.sessions.GetMatch(matchID)
	if err != nil {
		return nil, commit, nil, err
	}
	if match.Resolved() {
		return nil, commit, nil, fmt.Errorf("%w: match %s", session.ErrMatchResolved, matchID)
	}

	ids := []string{match.Team1[0], match.Team1[1], match.Team2[0], match.Team2[1]}
	players, err := p.club.GetPlayers(ids)
	if err != nil {
		return nil, commit, nil, err
	}
	byID := lo.SliceToMap(players, func(pl club.PlayerInfo) (string, club.PlayerInfo) { return pl.ID, pl })
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, commit, nil, fmt.Errorf("%w: player %s in match %s", club.ErrNotFound, id, matchID)
		}
	}

	team1 := [2]float64{byID[ids[0]].Rating, byID[ids[1]].Rating}
	team2 := [2]float64{byID[ids[2]].Rating, byID[ids[3]].Rating}
	outcome, err := p.rating.RecordResult(team1, team2, team1Score, team2Score)
	if err != nil {
		return nil, commit, nil, err
	}

	current, err := p.club.GetStatistics(ids)
	if err != nil {
		return nil, commit, nil, err
	}
	teammates := pairs.Teammates(match.Team1, match.Team2)
	opponents := pairs.Opponents(match.Team1, match.Team2)
	partnerships, oppositions, err := p.club.GetPairRecords(append(teammates[:], opponents[:]...))
	if err != nil {
		return nil, commit, nil, err
	}

	at := p.now().UTC()
	update, err := stats.Aggregate(stats.Input{
		Team1:        match.Team1,
		Team2:        match.Team2,
		WinningTeam:  outcome.WinningTeam,
		At:           at,
		Players:      current,
		Partnerships: partnerships,
		Oppositions:  oppositions,
	})
	if err != nil {
		return nil, commit, nil, err
	}

	after := [4]float64{outcome.Team1[0], outcome.Team1[1], outcome.Team2[0], outcome.Team2[1]}
	before := [4]float64{team1[0], team1[1], team2[0], team2[1]}
	deltas := outcome.Deltas()
	var ratings [4]session.RatingUpdate
	for i, id := range ids {
		ratings[i] = session.RatingUpdate{PlayerID: id, Before: before[i], After: after[i], Delta: deltas[i]}
	}

	commit = session.ResultCommit{
		MatchID:      matchID,
		Team1Score:   team1Score,
		Team2Score:   team2Score,
		WinningTeam:  outcome.WinningTeam,
		At:           at,
		Ratings:      ratings,
		Statistics:   update.Players,
		Partnerships: update.Partnerships,
		Oppositions:  update.Oppositions,
	}

	resolved := *match
	resolved.Result = &session.Result{Team1Score: team1Score, Team2Score: team2Score, WinningTeam: outcome.WinningTeam, ResolvedAt: at}
	summary := &ResultSummary{
		Match:      resolved,
		Outcome:    outcome,
		Ratings:    ratings,
		Statistics: update.Players,
	}
	names := lo.MapValues(byID, func(pl club.PlayerInfo, _ string) string { return pl.Name })
	return summary, commit, names, nil
}

// NotifySchedule sends the Slack notification for a published schedule.
func (p *Processor) NotifySchedule(event pubsub.ScheduleGenerated, dryRun bool) error {
	log.Info("Sending schedule notification", "sessionID", event.SessionID, "generation", event.Generation)
	if err := p.notifier.SendScheduleNotification(event, dryRun); err != nil {
		return fmt.Errorf("failed to send schedule notification: %w", err)
	}
	return nil
}

// NotifyResult sends the Slack notification for a recorded result.
func (p *Processor) NotifyResult(event pubsub.ResultRecorded, dryRun bool) error {
	log.Info("Sending result notification", "matchID", event.Match.ID)
	if err := p.notifier.SendResultNotification(event, dryRun); err != nil {
		return fmt.Errorf("failed to send result notification: %w", err)
	}
	return nil
}
