package processor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/notifier"
	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/roster"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
	"github.com/mauv0809/padel-rotation/internal/session"
	"github.com/mauv0809/padel-rotation/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	club     *club.MockStore
	sessions *session.MockStore
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	p        *Processor

	pairKeys []pairs.Key
}

func newFixture() *fixture {
	f := &fixture{
		club:     club.NewMock(),
		sessions: session.NewMock(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock("TEST"),
	}
	f.p = New(f.club, f.sessions, scheduler.New(), rating.New(), f.notifier, f.metrics, f.pubsub)
	return f
}

func attendees(n int) []roster.Attendee {
	out := make([]roster.Attendee, n)
	for i := range out {
		id := fmt.Sprintf("p%02d", i+1)
		out[i] = roster.Attendee{Player: roster.Player{ID: id, Name: "Player " + id, Rating: 1500, Active: true}}
	}
	return out
}

func playedRound() session.Round {
	return session.Round{
		Number: 1,
		Matches: []session.Match{
			{ID: "m1", SessionID: "s1", Round: 1, Court: 1, Team1: [2]string{"p01", "p02"}, Team2: [2]string{"p03", "p04"},
				Result: &session.Result{Team1Score: 6, Team2Score: 3, WinningTeam: 1}},
			{ID: "m2", SessionID: "s1", Round: 1, Court: 2, Team1: [2]string{"p05", "p06"}, Team2: [2]string{"p07", "p08"}},
		},
		Benched: []string{},
	}
}

// setupSession wires a three-round, two-court session whose first round has a result.
func (f *fixture) setupSession(generation int, people []roster.Attendee) {
	sess := &session.Session{ID: "s1", Name: "Tuesday", Courts: 2, Rounds: 3, Generation: generation}
	f.sessions.GetSessionFunc = func(id string) (*session.Session, error) {
		if id != "s1" {
			return nil, session.ErrNotFound
		}
		s := *sess
		return &s, nil
	}
	f.sessions.GetAttendeesFunc = func(string) ([]roster.Attendee, error) {
		return append([]roster.Attendee(nil), people...), nil
	}
	f.sessions.SetPausedFunc = func(sessionID, playerID string, paused bool) error {
		for i := range people {
			if people[i].ID == playerID {
				people[i].Paused = paused
			}
		}
		return nil
	}
	f.sessions.LastResolvedRoundFunc = func(string) (int, error) { return 1, nil }
	f.sessions.GetScheduleFunc = func(string) (*session.Schedule, error) {
		rounds := []session.Round{playedRound()}
		for _, call := range f.sessions.ReplaceScheduleCalls {
			for _, r := range call.Rounds {
				sr := session.Round{Number: call.Offset + r.Number, Benched: r.Benched}
				for _, m := range r.Matches {
					sr.Matches = append(sr.Matches, session.Match{Round: sr.Number, Court: m.Court, Team1: m.Team1, Team2: m.Team2})
				}
				rounds = append(rounds, sr)
			}
		}
		return &session.Schedule{Session: *sess, Rounds: rounds}, nil
	}
	f.club.GetPartnershipsFunc = func() ([]pairs.Record, error) {
		return []pairs.Record{
			{Key: pairs.NewKey("p01", "p02"), Count: 3},
			{Key: pairs.NewKey("ghost", "p01"), Count: 1},
		}, nil
	}
	f.club.GetOppositionsFunc = func() ([]pairs.Record, error) { return nil, nil }
}

func scheduledPlayers(rounds []scheduler.Round) map[string]bool {
	seen := map[string]bool{}
	for _, r := range rounds {
		for _, m := range r.Matches {
			for _, id := range m.Players() {
				seen[id] = true
			}
		}
	}
	return seen
}

func TestGenerateSchedule(t *testing.T) {
	t.Run("replaces the unplayed rounds and publishes them", func(t *testing.T) {
		f := newFixture()
		people := attendees(9)
		people[8].Paused = true
		f.setupSession(1, people)

		schedule, err := f.p.GenerateSchedule("s1", false)
		require.NoError(t, err)

		require.Len(t, f.sessions.ReplaceScheduleCalls, 1)
		call := f.sessions.ReplaceScheduleCalls[0]
		assert.Equal(t, 1, call.Offset)
		require.Len(t, call.Rounds, 2)
		assert.False(t, scheduledPlayers(call.Rounds)["p09"], "paused player must not be scheduled")

		require.Len(t, schedule.Rounds, 3)
		assert.Equal(t, 1, f.metrics.SchedulesGenerated())
		assert.Equal(t, 1, f.metrics.UnknownReferences())

		require.Len(t, f.pubsub.SendMessageCalls, 1)
		assert.Equal(t, pubsub.EventScheduleGenerated, f.pubsub.SendMessageCalls[0].Topic)
		event, ok := f.pubsub.SendMessageCalls[0].Data.(pubsub.ScheduleGenerated)
		require.True(t, ok)
		assert.Equal(t, 2, event.FromRound)
		require.Len(t, event.Rounds, 2)
		assert.Equal(t, 2, event.Rounds[0].Number)
		assert.Equal(t, "Player p01", event.Names["p01"])
	})

	t.Run("dry run previews without storing", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(8))

		schedule, err := f.p.GenerateSchedule("s1", true)
		require.NoError(t, err)

		assert.Empty(t, f.sessions.ReplaceScheduleCalls)
		assert.Empty(t, f.pubsub.SendMessageCalls)
		assert.Equal(t, 2, schedule.Session.Generation)
		require.Len(t, schedule.Rounds, 3)

		// Only the resolved match of round 1 survives.
		require.Len(t, schedule.Rounds[0].Matches, 1)
		assert.Equal(t, "m1", schedule.Rounds[0].Matches[0].ID)
		assert.Equal(t, 2, schedule.Rounds[1].Number)
		assert.Equal(t, 3, schedule.Rounds[2].Number)
		assert.Len(t, schedule.Rounds[2].Matches, 2)
	})

	t.Run("too few eligible players", func(t *testing.T) {
		f := newFixture()
		people := attendees(5)
		people[0].Active = false
		people[1].Paused = true
		f.setupSession(1, people)

		_, err := f.p.GenerateSchedule("s1", false)
		assert.ErrorIs(t, err, roster.ErrInsufficientPlayers)
		assert.Empty(t, f.sessions.ReplaceScheduleCalls)
		assert.Equal(t, 0, f.metrics.SchedulesGenerated())
	})

	t.Run("no rounds left", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(8))
		f.sessions.LastResolvedRoundFunc = func(string) (int, error) { return 3, nil }

		_, err := f.p.GenerateSchedule("s1", false)
		assert.ErrorIs(t, err, scheduler.ErrInvalidConfiguration)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(8))

		_, err := f.p.GenerateSchedule("nope", false)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("replans when a result lands before the replacement", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(8))
		reads := 0
		f.sessions.LastResolvedRoundFunc = func(string) (int, error) {
			reads++
			return min(reads, 2), nil
		}
		f.sessions.ReplaceScheduleFunc = func(_ string, offset int, _ []scheduler.Round) (int, error) {
			if offset != 2 {
				return 0, session.ErrConcurrentUpdate
			}
			return 2, nil
		}

		_, err := f.p.GenerateSchedule("s1", false)
		require.NoError(t, err)

		require.Len(t, f.sessions.ReplaceScheduleCalls, 2)
		assert.Equal(t, 1, f.sessions.ReplaceScheduleCalls[0].Offset)
		assert.Len(t, f.sessions.ReplaceScheduleCalls[0].Rounds, 2)
		assert.Equal(t, 2, f.sessions.ReplaceScheduleCalls[1].Offset)
		assert.Len(t, f.sessions.ReplaceScheduleCalls[1].Rounds, 1)
		assert.Equal(t, 1, f.metrics.SchedulesGenerated())
		require.Len(t, f.pubsub.SendMessageCalls, 1)
	})

	t.Run("gives up after repeated races", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(8))
		f.sessions.ReplaceScheduleFunc = func(string, int, []scheduler.Round) (int, error) {
			return 0, session.ErrConcurrentUpdate
		}

		_, err := f.p.GenerateSchedule("s1", false)
		require.ErrorIs(t, err, session.ErrConcurrentUpdate)
		assert.Len(t, f.sessions.ReplaceScheduleCalls, maxCommitAttempts)
		assert.Equal(t, 0, f.metrics.SchedulesGenerated())
		assert.Empty(t, f.pubsub.SendMessageCalls)
	})

	t.Run("ages pair history against the processor clock", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(10))
		f.p.now = func() time.Time { return fixedNow }
		recent := fixedNow.Add(-2 * time.Hour)
		older := fixedNow.Add(-40 * 24 * time.Hour)
		f.club.GetPartnershipsFunc = func() ([]pairs.Record, error) {
			return []pairs.Record{
				{Key: pairs.NewKey("p01", "p02"), Count: 2, Last: &recent},
				{Key: pairs.NewKey("p03", "p04"), Count: 2, Last: &older},
			}, nil
		}
		f.club.GetOppositionsFunc = func() ([]pairs.Record, error) {
			return []pairs.Record{{Key: pairs.NewKey("p05", "p06"), Count: 1, Last: &recent}}, nil
		}

		_, err := f.p.GenerateSchedule("s1", false)
		require.NoError(t, err)
		_, err = f.p.GenerateSchedule("s1", false)
		require.NoError(t, err)

		require.Len(t, f.sessions.ReplaceScheduleCalls, 2)
		assert.Equal(t, f.sessions.ReplaceScheduleCalls[0].Rounds, f.sessions.ReplaceScheduleCalls[1].Rounds)
	})

	t.Run("publish failure does not fail generation", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(8))
		f.pubsub.SendMessageFunc = func(pubsub.EventType, any) error { return errors.New("broker down") }

		_, err := f.p.GenerateSchedule("s1", false)
		require.NoError(t, err)
		assert.Len(t, f.sessions.ReplaceScheduleCalls, 1)
	})
}

func TestSetPaused(t *testing.T) {
	t.Run("persists the flag and regenerates", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(9))

		_, err := f.p.SetPaused("s1", "p03", true, false)
		require.NoError(t, err)

		require.Len(t, f.sessions.SetPausedCalls, 1)
		assert.Equal(t, session.SetPausedCall{SessionID: "s1", PlayerID: "p03", Paused: true}, f.sessions.SetPausedCalls[0])
		require.Len(t, f.sessions.ReplaceScheduleCalls, 1)
		assert.False(t, scheduledPlayers(f.sessions.ReplaceScheduleCalls[0].Rounds)["p03"])
	})

	t.Run("pausing below the minimum keeps the flag and reports the error", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(4))

		_, err := f.p.SetPaused("s1", "p03", true, false)
		require.ErrorIs(t, err, roster.ErrInsufficientPlayers)
		assert.Len(t, f.sessions.SetPausedCalls, 1)
		assert.Empty(t, f.sessions.ReplaceScheduleCalls)
	})

	t.Run("dry run preview excludes the paused player", func(t *testing.T) {
		f := newFixture()
		f.setupSession(1, attendees(9))

		schedule, err := f.p.SetPaused("s1", "p03", true, true)
		require.NoError(t, err)
		assert.Empty(t, f.sessions.SetPausedCalls)
		assert.Empty(t, f.sessions.ReplaceScheduleCalls)
		for _, r := range schedule.Rounds[1:] {
			for _, m := range r.Matches {
				assert.NotContains(t, []string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}, "p03")
			}
		}
	})

	t.Run("no regeneration before the first schedule", func(t *testing.T) {
		f := newFixture()
		f.setupSession(0, attendees(8))

		_, err := f.p.SetPaused("s1", "p03", true, false)
		require.NoError(t, err)
		assert.Len(t, f.sessions.SetPausedCalls, 1)
		assert.Empty(t, f.sessions.ReplaceScheduleCalls)
	})
}

var fixedNow = time.Date(2026, 6, 2, 20, 30, 0, 0, time.UTC)

func (f *fixture) setupMatch(resolved bool) {
	f.p.now = func() time.Time { return fixedNow }
	match := &session.Match{ID: "m1", SessionID: "s1", Round: 2, Court: 1, Team1: [2]string{"a", "b"}, Team2: [2]string{"c", "d"}}
	if resolved {
		match.Result = &session.Result{Team1Score: 6, Team2Score: 4, WinningTeam: 1}
	}
	f.sessions.GetMatchFunc = func(id string) (*session.Match, error) {
		if id != "m1" {
			return nil, session.ErrNotFound
		}
		m := *match
		return &m, nil
	}
	f.club.GetPlayersFunc = func(ids []string) ([]club.PlayerInfo, error) {
		return []club.PlayerInfo{
			{ID: "a", Name: "Ann", Rating: 1500},
			{ID: "b", Name: "Bo", Rating: 1500},
			{ID: "c", Name: "Cy", Rating: 1500},
			{ID: "d", Name: "Di", Rating: 1500},
		}, nil
	}
	f.club.GetStatisticsFunc = func(ids []string) (map[string]stats.PlayerStatistics, error) {
		return map[string]stats.PlayerStatistics{
			"a": {PlayerID: "a", TotalMatches: 2, Wins: 2, CurrentStreak: 2, LongestWinStreak: 2, WinRate: 1},
		}, nil
	}
	f.club.GetPairRecordsFunc = func(keys []pairs.Key) (pairs.History, pairs.History, error) {
		f.pairKeys = keys
		return pairs.NewHistory([]pairs.Record{{Key: pairs.NewKey("a", "b"), Count: 1}}), nil, nil
	}
}

func TestRecordResult(t *testing.T) {
	t.Run("commits ratings, statistics and pair history", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)

		summary, err := f.p.RecordResult("m1", 6, 3, false)
		require.NoError(t, err)

		require.Len(t, f.sessions.CommitResultCalls, 1)
		commit := f.sessions.CommitResultCalls[0]
		assert.Equal(t, "m1", commit.MatchID)
		assert.Equal(t, 1, commit.WinningTeam)
		assert.Equal(t, fixedNow, commit.At)
		assert.Equal(t, session.RatingUpdate{PlayerID: "a", Before: 1500, After: 1516, Delta: 16}, commit.Ratings[0])
		assert.Equal(t, session.RatingUpdate{PlayerID: "d", Before: 1500, After: 1484, Delta: -16}, commit.Ratings[3])
		var sum float64
		for _, r := range commit.Ratings {
			sum += r.Delta
		}
		assert.Equal(t, 0.0, sum)

		assert.Len(t, f.pairKeys, 6)
		assert.Equal(t, 3, commit.Statistics[0].TotalMatches)
		assert.Equal(t, 3, commit.Statistics[0].CurrentStreak)
		assert.Equal(t, -1, commit.Statistics[2].CurrentStreak)
		assert.Equal(t, 2, commit.Partnerships[0].Count)
		assert.Equal(t, 1, commit.Partnerships[1].Count)
		for _, o := range commit.Oppositions {
			assert.Equal(t, 1, o.Count)
			require.NotNil(t, o.Last)
			assert.Equal(t, fixedNow, *o.Last)
		}

		require.NotNil(t, summary.Match.Result)
		assert.Equal(t, 6, summary.Match.Result.Team1Score)
		assert.InDelta(t, 16.0, summary.Outcome.Delta, 1e-9)
		assert.False(t, summary.DryRun)

		assert.Equal(t, 1, f.metrics.ResultsRecorded())
		require.Len(t, f.pubsub.SendMessageCalls, 1)
		event, ok := f.pubsub.SendMessageCalls[0].Data.(pubsub.ResultRecorded)
		require.True(t, ok)
		assert.Equal(t, pubsub.EventResultRecorded, f.pubsub.SendMessageCalls[0].Topic)
		assert.Equal(t, "s1", event.SessionID)
		assert.Equal(t, "Cy", event.Names["c"])
	})

	t.Run("tie is rejected before any write", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)

		_, err := f.p.RecordResult("m1", 5, 5, false)
		assert.ErrorIs(t, err, rating.ErrInvalidResult)
		assert.Empty(t, f.sessions.CommitResultCalls)
		assert.Equal(t, 1, f.metrics.ResultsRejected())
		assert.Empty(t, f.pubsub.SendMessageCalls)
	})

	t.Run("resolved match is rejected", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(true)

		_, err := f.p.RecordResult("m1", 6, 2, false)
		assert.ErrorIs(t, err, session.ErrMatchResolved)
		assert.ErrorIs(t, err, rating.ErrInvalidResult)
		assert.Empty(t, f.sessions.CommitResultCalls)
		assert.Equal(t, 1, f.metrics.ResultsRejected())
	})

	t.Run("retries after a concurrent rating update", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)
		calls := 0
		f.sessions.CommitResultFunc = func(session.ResultCommit) error {
			calls++
			if calls == 1 {
				return session.ErrConcurrentUpdate
			}
			return nil
		}

		_, err := f.p.RecordResult("m1", 2, 6, false)
		require.NoError(t, err)
		assert.Len(t, f.sessions.CommitResultCalls, 2)
		assert.Equal(t, 2, f.sessions.CommitResultCalls[1].WinningTeam)
		assert.Equal(t, 1, f.metrics.ResultsRecorded())
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)
		f.sessions.CommitResultFunc = func(session.ResultCommit) error { return session.ErrConcurrentUpdate }

		_, err := f.p.RecordResult("m1", 6, 1, false)
		assert.ErrorIs(t, err, session.ErrConcurrentUpdate)
		assert.Len(t, f.sessions.CommitResultCalls, maxCommitAttempts)
		assert.Equal(t, 0, f.metrics.ResultsRecorded())
	})

	t.Run("dry run computes without committing", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)

		summary, err := f.p.RecordResult("m1", 6, 3, true)
		require.NoError(t, err)
		assert.True(t, summary.DryRun)
		assert.Equal(t, 1516.0, summary.Ratings[1].After)
		assert.Empty(t, f.sessions.CommitResultCalls)
		assert.Empty(t, f.pubsub.SendMessageCalls)
	})

	t.Run("unknown match", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)

		_, err := f.p.RecordResult("missing", 6, 3, false)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("participant missing from the club", func(t *testing.T) {
		f := newFixture()
		f.setupMatch(false)
		f.club.GetPlayersFunc = func([]string) ([]club.PlayerInfo, error) {
			return []club.PlayerInfo{{ID: "a", Rating: 1500}}, nil
		}

		_, err := f.p.RecordResult("m1", 6, 3, false)
		assert.ErrorIs(t, err, club.ErrNotFound)
	})
}

func TestNotify(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.p.NotifySchedule(pubsub.ScheduleGenerated{SessionID: "s1"}, true))
	require.Len(t, f.notifier.SendScheduleNotificationCalls, 1)

	f.notifier.SendResultNotificationFunc = func(pubsub.ResultRecorded, bool) error { return errors.New("slack down") }
	err := f.p.NotifyResult(pubsub.ResultRecorded{SessionID: "s1"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send result notification")
	assert.Len(t, f.notifier.SendResultNotificationCalls, 1)
}
