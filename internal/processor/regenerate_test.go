package processor

import (
	"fmt"
	"testing"

	"github.com/mauv0809/padel-rotation/internal/club"
	"github.com/mauv0809/padel-rotation/internal/database"
	"github.com/mauv0809/padel-rotation/internal/metrics"
	"github.com/mauv0809/padel-rotation/internal/notifier"
	"github.com/mauv0809/padel-rotation/internal/pubsub"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
	"github.com/mauv0809/padel-rotation/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// When one court of a round has a result and a pause regenerates the
// schedule, the other courts of that round lose their unplayed matches and
// the new plan starts with the next round.
func TestSetPaused_DiscardsUnplayedMatchesOfPartlyPlayedRound(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	clubStore := club.New(db)
	sessions := session.NewStore(db)
	p := New(clubStore, sessions, scheduler.New(), rating.New(), notifier.NewMock(), metrics.NewMock(), pubsub.NewMock("TEST"))

	sess, err := sessions.CreateSession("Thursday", 2, 3)
	require.NoError(t, err)
	for i := 1; i <= 8; i++ {
		id := fmt.Sprintf("p%02d", i)
		clubStore.AddPlayer(id, "Player "+id, rating.DefaultRating)
		require.NoError(t, sessions.AddAttendee(sess.ID, id))
	}

	schedule, err := p.GenerateSchedule(sess.ID, false)
	require.NoError(t, err)
	require.Len(t, schedule.Rounds, 3)
	require.Len(t, schedule.Rounds[0].Matches, 2)
	played := schedule.Rounds[0].Matches[0]
	unplayed := schedule.Rounds[0].Matches[1]

	_, err = p.RecordResult(played.ID, 6, 4, false)
	require.NoError(t, err)

	paused := unplayed.Team1[0]
	schedule, err = p.SetPaused(sess.ID, paused, true, false)
	require.NoError(t, err)

	require.Len(t, schedule.Rounds, 3)
	first := schedule.Rounds[0]
	require.Len(t, first.Matches, 1, "only the played court of round 1 remains")
	assert.Equal(t, played.ID, first.Matches[0].ID)
	assert.True(t, first.Matches[0].Resolved())

	_, err = sessions.GetMatch(unplayed.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	for _, r := range schedule.Rounds[1:] {
		assert.Equal(t, 2, r.Matches[0].Generation)
		for _, m := range r.Matches {
			assert.NotContains(t, []string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}, paused)
		}
	}
	assert.Equal(t, 2, schedule.Rounds[1].Number)
	assert.Equal(t, 3, schedule.Rounds[2].Number)
}
