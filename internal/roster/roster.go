package roster

import (
	"fmt"
	"sort"

	"github.com/mauv0809/padel-rotation/internal/pairs"
	"github.com/samber/lo"
)

// MinPlayers is the smallest roster that can fill one doubles court.
const MinPlayers = 4

// Normalize filters attendees down to the eligible roster: active players
// that are not paused for the session, ordered by ascending id. The order is
// the base for every later tie-break, so callers must not reorder it.
func Normalize(attendees []Attendee) ([]Player, error) {
	eligible := lo.FilterMap(attendees, func(a Attendee, _ int) (Player, bool) {
		return a.Player, a.Player.Active && !a.Paused
	})
	eligible = lo.UniqBy(eligible, func(p Player) string { return p.ID })

	sort.Slice(eligible, func(i, j int) bool { return eligible[i].ID < eligible[j].ID })

	if len(eligible) < MinPlayers {
		return nil, fmt.Errorf("%w: %d eligible, need %d", ErrInsufficientPlayers, len(eligible), MinPlayers)
	}
	return eligible, nil
}

// FilterHistory keeps the records whose two players are both on the roster.
// The dropped records are returned so the caller can report them.
func FilterHistory(eligible []Player, records []pairs.Record) (kept, dropped []pairs.Record) {
	ids := make(map[string]struct{}, len(eligible))
	for _, p := range eligible {
		ids[p.ID] = struct{}{}
	}
	for _, r := range records {
		_, okA := ids[r.Key.A]
		_, okB := ids[r.Key.B]
		if okA && okB {
			kept = append(kept, r)
		} else {
			dropped = append(dropped, r)
		}
	}
	return kept, dropped
}

// IDs returns the ids of the given players in order.
func IDs(players []Player) []string {
	return lo.Map(players, func(p Player, _ int) string { return p.ID })
}
