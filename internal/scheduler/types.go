package scheduler

// Match is one doubles game on a court within a round. Each team's ids are
// sorted ascending.
type Match struct {
	Court int       `json:"court" msgpack:"court"`
	Team1 [2]string `json:"team1" msgpack:"team1"`
	Team2 [2]string `json:"team2" msgpack:"team2"`
}

// Players returns the four participants, team1 first.
func (m Match) Players() [4]string {
	return [4]string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// Round is one synchronized wave of matches across all courts.
type Round struct {
	Number  int      `json:"round" msgpack:"round"`
	Matches []Match  `json:"matches" msgpack:"matches"`
	Benched []string `json:"benched" msgpack:"benched"`
}

// Plan is the outcome of a scheduling call along with search statistics.
type Plan struct {
	Rounds   []Round
	Cost     float64
	Attempts int
	Swaps    int
}
