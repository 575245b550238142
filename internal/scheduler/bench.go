package scheduler

import "sort"

// benchTracker rotates who sits out. Players benched more often get priority
// to play, then those who played least recently, then ascending id.
type benchTracker struct {
	benchCount map[string]int
	lastPlayed map[string]int
}

func newBenchTracker() *benchTracker {
	return &benchTracker{
		benchCount: make(map[string]int),
		lastPlayed: make(map[string]int),
	}
}

// split returns the first slots players by play priority and the rest, both
// in ascending id order.
func (b *benchTracker) split(ids []string, slots int) (play, bench []string) {
	order := append([]string(nil), ids...)
	sort.SliceStable(order, func(i, j int) bool {
		x, y := order[i], order[j]
		if b.benchCount[x] != b.benchCount[y] {
			return b.benchCount[x] > b.benchCount[y]
		}
		if b.lastPlayed[x] != b.lastPlayed[y] {
			return b.lastPlayed[x] < b.lastPlayed[y]
		}
		return x < y
	})
	play = append([]string(nil), order[:slots]...)
	bench = append([]string{}, order[slots:]...)
	sort.Strings(play)
	sort.Strings(bench)
	return play, bench
}

func (b *benchTracker) advance(round int, play, bench []string) {
	for _, id := range bench {
		b.benchCount[id]++
	}
	for _, id := range play {
		b.lastPlayed[id] = round
	}
}
