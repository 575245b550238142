package club

import (
	"sort"
	"strings"
	"unicode"
)

// PlayerSuggestion is a candidate player for a free-text name, with a
// confidence score in [0,1].
type PlayerSuggestion struct {
	Player     PlayerInfo
	Confidence float64
	Reasons    []string
}

// PlayerMapper resolves names typed into Slack commands to known players.
type PlayerMapper struct {
	store ClubStore
}

// NewPlayerMapper creates a new player mapper
func NewPlayerMapper(store ClubStore) *PlayerMapper {
	return &PlayerMapper{store: store}
}

// Suggest returns up to limit players whose names resemble query, best first.
func (pm *PlayerMapper) Suggest(query string, limit int) ([]PlayerSuggestion, error) {
	players, err := pm.store.GetAllPlayers()
	if err != nil {
		return nil, err
	}
	suggestions := pm.findSimilarPlayers(query, players)
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (pm *PlayerMapper) findSimilarPlayers(query string, players []PlayerInfo) []PlayerSuggestion {
	var suggestions []PlayerSuggestion
	q := normalizeName(query)
	if q == "" {
		return nil
	}

	for _, player := range players {
		name := normalizeName(player.Name)
		scores := []float64{stringSimilarity(q, name), tokenSimilarity(q, name)}
		score := (scores[0] + scores[1]) / 2
		if score <= 0.3 {
			continue
		}
		suggestions = append(suggestions, PlayerSuggestion{
			Player:     player,
			Confidence: score,
			Reasons:    matchReasons(q, name),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].Player.ID < suggestions[j].Player.ID
	})
	return suggestions
}

// normalizeName lowercases and strips everything but letters and single spaces.
func normalizeName(name string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}
	r1, r2 := []rune(s1), []rune(s2)
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(max(len(r1), len(r2)))
}

// tokenSimilarity is the share of tokens in the longer name that have a close
// counterpart in the other one.
func tokenSimilarity(s1, s2 string) float64 {
	tokens1 := strings.Fields(s1)
	tokens2 := strings.Fields(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	var matchCount int
	for _, t1 := range tokens1 {
		for _, t2 := range tokens2 {
			if stringSimilarity(t1, t2) > 0.8 {
				matchCount++
				break
			}
		}
	}
	return float64(matchCount) / float64(max(len(tokens1), len(tokens2)))
}

func levenshteinDistance(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}

func matchReasons(query, name string) []string {
	var reasons []string
	switch {
	case query == name:
		reasons = append(reasons, "Exact name match")
	case stringSimilarity(query, name) > 0.8:
		reasons = append(reasons, "Very similar name")
	}
	if tokenSimilarity(query, name) > 0.5 {
		reasons = append(reasons, "Matching name components")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Partial name similarity")
	}
	return reasons
}
