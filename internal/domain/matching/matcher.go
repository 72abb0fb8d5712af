package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/riskibarqy/overmind/internal/domain/naming"
	"github.com/riskibarqy/overmind/internal/domain/replay"
)

// MinConfidence is the lowest best-score accepted as a match.
const MinConfidence = 0.6

// Pair binds a replay participant to the canonical name it was matched with.
type Pair struct {
	Participant replay.Participant
	Canonical   string
}

type Result struct {
	Pairs      []Pair
	Swapped    bool
	Best       float64
	Confident  bool
	Degenerate bool
}

// Similarity is 1 - edit distance / longer length, over runes.
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func inReplayName(name string) string {
	return strings.ToLower(strings.TrimLeft(name, "?"))
}

// Match assigns two path candidates to two replay participants, straight or
// swapped. With no candidates every participant is paired with its own
// in-replay name; aliases are not applied.
func Match(candidates []naming.Candidate, participants []replay.Participant, resolve func(string) string) Result {
	if resolve == nil {
		resolve = inReplayName
	}

	if len(candidates) == 0 {
		pairs := make([]Pair, 0, len(participants))
		for _, participant := range participants {
			pairs = append(pairs, Pair{Participant: participant, Canonical: inReplayName(participant.Name)})
		}
		return Result{Pairs: pairs, Best: 1, Confident: len(pairs) > 0, Degenerate: true}
	}
	if len(candidates) != 2 || len(participants) != 2 {
		return Result{}
	}

	// ratios[i][j][k]: participant i, form j (0 raw, 1 resolved), candidate k.
	var ratios [2][2][2]float64
	for i, participant := range participants {
		forms := [2]string{participant.Name, resolve(participant.Name)}
		for k, candidate := range candidates {
			ratios[i][0][k] = Similarity(forms[0], candidate.Raw)
			ratios[i][1][k] = Similarity(forms[1], candidate.Canonical)
		}
	}

	best, bestI, bestK := -1.0, 0, 0
	allEqual := true
	first := ratios[0][0][0]
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				value := ratios[i][j][k]
				if value != first {
					allEqual = false
				}
				if value > best {
					best, bestI, bestK = value, i, k
				}
			}
		}
	}

	if best < MinConfidence || allEqual {
		return Result{Best: best}
	}

	swapped := bestI != bestK
	pairs := make([]Pair, 0, 2)
	for k, candidate := range candidates {
		target := k
		if swapped {
			target = 1 - k
		}
		pairs = append(pairs, Pair{Participant: participants[target], Canonical: candidate.Canonical})
	}

	return Result{Pairs: pairs, Swapped: swapped, Best: best, Confident: true}
}
