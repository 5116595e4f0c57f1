package ranking

import (
	"math"
	"sort"

	"github.com/poku-e/tubtakes/internal/tier"
)

// Score is a flavor's community standing.
type Score struct {
	Flavor string  `json:"flavor"`
	Score  float64 `json:"score"`
	// Weight is the sum of the submitters' flavor counts.
	Weight int `json:"weight"`
	Voters int `json:"voters"`
	// Tier is the tier whose score Score rounds to.
	Tier tier.Tier `json:"tier"`
}

type tally struct {
	points int
	weight int
	voters int
}

// Scores returns every ranked flavor, best first. A vote's weight is the
// number of flavors its submitter ranked; the weighted mean is damped until
// the total weight reaches FullWeight.
func (b *Board) Scores() []Score {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return score(b.subs, b.FullWeight)
}

func score(subs map[string]Submission, fullWeight int) []Score {
	tallies := map[string]*tally{}
	for _, s := range subs {
		for _, t := range tier.Order {
			for _, name := range s.Tiers[t] {
				tl, ok := tallies[name]
				if !ok {
					tl = &tally{}
					tallies[name] = tl
				}
				tl.points += t.Score() * s.Count
				tl.weight += s.Count
				tl.voters++
			}
		}
	}

	out := make([]Score, 0, len(tallies))
	for name, tl := range tallies {
		sc := Score{Flavor: name, Weight: tl.weight, Voters: tl.voters}
		if tl.weight > 0 {
			mean := float64(tl.points) / float64(tl.weight)
			sc.Score = mean * float64(min(tl.weight, fullWeight)) / float64(fullWeight)
		}
		sc.Tier = tierFor(sc.Score)
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Flavor < out[j].Flavor
	})
	return out
}

// tierFor maps a score back onto the tier scale, F for anything below 1.5.
func tierFor(score float64) tier.Tier {
	r := int(math.Round(score))
	for _, t := range tier.Order {
		if t.Score() == r {
			return t
		}
	}
	if r > tier.S.Score() {
		return tier.S
	}
	return tier.F
}

// Assignment groups scores into a tier list, keeping score order within tiers.
func Assignment(scores []Score) tier.Assignment {
	a := tier.NewAssignment()
	for _, s := range scores {
		a.Add(s.Tier, s.Flavor)
	}
	return a
}
