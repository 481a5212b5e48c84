package analysis

import (
	"fmt"

	"github.com/abhisek/starpath/internal/catalog"
	"github.com/abhisek/starpath/internal/progress"
)

// MaxRecommendations caps the list for low and medium strength.
const MaxRecommendations = 3

// Recommendation points the user at a node.
type Recommendation struct {
	NodeID string
	Name   string
	Status progress.Status
	Reason string
}

// Recommendations returns a deterministic list for one category. For low
// and medium strength it is the first open, unmastered leaves in display
// order. For high strength it is the locked leaf with the largest share
// of mastered requirements.
func Recommendations(cat *catalog.Catalog, category catalog.Category, strength Strength, states []progress.NodeState) []Recommendation {
	var leaves []progress.NodeState
	mastered := make(map[string]bool)
	for _, s := range states {
		if s.Status == progress.StatusMastered {
			mastered[s.Node.ID] = true
		}
		if s.Node.Category == category && s.Node.Kind == catalog.KindLeaf {
			leaves = append(leaves, s)
		}
	}

	if strength == StrengthHigh {
		if r, ok := nextLocked(cat, leaves, mastered); ok {
			return []Recommendation{r}
		}
		return nil
	}

	var out []Recommendation
	for _, s := range leaves {
		if s.Status == progress.StatusLocked || s.Status == progress.StatusMastered {
			continue
		}
		reason := "Ready to start"
		if s.Status == progress.StatusActive {
			reason = "In progress"
		}
		out = append(out, Recommendation{NodeID: s.Node.ID, Name: s.Node.Name.EN, Status: s.Status, Reason: reason})
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}

func nextLocked(cat *catalog.Catalog, leaves []progress.NodeState, mastered map[string]bool) (Recommendation, bool) {
	var (
		best    Recommendation
		bestNum = -1
		bestDen = 1
		found   bool
	)
	for _, s := range leaves {
		if s.Status != progress.StatusLocked {
			continue
		}
		reqs := cat.Requirements(s.Node.ID)
		done := 0
		for _, r := range reqs {
			if mastered[r.ID] {
				done++
			}
		}
		den := max(len(reqs), 1)
		// done/den > bestNum/bestDen; earlier display order wins ties.
		if done*bestDen > bestNum*den {
			best = Recommendation{
				NodeID: s.Node.ID,
				Name:   s.Node.Name.EN,
				Status: s.Status,
				Reason: fmt.Sprintf("%d of %d requirements mastered", done, len(reqs)),
			}
			bestNum, bestDen, found = done, den, true
		}
	}
	return best, found
}
