package database

import "math"

// mmrSelect applies maximal marginal relevance over a ranked candidate pool:
// MMR(c) = lambda*relevance(c) - (1-lambda)*maxSim(c, selected). Candidates
// must be sorted by score descending.
func mmrSelect(candidates []ScoredEntry, k int, lambda float64) []ScoredEntry {
	if len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	// Normalize relevance to [0, 1] so it is comparable with similarity.
	maxScore := candidates[0].Score
	if maxScore == 0 {
		maxScore = 1
	}

	selected := make([]ScoredEntry, 0, k)
	remaining := make([]ScoredEntry, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i, candidate := range remaining {
			relevance := candidate.Score / maxScore

			maxSim := 0.0
			for _, sel := range selected {
				sim := cosineSimilarity(candidate.Entry.Vector, sel.Entry.Vector)
				if sim > maxSim {
					maxSim = sim
				}
			}

			mmr := lambda*relevance - (1-lambda)*maxSim
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		if bestIdx == -1 {
			break
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
