package matcher

import (
	"sort"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/models"
)

// aggregate merges per-tier hit lists into a ranked candidate list.
// hitsByTier is indexed like queryTiers, so the walk follows tier priority
// order regardless of which tier's query completed first. The first tier to
// mention a domain wins: later hits for an already-seen domain are dropped
// even when they would have scored higher. Kept for compatibility with
// historical match behavior; changing it changes which match wins on
// ambiguous inputs.
func aggregate(hitsByTier [][]backend.Hit) []*models.MatchCandidate {
	seen := make(map[string]struct{})
	var candidates []*models.MatchCandidate
	for i, tier := range queryTiers {
		for _, hit := range hitsByTier[i] {
			if hit.Domain == "" {
				continue
			}
			if _, ok := seen[hit.Domain]; ok {
				continue
			}
			seen[hit.Domain] = struct{}{}
			candidates = append(candidates, &models.MatchCandidate{
				Domain:        hit.Domain,
				DisplayName:   hit.DisplayName,
				Tier:          tier.Name,
				Confidence:    confidence(tier.Base, hit.QualityScore, hit.EmployeeCount),
				QualityScore:  hit.QualityScore,
				EmployeeCount: hit.EmployeeCount,
			})
		}
	}
	// Stable: ties keep tier priority order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// confidence combines a tier base score with a data-quality boost and an
// employee-size boost, clamped to 100. A missing employee count is zero and
// earns no boost.
func confidence(base, quality, employees int) int {
	score := base + quality/2
	switch {
	case employees > 10000:
		score += 10
	case employees > 1000:
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}
