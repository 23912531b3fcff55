// Package enrich turns raw reference records into indexable documents with
// derived search fields and data-quality signals.
package enrich

import (
	"strings"

	"github.com/predictiff/companymatch/internal/models"
)

// QualityScore computes a 0-45 data-quality score for a record from provenance
// and metadata completeness. Source priority terms are mutually exclusive
// (first match wins); the completeness terms are additive and independent.
func QualityScore(rec *models.ReferenceRecord) int {
	score := 0
	src := strings.ToUpper(rec.Source)
	switch {
	case strings.Contains(src, "PDL"):
		score += 20
	case strings.Contains(src, "BOMBORA"):
		score += 15
	case strings.Contains(src, "HGDATA"):
		score += 10
	}
	if rec.EmployeeCount > 0 {
		score += 10
	}
	if rec.Industry != "" {
		score += 5
	}
	if rec.Country != "" {
		score += 2
	}
	if rec.SizeDesc != "" {
		score += 3
	}
	if rec.LastSeen != nil || rec.LastVerified != nil {
		score += 5
	}
	return score
}

// SourceRank maps a source provenance tag to a 1-4 trust rank, lower is more
// trusted. Containment is checked on the uppercased tag in priority order.
func SourceRank(source string) int {
	src := strings.ToUpper(source)
	switch {
	case strings.Contains(src, "PDL"):
		return 1
	case strings.Contains(src, "BOMBORA"):
		return 2
	case strings.Contains(src, "HGDATA"):
		return 3
	}
	return 4
}
