// Package models defines core data structures for reference records, enriched
// documents, and match results.
package models

import "time"

// ReferenceRecord is one canonical company entry from the reference dataset,
// keyed by its internet domain. Records are created during bulk load and are
// immutable afterwards except for a full reload.
type ReferenceRecord struct {
	ID            string     `json:"id"`
	Domain        string     `json:"domain"`
	DomainPart    string     `json:"domain_part"` // local part of the domain ("acme" in "acme.com")
	Name          string     `json:"company_name"`
	Source        string     `json:"source"`
	EmployeeCount int        `json:"employee_count,omitempty"`
	Industry      string     `json:"industry,omitempty"`
	Country       string     `json:"country,omitempty"`
	SizeDesc      string     `json:"size_desc,omitempty"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
	LastVerified  *time.Time `json:"last_verified,omitempty"`
	AltNames      []string   `json:"alternative_names,omitempty"`
}

// EnrichedDocument is a ReferenceRecord plus derived search fields, as pushed
// to the search index. Every derived field is a pure function of its source
// fields, so re-deriving from the same record yields identical output across
// index rebuilds.
type EnrichedDocument struct {
	ReferenceRecord

	NameNormalized   string   `json:"name_normalized"`
	NamePhonetic     string   `json:"name_phonetic"`
	DomainPhonetic   string   `json:"domain_phonetic"`
	DomainNgrams     []string `json:"domain_ngrams"`
	AltNamePhonetics []string `json:"alt_name_phonetics,omitempty"`
	QualityScore     int      `json:"quality_score"`
	SourceRank       int      `json:"source_rank"`
}
