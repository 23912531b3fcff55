package enrich

import (
	"strings"

	"github.com/google/uuid"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/text"
)

// Enricher derives the search representation of reference records. All derived
// fields are pure functions of the record, so enrichment is deterministic and
// safe to re-run on a full reload.
type Enricher struct{}

// NewEnricher creates an Enricher.
func NewEnricher() *Enricher {
	return &Enricher{}
}

// Enrich transforms one raw record into an indexable document. A missing ID is
// filled with the canonical domain when present (so re-loading the same file
// updates in place) and a random UUID otherwise; a missing domain-local part
// is derived from the domain.
func (e *Enricher) Enrich(rec *models.ReferenceRecord) *models.EnrichedDocument {
	r := *rec
	if r.DomainPart == "" {
		r.DomainPart = DomainPart(r.Domain)
	}
	if r.ID == "" {
		if r.Domain != "" {
			r.ID = r.Domain
		} else {
			r.ID = uuid.New().String()
		}
	}

	var altPhonetics []string
	if len(r.AltNames) > 0 {
		altPhonetics = make([]string, 0, len(r.AltNames))
		for _, alt := range r.AltNames {
			if code := text.Phonetic(alt); code != "" {
				altPhonetics = append(altPhonetics, code)
			}
		}
	}

	return &models.EnrichedDocument{
		ReferenceRecord:  r,
		NameNormalized:   text.Normalize(r.Name),
		NamePhonetic:     text.Phonetic(r.Name),
		DomainPhonetic:   text.Phonetic(r.DomainPart),
		DomainNgrams:     text.Ngrams(r.DomainPart),
		AltNamePhonetics: altPhonetics,
		QualityScore:     QualityScore(&r),
		SourceRank:       SourceRank(r.Source),
	}
}

// DomainPart returns the local part of a domain: everything before the first
// dot, or the whole string when there is no dot.
func DomainPart(domain string) string {
	if i := strings.IndexByte(domain, '.'); i >= 0 {
		return domain[:i]
	}
	return domain
}
