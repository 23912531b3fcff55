// Package matcher resolves noisy company-name strings to canonical domains by
// fanning out independently-parameterized queries against the search backend
// and merging the per-tier hits into one ranked decision.
package matcher

import "github.com/predictiff/companymatch/internal/backend"

// Tier is one independently-configured matching strategy competing to find a
// candidate domain.
type Tier struct {
	ID     int
	Name   string
	Fields []string
	Limit  int
	// Base is the confidence base score awarded to candidates from this tier.
	Base int
	// RequireAll makes the backend match every token of the query.
	RequireAll bool
	// UsePhonetic queries with the input's phonetic code instead of its
	// normalized text. The tier is skipped when the code is empty.
	UsePhonetic bool
}

// queryTiers lists every tier in priority order. Aggregation walks this order,
// so when two tiers return the same domain, the earlier tier's hit wins.
var queryTiers = []Tier{
	{
		ID:         1,
		Name:       "exact",
		Fields:     []string{backend.FieldNameNormalized, backend.FieldName},
		Limit:      1,
		Base:       95,
		RequireAll: true,
	},
	{
		ID:     2,
		Name:   "domain_exact",
		Fields: []string{backend.FieldDomainPart},
		Limit:  1,
		Base:   90,
	},
	{
		ID:     7,
		Name:   "alt_name",
		Fields: []string{backend.FieldAltNames},
		Limit:  1,
		Base:   88,
	},
	{
		ID:     3,
		Name:   "typo",
		Fields: []string{backend.FieldNameNormalized},
		Limit:  3,
		Base:   80,
	},
	{
		ID:          4,
		Name:        "phonetic",
		Fields:      []string{backend.FieldNamePhonetic, backend.FieldDomainPhonetic},
		Limit:       3,
		Base:        75,
		UsePhonetic: true,
	},
	{
		ID:     5,
		Name:   "ngram",
		Fields: []string{backend.FieldDomainNgrams},
		Limit:  5,
		Base:   70,
	},
}

// hitProjection is the reduced set of stored fields every tier requests, to
// bound payload size.
var hitProjection = []string{
	backend.FieldName,
	backend.FieldNameNormalized,
	backend.FieldDomain,
	backend.FieldEmployeeCount,
	backend.FieldQualityScore,
	backend.FieldSourceRank,
}
