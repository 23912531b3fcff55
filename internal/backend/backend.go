// Package backend defines the search backend contract the matching engine
// depends on, and provides a Bleve-backed implementation.
package backend

import (
	"context"

	"github.com/predictiff/companymatch/internal/models"
)

// Field names of the enriched document as stored in the search index.
const (
	FieldName             = "company_name"
	FieldNameNormalized   = "name_normalized"
	FieldDomain           = "domain"
	FieldDomainPart       = "domain_part"
	FieldNamePhonetic     = "name_phonetic"
	FieldDomainPhonetic   = "domain_phonetic"
	FieldDomainNgrams     = "domain_ngrams"
	FieldAltNames         = "alternative_names"
	FieldAltNamePhonetics = "alt_name_phonetics"
	FieldEmployeeCount    = "employee_count"
	FieldQualityScore     = "quality_score"
	FieldSourceRank       = "source_rank"
)

// SearchOptions parameterizes one query against the index.
type SearchOptions struct {
	// SearchFields restricts matching to these fields. Empty means all.
	SearchFields []string
	// ReturnFields restricts which stored fields are loaded per hit, to bound
	// payload size. Empty means all stored fields.
	ReturnFields []string
	// Limit caps the number of hits returned.
	Limit int
	// RequireAll requires every token of the query to match (strict mode).
	// The default is the backend's relaxed, typo-tolerant matching.
	RequireAll bool
}

// Hit is one search result row. Fields absent from the stored document carry
// their zero value; in particular a missing employee count is 0, which the
// ranker treats as "no size boost".
type Hit struct {
	ID            string
	Domain        string
	DisplayName   string
	EmployeeCount int
	QualityScore  int
	SourceRank    int
}

// Client is the minimal query contract the engine depends on. Implementations
// must be safe for concurrent use: one client is shared by every tier of every
// name in a batch.
type Client interface {
	Search(ctx context.Context, index, query string, opts *SearchOptions) ([]Hit, error)
	Close() error
}

// Writer is implemented by backends that also accept document writes; the
// ingestion pipeline depends on this side of the contract.
type Writer interface {
	IndexBatch(ctx context.Context, index string, docs []*models.EnrichedDocument) error
	Count(index string) (uint64, error)
	DeleteIndex(index string) error
}
