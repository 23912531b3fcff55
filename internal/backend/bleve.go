package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/predictiff/companymatch/internal/models"
)

const defaultSearchLimit = 10

// keywordFields are indexed with the keyword analyzer: the whole value is one
// token, so phonetic codes and n-gram array entries match only exactly.
var keywordFields = map[string]bool{
	FieldDomain:           true,
	FieldNamePhonetic:     true,
	FieldDomainPhonetic:   true,
	FieldDomainNgrams:     true,
	FieldAltNamePhonetics: true,
}

// BleveBackend implements Client and Writer over one or more Bleve indexes
// rooted at a directory, one subdirectory per index name. Bleve indexes are
// safe for concurrent queries, so a single backend is shared by all tiers of
// all names in a batch.
type BleveBackend struct {
	root    string
	mu      sync.Mutex
	indexes map[string]bleve.Index
}

// NewBleveBackend creates a backend rooted at dir. Indexes are opened, or
// created with the company document mapping, lazily on first use.
func NewBleveBackend(dir string) (*BleveBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index root: %w", err)
	}
	return &BleveBackend{root: dir, indexes: make(map[string]bleve.Index)}, nil
}

// buildMapping returns the document mapping for enriched company documents.
// Name fields use the standard analyzer (lowercase + tokenize, no stemming);
// derived code fields use the keyword analyzer; ranking signals are stored
// numerics. If the mapping changes in code, remove the index directory and
// reload the dataset to force a rebuild.
func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	for _, f := range []string{FieldName, FieldNameNormalized, FieldDomainPart, FieldAltNames} {
		doc.AddFieldMappingsAt(f, textField)
	}

	codeField := bleve.NewKeywordFieldMapping()
	for f := range keywordFields {
		doc.AddFieldMappingsAt(f, codeField)
	}

	numField := bleve.NewNumericFieldMapping()
	for _, f := range []string{FieldEmployeeCount, FieldQualityScore, FieldSourceRank} {
		doc.AddFieldMappingsAt(f, numField)
	}

	im.AddDocumentMapping("company", doc)
	im.DefaultType = "company"
	im.DefaultMapping = doc
	return im
}

// index returns the open Bleve index for name, opening or creating it under
// the backend root on first use.
func (b *BleveBackend) index(name string) (bleve.Index, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx, ok := b.indexes[name]; ok {
		return idx, nil
	}
	path := filepath.Join(b.root, name)
	var (
		idx bleve.Index
		err error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		idx, err = bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open index %q: %w", name, err)
		}
	} else {
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create index %q: %w", name, err)
		}
	}
	b.indexes[name] = idx
	return idx, nil
}

// Search runs one query against the named index. Each requested field gets a
// query suited to its analysis (term queries for keyword-analyzed code fields,
// match queries for text fields); fields are combined as a disjunction.
// Relaxed mode matches with one edit of typo tolerance; RequireAll switches to
// strict all-terms conjunction matching with no typo tolerance.
func (b *BleveBackend) Search(ctx context.Context, index, query string, opts *SearchOptions) ([]Hit, error) {
	idx, err := b.index(index)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &SearchOptions{}
	}

	var q blevequery.Query
	if len(opts.SearchFields) == 0 {
		q = buildTextQuery(query, "", opts.RequireAll)
	} else if len(opts.SearchFields) == 1 {
		q = buildFieldQuery(opts.SearchFields[0], query, opts.RequireAll)
	} else {
		perField := make([]blevequery.Query, 0, len(opts.SearchFields))
		for _, f := range opts.SearchFields {
			perField = append(perField, buildFieldQuery(f, query, opts.RequireAll))
		}
		q = bleve.NewDisjunctionQuery(perField...)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = opts.Limit
	if req.Size <= 0 {
		req.Size = defaultSearchLimit
	}
	if len(opts.ReturnFields) > 0 {
		req.Fields = opts.ReturnFields
	} else {
		req.Fields = []string{"*"}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search index %q: %w", index, err)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, hitFromFields(h.ID, h.Fields))
	}
	return hits, nil
}

// buildFieldQuery builds the query for one field.
func buildFieldQuery(field, query string, requireAll bool) blevequery.Query {
	if keywordFields[field] {
		return buildTermQuery(field, query, requireAll)
	}
	return buildTextQuery(query, field, requireAll)
}

// buildTextQuery builds a match query over an analyzed text field. field may
// be empty to search all fields.
func buildTextQuery(query, field string, requireAll bool) blevequery.Query {
	mq := bleve.NewMatchQuery(query)
	if field != "" {
		mq.SetField(field)
	}
	if requireAll {
		mq.SetOperator(blevequery.MatchQueryOperatorAnd)
	} else {
		// Relaxed mode mirrors a typo-tolerant engine's default matching.
		mq.SetFuzziness(1)
	}
	return mq
}

// buildTermQuery matches whitespace-separated tokens of the query exactly
// against a keyword-analyzed field. Code values (phonetic codes, n-gram
// entries) never contain spaces, so token-level term queries are sufficient.
func buildTermQuery(field, query string, requireAll bool) blevequery.Query {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		tokens = []string{query}
	}
	if len(tokens) == 1 {
		tq := bleve.NewTermQuery(tokens[0])
		tq.SetField(field)
		return tq
	}
	perToken := make([]blevequery.Query, 0, len(tokens))
	for _, tok := range tokens {
		tq := bleve.NewTermQuery(tok)
		tq.SetField(field)
		perToken = append(perToken, tq)
	}
	if requireAll {
		return bleve.NewConjunctionQuery(perToken...)
	}
	return bleve.NewDisjunctionQuery(perToken...)
}

// hitFromFields converts Bleve stored fields into a typed Hit. Missing fields
// keep their zero values; stored numerics come back as float64.
func hitFromFields(id string, fields map[string]interface{}) Hit {
	h := Hit{
		ID:            id,
		Domain:        fieldString(fields, FieldDomain),
		DisplayName:   fieldString(fields, FieldName),
		EmployeeCount: fieldInt(fields, FieldEmployeeCount),
		QualityScore:  fieldInt(fields, FieldQualityScore),
		SourceRank:    fieldInt(fields, FieldSourceRank),
	}
	if h.DisplayName == "" {
		h.DisplayName = fieldString(fields, FieldNameNormalized)
	}
	return h
}

func fieldString(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func fieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// docFields flattens an enriched document into the indexable field map. The
// map form keeps the index field names decoupled from Go struct naming.
func docFields(doc *models.EnrichedDocument) map[string]interface{} {
	fields := map[string]interface{}{
		FieldName:           doc.Name,
		FieldNameNormalized: doc.NameNormalized,
		FieldDomain:         doc.Domain,
		FieldDomainPart:     doc.DomainPart,
		FieldNamePhonetic:   doc.NamePhonetic,
		FieldDomainPhonetic: doc.DomainPhonetic,
		FieldDomainNgrams:   doc.DomainNgrams,
		FieldEmployeeCount:  doc.EmployeeCount,
		FieldQualityScore:   doc.QualityScore,
		FieldSourceRank:     doc.SourceRank,
	}
	if len(doc.AltNames) > 0 {
		fields[FieldAltNames] = doc.AltNames
	}
	if len(doc.AltNamePhonetics) > 0 {
		fields[FieldAltNamePhonetics] = doc.AltNamePhonetics
	}
	return fields
}

// IndexBatch writes a batch of enriched documents to the named index.
func (b *BleveBackend) IndexBatch(ctx context.Context, index string, docs []*models.EnrichedDocument) error {
	idx, err := b.index(index)
	if err != nil {
		return err
	}
	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, docFields(doc)); err != nil {
			return fmt.Errorf("batch index %q: %w", doc.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("apply batch to index %q: %w", index, err)
	}
	return nil
}

// Count returns the number of documents in the named index.
func (b *BleveBackend) Count(index string) (uint64, error) {
	idx, err := b.index(index)
	if err != nil {
		return 0, err
	}
	return idx.DocCount()
}

// DeleteIndex closes and removes the named index from disk; the next use
// recreates it empty. Used for full reload/replace of the reference dataset.
func (b *BleveBackend) DeleteIndex(index string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx, ok := b.indexes[index]; ok {
		if err := idx.Close(); err != nil {
			return fmt.Errorf("close index %q: %w", index, err)
		}
		delete(b.indexes, index)
	}
	return os.RemoveAll(filepath.Join(b.root, index))
}

// Close closes all open indexes.
func (b *BleveBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for name, idx := range b.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close index %q: %w", name, err)
		}
		delete(b.indexes, name)
	}
	return firstErr
}
