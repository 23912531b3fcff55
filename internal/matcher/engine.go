package matcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/text"
	"go.uber.org/zap"
)

const defaultBatchConcurrency = 32

// Engine orchestrates tiered matching against the search backend. The backend
// handle and index name are passed in at construction; the engine holds no
// process-wide state and is safe for concurrent use.
type Engine struct {
	client backend.Client
	cfg    *config.MatchConfig
	logger *zap.Logger
}

// NewEngine creates a matching engine.
func NewEngine(client backend.Client, cfg *config.MatchConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, cfg: cfg, logger: logger}
}

// SearchCompany resolves one input name to its best-matching canonical domain.
// All applicable tiers are issued concurrently; the call waits for every tier
// to return (success or logged failure) before aggregating, and aggregation is
// deterministic regardless of completion order. A name that normalizes to
// empty resolves to not-found without querying.
func (e *Engine) SearchCompany(ctx context.Context, rawName string) *models.MatchResult {
	result := &models.MatchResult{InputName: rawName}

	clean := text.Normalize(rawName)
	if clean == "" {
		return result
	}
	code := text.Phonetic(clean)

	hitsByTier := make([][]backend.Hit, len(queryTiers))
	var wg sync.WaitGroup
	for i, tier := range queryTiers {
		query := clean
		if tier.UsePhonetic {
			if code == "" {
				continue
			}
			query = code
		}
		wg.Add(1)
		go func(i int, tier Tier, query string) {
			defer wg.Done()
			hitsByTier[i] = e.searchTier(ctx, tier, query)
		}(i, tier, query)
	}
	wg.Wait()

	candidates := aggregate(hitsByTier)
	if len(candidates) == 0 {
		return result
	}

	best := candidates[0]
	result.MatchFound = true
	result.Domain = best.Domain
	result.CompanyName = best.DisplayName
	result.Tier = best.Tier
	result.Confidence = best.Confidence
	result.CandidatesFound = len(candidates)
	return result
}

// searchTier runs one tier's query. A failed tier is logged and degrades to
// zero hits; it never aborts the other tiers or the overall call.
func (e *Engine) searchTier(ctx context.Context, tier Tier, query string) []backend.Hit {
	hits, err := e.client.Search(ctx, e.cfg.IndexName, query, &backend.SearchOptions{
		SearchFields: tier.Fields,
		ReturnFields: hitProjection,
		Limit:        tier.Limit,
		RequireAll:   tier.RequireAll,
	})
	if err != nil {
		e.logger.Warn("tier query failed",
			zap.Int("tier", tier.ID),
			zap.String("tier_name", tier.Name),
			zap.String("query", query),
			zap.Error(err))
		return nil
	}
	return hits
}

// ResolveBatch resolves every name concurrently with bounded fan-out and
// returns one result per input, in input order. An empty batch is rejected
// before any resolution work begins; a malformed name within a valid batch
// simply resolves to not-found. Tier failures for one name never block or
// corrupt another name's result.
func (e *Engine) ResolveBatch(ctx context.Context, names []string) ([]*models.MatchResult, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("empty batch: no company names provided")
	}
	if max := e.cfg.MaxBatchSize; max > 0 && len(names) > max {
		return nil, fmt.Errorf("batch of %d names exceeds maximum of %d", len(names), max)
	}

	concurrency := e.cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	sem := make(chan struct{}, concurrency)
	results := make([]*models.MatchResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.SearchCompany(ctx, name)
		}(i, name)
	}
	wg.Wait()
	return results, nil
}
