package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/enrich"
	"github.com/predictiff/companymatch/internal/matcher"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/text"
)

func BenchmarkNormalize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = text.Normalize("  Héal Withîn® Global Services, Inc.  ")
	}
}

func BenchmarkPhonetic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = text.Phonetic("International Business Machines")
	}
}

func BenchmarkNgrams(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = text.Ngrams("internationalbusiness")
	}
}

func BenchmarkEnrich(b *testing.B) {
	e := enrich.NewEnricher()
	rec := &models.ReferenceRecord{
		Domain:        "microsoft.com",
		Name:          "Microsoft Corporation",
		Source:        "PDL",
		EmployeeCount: 220000,
		Industry:      "Software",
		Country:       "US",
		AltNames:      []string{"MSFT", "Micro Soft"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Enrich(rec)
	}
}

func BenchmarkSearchCompany(b *testing.B) {
	dir := b.TempDir()
	be, err := backend.NewBleveBackend(dir)
	if err != nil {
		b.Fatal(err)
	}
	defer be.Close()

	e := enrich.NewEnricher()
	docs := make([]*models.EnrichedDocument, 0, 500)
	for i := 0; i < 500; i++ {
		docs = append(docs, e.Enrich(&models.ReferenceRecord{
			Domain:        fmt.Sprintf("company%03d.com", i),
			Name:          fmt.Sprintf("Company %03d Holdings", i),
			Source:        "PDL",
			EmployeeCount: i * 10,
		}))
	}
	ctx := context.Background()
	if err := be.IndexBatch(ctx, "companies", docs); err != nil {
		b.Fatal(err)
	}

	cfg := &config.MatchConfig{IndexName: "companies", BatchConcurrency: 8, MaxBatchSize: 1000}
	engine := matcher.NewEngine(be, cfg, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.SearchCompany(ctx, "Company 250 Holdings")
	}
}
