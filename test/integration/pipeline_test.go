// Package integration provides end-to-end tests (requires real storage and indices).
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/ingest"
	"github.com/predictiff/companymatch/internal/matcher"
	"github.com/predictiff/companymatch/internal/storage"
)

const extractCSV = `COMPANY_NAME,DOMAIN_NAME,SOURCE,EMPLOYEE_COUNT,INDUSTRY_CAT_STD,COUNTRY,SIZE_DESC_STD,LAST_SEEN_DATE,ALTERNATIVE_NAMES
Microsoft Corporation,microsoft.com,PDL,220000,Software,US,10000+,2024-01-15,MSFT
Acme Corp,acme.com,HGDATA,120,Manufacturing,US,51-200,,
`

func TestIntegration_LoadAndMatch(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath: filepath.Join(dir, "db.sqlite"),
			IndexPath:    filepath.Join(dir, "indices"),
		},
		Match: config.MatchConfig{
			IndexName:        "companies",
			BatchConcurrency: 4,
			MaxBatchSize:     100,
		},
		Dataset: config.DatasetConfig{ChunkSize: 1},
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	be, err := backend.NewBleveBackend(cfg.Storage.IndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer be.Close()

	loader := ingest.NewLoader(store, be, cfg.Match.IndexName, &cfg.Dataset)
	engine := matcher.NewEngine(be, &cfg.Match, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "extract.csv")
	if err := os.WriteFile(path, []byte(extractCSV), 0600); err != nil {
		t.Fatal(err)
	}
	n, err := loader.LoadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("loaded %d records, want 2", n)
	}

	results, err := engine.ResolveBatch(ctx, []string{"Microsoft Corporation", "Acme Corp", "Unknown Co"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].MatchFound || results[0].Domain != "microsoft.com" {
		t.Errorf("results[0] = %+v, want microsoft.com", results[0])
	}
	if !results[1].MatchFound || results[1].Domain != "acme.com" {
		t.Errorf("results[1] = %+v, want acme.com", results[1])
	}
	if results[2].MatchFound {
		t.Errorf("results[2] = %+v, want not-found", results[2])
	}

	// Database and index stay aligned through the chunked pipeline.
	count, err := store.CountRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	docs, err := be.Count(cfg.Match.IndexName)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || docs != 2 {
		t.Errorf("records = %d, indexed docs = %d, want 2 each", count, docs)
	}
}

func TestIntegration_FullReload(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath: filepath.Join(dir, "db.sqlite"),
			IndexPath:    filepath.Join(dir, "indices"),
		},
		Match: config.MatchConfig{IndexName: "companies", BatchConcurrency: 4, MaxBatchSize: 100},
		Dataset: config.DatasetConfig{
			ChunkSize: 100,
		},
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	be, err := backend.NewBleveBackend(cfg.Storage.IndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer be.Close()

	loader := ingest.NewLoader(store, be, cfg.Match.IndexName, &cfg.Dataset)
	ctx := context.Background()
	path := filepath.Join(dir, "extract.csv")
	if err := os.WriteFile(path, []byte(extractCSV), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := loader.LoadFile(ctx, path); err != nil {
		t.Fatal(err)
	}

	// Wipe both sides, then load again from scratch.
	if err := store.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := be.DeleteIndex(cfg.Match.IndexName); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadFile(ctx, path); err != nil {
		t.Fatal(err)
	}

	count, err := store.CountRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	docs, err := be.Count(cfg.Match.IndexName)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || docs != 2 {
		t.Errorf("after reload: records = %d, indexed docs = %d, want 2 each", count, docs)
	}

	rec, err := store.GetByDomain(ctx, "microsoft.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec) != 1 || rec[0].Name != "Microsoft Corporation" {
		t.Errorf("GetByDomain = %+v", rec)
	}
}
