// Package ingest loads reference datasets from CSV and Excel files into
// storage and the search index.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/enrich"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/storage"
)

const defaultChunkSize = 5000

// Loader runs the ingestion pipeline: parse, enrich, persist, index. Records
// flow through in chunks so arbitrarily large extracts load in bounded memory.
type Loader struct {
	storage   storage.Storage
	writer    backend.Writer
	enricher  *enrich.Enricher
	index     string
	chunkSize int
	exts      []string
	logger    *zap.Logger // optional; when set, logs per-file progress
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for progress output (file loaded, chunk indexed, etc.).
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a loader writing to the given index.
func NewLoader(store storage.Storage, writer backend.Writer, index string, cfg *config.DatasetConfig, opts ...LoaderOption) *Loader {
	ld := &Loader{
		storage:   store,
		writer:    writer,
		enricher:  enrich.NewEnricher(),
		index:     index,
		chunkSize: cfg.ChunkSize,
		exts:      cfg.Extensions,
	}
	if ld.chunkSize <= 0 {
		ld.chunkSize = defaultChunkSize
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadFile parses one dataset file and loads its records. The format follows
// the file extension. Returns the number of records loaded.
func (ld *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(ld.exts) > 0 && !extensionAllowed(ext, ld.exts) {
		return 0, fmt.Errorf("extension %q not in allowed list", ext)
	}

	var recs []*models.ReferenceRecord
	switch ext {
	case ".csv":
		f, err := os.Open(absPath)
		if err != nil {
			return 0, fmt.Errorf("open dataset: %w", err)
		}
		recs, err = parseCSV(f)
		_ = f.Close()
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", absPath, err)
		}
	case ".xlsx":
		recs, err = parseXLSX(absPath)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", absPath, err)
		}
	default:
		return 0, fmt.Errorf("unsupported dataset format %q", ext)
	}

	n, err := ld.LoadRecords(ctx, recs)
	if err != nil {
		return n, err
	}
	if ld.logger != nil {
		ld.logger.Info("dataset file loaded",
			zap.String("path", absPath),
			zap.Int("records", n))
	}
	return n, nil
}

// LoadRecords enriches and loads parsed records in chunks. Each chunk is
// persisted before it is indexed, so the database never trails the index.
func (ld *Loader) LoadRecords(ctx context.Context, recs []*models.ReferenceRecord) (int, error) {
	loaded := 0
	for start := 0; start < len(recs); start += ld.chunkSize {
		end := start + ld.chunkSize
		if end > len(recs) {
			end = len(recs)
		}
		chunk := recs[start:end]

		docs := make([]*models.EnrichedDocument, len(chunk))
		for i, rec := range chunk {
			docs[i] = ld.enricher.Enrich(rec)
			// Enrichment fills in missing IDs and domain parts; write the
			// completed record back so storage and index agree.
			*chunk[i] = docs[i].ReferenceRecord
		}
		if err := ld.storage.BatchCreateRecords(ctx, chunk); err != nil {
			return loaded, fmt.Errorf("persist chunk: %w", err)
		}
		if err := ld.writer.IndexBatch(ctx, ld.index, docs); err != nil {
			return loaded, fmt.Errorf("index chunk: %w", err)
		}
		loaded += len(chunk)
		if ld.logger != nil {
			ld.logger.Debug("chunk indexed",
				zap.String("index", ld.index),
				zap.Int("records", len(chunk)),
				zap.Int("total", loaded))
		}
	}
	return loaded, nil
}

// LoadDirectory walks dir recursively and loads every dataset file whose
// extension is allowed. Returns the total number of records loaded and the
// first error encountered.
func (ld *Loader) LoadDirectory(ctx context.Context, dir string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}

	total := 0
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(ld.exts) > 0 && !extensionAllowed(ext, ld.exts) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		n, loadErr := ld.LoadFile(ctx, path)
		total += n
		return loadErr
	})
	return total, err
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
