// Package storage defines the persistence interface for reference records.
package storage

import (
	"context"

	"github.com/predictiff/companymatch/internal/models"
)

// Storage defines reference record persistence operations. The database is the
// durable copy of the dataset; the search index can always be rebuilt from it.
type Storage interface {
	CreateRecord(ctx context.Context, rec *models.ReferenceRecord) error
	GetRecord(ctx context.Context, id string) (*models.ReferenceRecord, error)
	GetByDomain(ctx context.Context, domain string) ([]*models.ReferenceRecord, error)
	ListRecords(ctx context.Context, offset, limit int) ([]*models.ReferenceRecord, error)
	DeleteRecord(ctx context.Context, id string) error

	// BatchCreateRecords upserts records in a single transaction. Re-loading
	// the same file replaces rather than duplicates.
	BatchCreateRecords(ctx context.Context, recs []*models.ReferenceRecord) error

	CountRecords(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error

	Close() error
}
