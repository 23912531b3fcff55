// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/predictiff/companymatch/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		domain_part TEXT,
		name TEXT NOT NULL,
		source TEXT,
		employee_count INTEGER DEFAULT 0,
		industry TEXT,
		country TEXT,
		size_desc TEXT,
		last_seen TIMESTAMP,
		last_verified TIMESTAMP,
		alt_names TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_companies_domain ON companies(domain);
	CREATE INDEX IF NOT EXISTS idx_companies_source ON companies(source);
	`
	_, err := db.Exec(schema)
	return err
}

const recordColumns = `id, domain, domain_part, name, source, employee_count,
	industry, country, size_desc, last_seen, last_verified, alt_names`

const upsertRecord = `INSERT INTO companies
	(id, domain, domain_part, name, source, employee_count,
	 industry, country, size_desc, last_seen, last_verified, alt_names, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 domain = excluded.domain,
	 domain_part = excluded.domain_part,
	 name = excluded.name,
	 source = excluded.source,
	 employee_count = excluded.employee_count,
	 industry = excluded.industry,
	 country = excluded.country,
	 size_desc = excluded.size_desc,
	 last_seen = excluded.last_seen,
	 last_verified = excluded.last_verified,
	 alt_names = excluded.alt_names`

func recordArgs(rec *models.ReferenceRecord, now time.Time) ([]interface{}, error) {
	var altJSON string
	if len(rec.AltNames) > 0 {
		b, err := json.Marshal(rec.AltNames)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal alternative names: %w", err)
		}
		altJSON = string(b)
	}
	return []interface{}{
		rec.ID, rec.Domain, rec.DomainPart, rec.Name, rec.Source, rec.EmployeeCount,
		rec.Industry, rec.Country, rec.SizeDesc, rec.LastSeen, rec.LastVerified,
		altJSON, now,
	}, nil
}

func scanRecord(scan func(dest ...interface{}) error) (*models.ReferenceRecord, error) {
	var rec models.ReferenceRecord
	var altJSON sql.NullString
	var lastSeen, lastVerified sql.NullTime
	err := scan(&rec.ID, &rec.Domain, &rec.DomainPart, &rec.Name, &rec.Source,
		&rec.EmployeeCount, &rec.Industry, &rec.Country, &rec.SizeDesc,
		&lastSeen, &lastVerified, &altJSON)
	if err != nil {
		return nil, err
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		rec.LastSeen = &t
	}
	if lastVerified.Valid {
		t := lastVerified.Time
		rec.LastVerified = &t
	}
	if altJSON.Valid && altJSON.String != "" {
		if err := json.Unmarshal([]byte(altJSON.String), &rec.AltNames); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alternative names: %w", err)
		}
	}
	return &rec, nil
}

// CreateRecord upserts a single record.
func (s *SQLiteStorage) CreateRecord(ctx context.Context, rec *models.ReferenceRecord) error {
	args, err := recordArgs(rec, time.Now())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertRecord, args...)
	return err
}

// GetRecord returns a record by ID.
func (s *SQLiteStorage) GetRecord(ctx context.Context, id string) (*models.ReferenceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM companies WHERE id = ?`, id)
	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByDomain returns all records carrying the given domain.
func (s *SQLiteStorage) GetByDomain(ctx context.Context, domain string) ([]*models.ReferenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM companies WHERE domain = ? ORDER BY id`, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListRecords returns records with offset and limit.
func (s *SQLiteStorage) ListRecords(ctx context.Context, offset, limit int) ([]*models.ReferenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM companies ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]*models.ReferenceRecord, error) {
	var recs []*models.ReferenceRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeleteRecord removes a record by ID.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	return err
}

// BatchCreateRecords upserts multiple records in a transaction.
func (s *SQLiteStorage) BatchCreateRecords(ctx context.Context, recs []*models.ReferenceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRecord)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		args, err := recordArgs(rec, now)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountRecords returns the total number of records.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count)
	return count, err
}

// DeleteAll removes every record. Used before a full reload.
func (s *SQLiteStorage) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM companies`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
