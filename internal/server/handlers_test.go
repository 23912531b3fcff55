package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/predictiff/companymatch/internal/backend"
	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/ingest"
	"github.com/predictiff/companymatch/internal/matcher"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/storage"
)

const testCSV = `COMPANY_NAME,DOMAIN_NAME,SOURCE,EMPLOYEE_COUNT
Microsoft Corporation,microsoft.com,PDL,220000
Acme Corporation,acme.com,HGDATA,
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "db.sqlite")
	cfg.Storage.IndexPath = filepath.Join(dir, "indices")

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	be, err := backend.NewBleveBackend(cfg.Storage.IndexPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = be.Close() })

	loader := ingest.NewLoader(store, be, cfg.Match.IndexName, &cfg.Dataset)
	engine := matcher.NewEngine(be, &cfg.Match, nil)
	return NewServer(engine, loader, store, be, cfg, zap.NewNop())
}

func loadTestData(t *testing.T, srv *Server) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "companies.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := srv.loader.LoadFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestHandleMatch(t *testing.T) {
	srv := newTestServer(t)
	loadTestData(t, srv)
	router := srv.Router()

	w := postJSON(t, router, "/api/v1/match", &models.MatchRequest{
		Companies: []string{"Microsoft Corporation", "No Such Company Anywhere"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Processed != 2 {
		t.Errorf("Processed = %d, want 2", resp.Processed)
	}
	if resp.Matches != 1 {
		t.Errorf("Matches = %d, want 1", resp.Matches)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("Results = %d, want 2", len(resp.Results))
	}
	first := resp.Results[0]
	if first.InputName != "Microsoft Corporation" {
		t.Errorf("results out of request order: %q first", first.InputName)
	}
	if !first.MatchFound || first.Domain != "microsoft.com" {
		t.Errorf("first result = %+v", first)
	}
	if resp.Results[1].MatchFound {
		t.Errorf("second result should be not-found: %+v", resp.Results[1])
	}
}

func TestHandleMatch_EmptyBatch(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	w := postJSON(t, router, "/api/v1/match", &models.MatchRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleMatch_InvalidBody(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/match", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)
	loadTestData(t, srv)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out struct {
		Records     int64 `json:"records"`
		IndexedDocs int64 `json:"indexed_docs"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Records != 2 || out.IndexedDocs != 2 {
		t.Errorf("records = %d, indexed = %d, want 2 each", out.Records, out.IndexedDocs)
	}
}

func TestHandleGetCompanies(t *testing.T) {
	srv := newTestServer(t)
	loadTestData(t, srv)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/companies/acme.com", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out struct {
		Domain  string                    `json:"domain"`
		Records []*models.ReferenceRecord `json:"records"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Records) != 1 || out.Records[0].Name != "Acme Corporation" {
		t.Errorf("records = %+v", out.Records)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/companies/unknown.example", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown domain = %d, want 404", w.Code)
	}
}

func TestHandleLoadDataset(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	path := filepath.Join(t.TempDir(), "companies.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0600); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/api/v1/datasets", &loadDatasetRequest{Path: path})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var out struct {
		Records int `json:"records"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Records != 2 {
		t.Errorf("records = %d, want 2", out.Records)
	}

	w = postJSON(t, router, "/api/v1/datasets", &loadDatasetRequest{Path: filepath.Join(t.TempDir(), "missing.csv")})
	if w.Code != http.StatusNotFound {
		t.Errorf("status for missing file = %d, want 404", w.Code)
	}
}

func TestHandleDatasetDirectories_NotEnabled(t *testing.T) {
	srv := newTestServer(t)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/directories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
}
