package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/predictiff/companymatch/internal/config"
	"github.com/predictiff/companymatch/internal/models"
	"github.com/predictiff/companymatch/internal/storage"
)

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("match request", zap.Int("companies", len(req.Companies)))

	start := time.Now()
	results, err := s.engine.ResolveBatch(r.Context(), req.Companies)
	if err != nil {
		s.logger.Error("match failed", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches := 0
	for _, res := range results {
		if res.MatchFound {
			matches++
		}
	}
	s.respondJSON(w, http.StatusOK, &models.MatchResponse{
		Results:   results,
		Processed: len(results),
		Matches:   matches,
		QueryTime: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleGetCompanies(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	recs, err := s.storage.GetByDomain(r.Context(), domain)
	if err != nil {
		s.logger.Error("company lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(recs) == 0 {
		s.respondError(w, http.StatusNotFound, "no records for domain")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"domain":  domain,
		"records": recs,
	})
}

type loadDatasetRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	var req loadDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "dataset not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("load dataset request", zap.String("path", abs))

	var n int
	if info.IsDir() {
		n, err = s.loader.LoadDirectory(r.Context(), abs)
	} else {
		n, err = s.loader.LoadFile(r.Context(), abs)
	}
	if err != nil {
		s.logger.Error("dataset load failed", zap.String("path", abs), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"path":    abs,
		"records": n,
		"status":  "loaded",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	recordCount, err := s.storage.CountRecords(r.Context())
	if err != nil {
		s.logger.Error("status: count records failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	indexedCount, err := s.writer.Count(s.config.Match.IndexName)
	if err != nil {
		s.logger.Error("status: count indexed failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"records":      recordCount,
		"indexed_docs": indexedCount,
	}
	if diskBytes, err := storage.DiskUsageBytes(
		s.config.Storage.DatabasePath,
		s.config.Storage.IndexPath,
	); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]interface{}{
		"index_name":        s.config.Match.IndexName,
		"batch_concurrency": s.config.Match.BatchConcurrency,
		"max_batch_size":    s.config.Match.MaxBatchSize,
		"database_path":     s.config.Storage.DatabasePath,
		"index_path":        s.config.Storage.IndexPath,
	}
	if s.watch != nil {
		resp["watched_directories"] = s.watch.Directories()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDatasetDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "dataset watching not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"directories": s.watch.Directories(),
	})
}

type directoryAddRequest struct {
	Path string `json:"path"`
	Load *bool  `json:"load,omitempty"`
}

func (s *Server) handleDatasetDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "dataset watching not enabled")
		return
	}
	var req directoryAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	loadExisting := true
	if req.Load != nil {
		loadExisting = *req.Load
	}
	s.logger.Debug("dataset directory add request",
		zap.String("path", abs), zap.Bool("load_existing", loadExisting))
	if err := s.watch.AddDirectory(abs, loadExisting); err != nil {
		s.logger.Error("dataset directory add failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.configPath != "" {
		s.configMu.Lock()
		s.config.Dataset.Directories = s.watch.Directories()
		err := config.Save(s.configPath, s.config)
		s.configMu.Unlock()
		if err != nil {
			s.logger.Warn("failed to persist dataset config", zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
