package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
	"taxoscreen/domain/screen"
	"taxoscreen/internal/report"
	"taxoscreen/internal/testkit"
)

// screenRequest is the POST /api/screens payload
type screenRequest struct {
	DatasetLabel string        `json:"dataset_label"`
	MatrixPath   string        `json:"matrix_path"`
	MetadataPath string        `json:"metadata_path"`
	Config       screen.Config `json:"config"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateScreen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MatrixPath == "" || req.MetadataPath == "" {
		writeError(w, http.StatusBadRequest, "matrix_path and metadata_path are required")
		return
	}

	matrix, err := s.reader.ReadMatrix(req.MatrixPath)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metadata, err := s.reader.ReadMetadata(req.MetadataPath, matrix)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if req.DatasetLabel == "" {
		req.DatasetLabel = req.MatrixPath
	}
	s.runAndRespond(w, r, req.DatasetLabel, matrix, metadata, req.Config)
}

func (s *Server) handleDemoScreen(w http.ResponseWriter, r *http.Request) {
	gen := testkit.NewGenerator(testkit.DefaultConfig())
	matrix, metadata := gen.Generate()
	s.runAndRespond(w, r, "synthetic demo", matrix, metadata, screen.Config{})
}

func (s *Server) runAndRespond(w http.ResponseWriter, r *http.Request, label string, matrix *abundance.AbundanceMatrix, metadata *abundance.SampleMetadata, cfg screen.Config) {
	cfg = cfg.WithDefaults()
	if cfg.Workers == 0 {
		cfg.Workers = s.defaults.Workers
	}

	outcome, err := s.service.Screen(r.Context(), matrix, metadata, cfg)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	run := &screen.Run{
		ID:            core.RunID(core.NewID()),
		DatasetLabel:  label,
		Config:        cfg,
		Status:        screen.RunStatusCompleted,
		FeaturesTotal: outcome.FeaturesTotal,
		FeaturesKept:  outcome.FeaturesKept,
		Results:       outcome.Results,
		CreatedAt:     core.Now(),
	}
	if err := s.screens.CreateRun(r.Context(), run); err != nil {
		s.logger.Error("failed to persist screen run: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListScreens(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	runs, err := s.screens.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("failed to list screen runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*screen.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleScreenReport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(run))
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*screen.Run, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return nil, false
	}
	run, err := s.screens.GetRun(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return nil, false
	}
	return run, true
}

// writeDomainError maps domain errors onto HTTP statuses so a failed run
// reports which precondition was violated.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case core.IsPreconditionError(err), core.IsDataError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("screen request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
