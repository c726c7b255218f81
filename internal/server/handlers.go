package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Elarwei001/ocean-forest-3d-sub000/types"
)

// modelSummary is the JSON rendering of a finished model. Mesh data
// stays server-side; consumers fetch geometry through their own asset
// channel and only need identity, method, and level layout here.
type modelSummary struct {
	ID          string             `json:"id"`
	Fingerprint string             `json:"fingerprint"`
	Species     string             `json:"species"`
	Method      types.StrategyKind `json:"method"`
	IsFallback  bool               `json:"is_fallback"`
	GeneratedAt string             `json:"generated_at"`
	Levels      []levelSummary     `json:"levels"`
}

type levelSummary struct {
	Distance  float32 `json:"distance"`
	Vertices  int     `json:"vertices"`
	Triangles int     `json:"triangles"`
}

func summarize(m *types.LODModel) modelSummary {
	out := modelSummary{
		ID:          m.ID,
		Fingerprint: m.Fingerprint,
		Species:     m.Species,
		Method:      m.Method,
		IsFallback:  m.IsFallback,
		GeneratedAt: m.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	for _, lv := range m.Levels {
		out.Levels = append(out.Levels, levelSummary{
			Distance:  lv.Distance,
			Vertices:  lv.Mesh.VertexCount(),
			Triangles: lv.Mesh.TriangleCount(),
		})
	}
	return out
}

// handleGenerate accepts a generation request and waits for the
// result up to the configured timeout. When generation outlasts the
// wait, it responds 202 with the fingerprint so the client can poll
// or watch the event stream.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Species == "" {
		writeError(w, http.StatusBadRequest, "species is required")
		return
	}
	if req.ForceStrategy != "" && !types.ValidStrategyKind(req.ForceStrategy) {
		writeError(w, http.StatusBadRequest, "unknown force_strategy")
		return
	}

	future := s.coordinator.Submit(r.Context(), &req)

	waitCtx, cancel := context.WithTimeout(r.Context(), s.cfg.GenerateWaitTimeout)
	defer cancel()
	model, err := future.Wait(waitCtx)
	if err != nil {
		// Generation continues; hand back the handle.
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":      "generating",
			"fingerprint": s.fingerprintOf(&req),
		})
		return
	}
	writeJSON(w, http.StatusOK, summarize(model))
}

// handleModel serves a completed cache entry by fingerprint.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	fp := r.PathValue("fingerprint")
	model, ok := s.coordinator.Lookup(fp)
	if !ok {
		writeError(w, http.StatusNotFound, "no completed model for fingerprint")
		return
	}
	writeJSON(w, http.StatusOK, summarize(model))
}

// handleStats serves the performance snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	m := s.coordinator.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"models_generated":           m.ModelsGenerated,
		"average_generation_time_ms": m.AverageGenerationTime.Milliseconds(),
		"memory_usage_bytes":         m.MemoryUsage,
		"active_models":              m.ActiveModels,
		"queue_depth":                s.coordinator.QueueDepth(),
	})
}

// handleHistory serves the most recent generation records.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}
	records, err := s.history.Recent(r.Context(), 50)
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
