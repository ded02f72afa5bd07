package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder-hombre/static-vines/pkg/policy/manager"
)

// SnapshotResponse is the body of GET /snapshot.
type SnapshotResponse struct {
	ID         string          `json:"id"`
	Generation uint64          `json:"generation"`
	Source     string          `json:"source"`
	Defaulted  bool            `json:"defaulted"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Flags      map[string]bool `json:"flags"`
	Status     manager.Status  `json:"status"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	if s.deps.Snapshots == nil {
		writeError(w, http.StatusNotFound, "configuration store not attached")
		return
	}

	snap := s.deps.Snapshots.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no configuration snapshot published")
		return
	}

	writeJSON(w, r, http.StatusOK, SnapshotResponse{
		ID:         snap.ID,
		Generation: snap.Generation,
		Source:     snap.Source,
		Defaulted:  snap.Defaulted,
		LoadedAt:   snap.LoadedAt,
		Flags:      snap.Flags.Named(),
		Status:     s.deps.Snapshots.Status(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	if s.deps.Engine == nil {
		writeError(w, http.StatusNotFound, "engine not attached")
		return
	}
	writeJSON(w, r, http.StatusOK, s.deps.Engine.Stats())
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
