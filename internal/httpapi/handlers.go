package httpapi

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// handleMetrics implements spec.md §6's GET /metrics: {"keys":N,"hits":H,"misses":M}.
// "keys" is the live count (Count()), not the raw atomic counter Stats().Keys
// returns, which also includes entries not yet swept by the TTL sweeper.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	st := s.store.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{
		"keys":   s.store.Count(),
		"hits":   int64(st.Hits),
		"misses": int64(st.Misses),
	})
}

// handleInsights implements spec.md §6's GET /insights: a JSON object
// mapping every live key to its value. goccy/go-json, like
// encoding/json, escapes control characters as \uXXXX, satisfying the
// "escaped per standard JSON string rules" requirement without any
// custom escaping code.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Snapshot()
	out := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		out[k] = string(v)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
