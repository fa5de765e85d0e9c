package api

import (
	"context"
	"net/http"
)

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// handleStats serves GET /stats: the provider's figures plus the limits this
// server enforces on list and match requests.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{}
	if s.stats != nil {
		stats = s.stats.GetStats(r.Context())
	}
	stats["max_match_limit"] = s.maxLimit
	stats["max_body_bytes"] = maxBodyBytes
	writeJSON(w, http.StatusOK, stats)
}
