package api

import (
	"net/http"
	"time"
)

// StatsProvider reports runtime counters of the prediction service.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

type statsResponse struct {
	Service     string                 `json:"service"`
	GeneratedAt time.Time              `json:"generated_at"`
	Stats       map[string]interface{} `json:"stats"`
}

// StatsHandler serves the service counters as JSON.
type StatsHandler struct {
	statsProvider StatsProvider
	now           func() time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, now: time.Now}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, statsResponse{
		Service:     "fuelsense",
		GeneratedAt: h.now().UTC(),
		Stats:       h.statsProvider.GetStats(),
	})
}
