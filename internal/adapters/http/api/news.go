package api

import "net/http"

// NewsHandler serves the automotive headlines.
type NewsHandler struct {
	deps NewsDependencies
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(deps NewsDependencies) *NewsHandler {
	return &NewsHandler{deps: deps}
}

// HandleNews handles GET /api/news requests. An unreachable feed is still a
// 200 carrying the unavailable message.
func (h *NewsHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.deps.News(r.Context()))
}
