package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// ImagesHandler serves decorative images.
type ImagesHandler struct {
	deps ImageDependencies
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(deps ImageDependencies) *ImagesHandler {
	return &ImagesHandler{deps: deps}
}

type imageListResponse struct {
	Names []string `json:"names"`
}

// HandleListImages handles GET /api/images requests.
func (h *ImagesHandler) HandleListImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, imageListResponse{Names: h.deps.ImageNames()})
}

// HandleGetImage handles GET /api/images/{name} requests. With ?raw=1 the
// image bytes are written directly, otherwise the inline JSON form is returned.
func (h *ImagesHandler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_image"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/images/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	img, err := h.deps.Image(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}

	if r.URL.Query().Get("raw") == "" {
		writeJSON(w, http.StatusOK, img)
		return
	}
	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, errors.Join(ErrRender, err)))
		return
	}
	w.Header().Set("Content-Type", img.MIME)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
