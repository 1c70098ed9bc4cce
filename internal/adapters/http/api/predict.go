package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/internal/domain/vehicle"
	"github.com/okian/fuelsense/pkg/logger"
)

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps      PredictDependencies
	validator *Validator
	maxBytes  int64
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies, maxBytes int64) *PredictHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}
	return &PredictHandler{deps: deps, validator: NewValidator(), maxBytes: maxBytes}
}

var errTrailingData = errors.New("unexpected data after JSON body")

// HandlePredict handles POST /api/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req types.PredictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errTrailingData))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", Wrap(op, err))
		return
	}
	cfg, err := req.Configuration()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Predict(r.Context(), cfg)
	if err != nil {
		if errors.Is(err, vehicle.ErrOutOfRange) || errors.Is(err, vehicle.ErrUnknownOption) {
			writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
			return
		}
		logger.Get().Error(r.Context(), "prediction failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "prediction_failed", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, types.PredictResponse{
		PredictionID: uuid.NewString(),
		Consumption:  res.Consumption,
		Formatted:    res.Formatted(),
		Unit:         types.Unit,
		Tier:         res.Tier,
		Features:     []float64(res.Features),
	})
}
