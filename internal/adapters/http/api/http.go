// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/fuelsense/internal/adapters/news"
	"github.com/okian/fuelsense/internal/domain/analytics"
	"github.com/okian/fuelsense/internal/domain/predictor"
	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/internal/domain/vehicle"
)

// DefaultMaxRequestBytes caps request bodies unless overridden.
const DefaultMaxRequestBytes int64 = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	OptionsDependencies
	NewsDependencies
	ImageDependencies
	AnalyticsDependencies
}

// PredictDependencies runs the model.
type PredictDependencies interface {
	Predict(ctx context.Context, cfg vehicle.Configuration) (predictor.Result, error)
}

// OptionsDependencies lists the form tables.
type OptionsDependencies interface {
	Options(ctx context.Context) types.OptionsResponse
}

// NewsDependencies fetches the headline digest.
type NewsDependencies interface {
	News(ctx context.Context) news.Digest
}

// ImageDependencies serves decorative images.
type ImageDependencies interface {
	Image(ctx context.Context, name string) (types.ImageResponse, error)
	ImageNames() []string
}

// AnalyticsDependencies provides the sample analytics.
type AnalyticsDependencies interface {
	Analytics(ctx context.Context) analytics.Report
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	optionsHandler   *OptionsHandler
	newsHandler      *NewsHandler
	imagesHandler    *ImagesHandler
	analyticsHandler *AnalyticsHandler
	dashboardHandler *dashboardHandler
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxRequestBytes int64
}

// WithMaxRequestBytes caps the size of request bodies.
func WithMaxRequestBytes(n int64) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxRequestBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{maxRequestBytes: DefaultMaxRequestBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		predictHandler:   NewPredictHandler(deps, cfg.maxRequestBytes),
		optionsHandler:   NewOptionsHandler(deps),
		newsHandler:      NewNewsHandler(deps),
		imagesHandler:    NewImagesHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
		dashboardHandler: newDashboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/options", MetricsMiddleware(s.optionsHandler.HandleOptions, "options"))
	mux.HandleFunc("/api/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/api/news", MetricsMiddleware(s.newsHandler.HandleNews, "news"))
	mux.HandleFunc("/api/images", MetricsMiddleware(s.imagesHandler.HandleListImages, "images"))
	mux.HandleFunc("/api/images/", MetricsMiddleware(s.imagesHandler.HandleGetImage, "image"))
	mux.HandleFunc("/api/analytics", MetricsMiddleware(s.analyticsHandler.HandleAnalytics, "analytics"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
