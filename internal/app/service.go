// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fuelsense/internal/adapters/artifact"
	"github.com/okian/fuelsense/internal/adapters/imagecache"
	"github.com/okian/fuelsense/internal/adapters/images"
	"github.com/okian/fuelsense/internal/adapters/mq/queue"
	"github.com/okian/fuelsense/internal/adapters/mq/worker"
	"github.com/okian/fuelsense/internal/adapters/news"
	"github.com/okian/fuelsense/internal/domain/analytics"
	"github.com/okian/fuelsense/internal/domain/predictor"
	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/internal/domain/vehicle"
	"github.com/okian/fuelsense/pkg/logger"
	"github.com/okian/fuelsense/pkg/metrics"
)

// Image names served by the dashboard.
const (
	BackgroundImage     = "background"
	dashboardImageStem  = "dashboard-"
	defaultScalerPath   = "artifacts/scaler.json"
	defaultModelPath    = "artifacts/model.json"
	defaultImageCache   = 16
	defaultImageTimeout = images.DefaultTimeout
	warmupStopTimeout   = 5 * time.Second
)

// Service implements the API dependencies for the FuelSense dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	predictor  *predictor.Predictor
	news       *news.Fetcher
	images     *images.Fetcher
	imageCache imagecache.Cache
	warmup     *worker.Pool
	warmCancel context.CancelFunc

	// Configuration
	scalerPath     string
	modelPath      string
	scaler         predictor.Scaler
	regressor      predictor.Regressor
	newsOpts       []news.Option
	imageURLs      map[string]string
	imageTimeout   time.Duration
	imageCacheSize int
	warmupWorkers  int
	httpClient     *http.Client

	// Counters
	predictions      atomic.Int64
	predictionErrors atomic.Int64
	newsFetches      atomic.Int64
	imageFallbacks   atomic.Int64

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithArtifactPaths sets where the frozen scaler and model are loaded from.
func WithArtifactPaths(scalerPath, modelPath string) Option {
	return func(s *Service) {
		if scalerPath != "" {
			s.scalerPath = scalerPath
		}
		if modelPath != "" {
			s.modelPath = modelPath
		}
	}
}

// WithModel injects an already loaded scaler/regressor pair; Start then skips
// loading artifacts from disk.
func WithModel(scaler predictor.Scaler, regressor predictor.Regressor) Option {
	return func(s *Service) {
		s.scaler = scaler
		s.regressor = regressor
	}
}

// WithNewsOptions passes options through to the news fetcher.
func WithNewsOptions(opts ...news.Option) Option {
	return func(s *Service) {
		s.newsOpts = append(s.newsOpts, opts...)
	}
}

// WithBackgroundImageURL sets the URL served as the "background" image.
func WithBackgroundImageURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.imageURLs[BackgroundImage] = url
		}
	}
}

// WithDashboardImageURLs sets the URLs served as "dashboard-0".."dashboard-N".
func WithDashboardImageURLs(urls []string) Option {
	return func(s *Service) {
		if len(urls) == 0 {
			return
		}
		for name := range s.imageURLs {
			if name != BackgroundImage {
				delete(s.imageURLs, name)
			}
		}
		for i, u := range urls {
			s.imageURLs[fmt.Sprintf("%s%d", dashboardImageStem, i)] = u
		}
	}
}

// WithImageTimeout bounds a single image download.
func WithImageTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.imageTimeout = d
		}
	}
}

// WithImageCacheSize sets the number of memoised images.
func WithImageCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.imageCacheSize = size
		}
	}
}

// WithImageWarmup downloads every image in the background on Start using
// workers goroutines. Zero disables the warm-up.
func WithImageWarmup(workers int) Option {
	return func(s *Service) {
		if workers >= 0 {
			s.warmupWorkers = workers
		}
	}
}

// WithHTTPClient sets the client used for news and image downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scalerPath:     defaultScalerPath,
		modelPath:      defaultModelPath,
		imageURLs:      make(map[string]string),
		imageTimeout:   defaultImageTimeout,
		imageCacheSize: defaultImageCache,
		httpClient:     &http.Client{},
		stopCh:         make(chan struct{}),
		logger:         nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the frozen artifacts and builds the service components.
// A missing or invalid artifact is fatal.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting fuelsense service...")

	if s.scaler == nil || s.regressor == nil {
		scaler, regressor, err := artifact.LoadPair(s.scalerPath, s.modelPath)
		if err != nil {
			metrics.SetArtifactsLoaded(false)
			s.logger.Error(ctx, "failed to load artifacts",
				logger.String("scaler", s.scalerPath),
				logger.String("model", s.modelPath),
				logger.Error(err),
			)
			return fmt.Errorf("%w: %w", ErrStart, err)
		}
		s.scaler, s.regressor = scaler, regressor
		s.logger.Info(ctx, "artifacts loaded",
			logger.String("scaler", s.scalerPath),
			logger.String("model", s.modelPath),
			logger.Int("features", scaler.Features()),
		)
	}
	if s.scaler.Features() != vehicle.Width || s.regressor.Features() != vehicle.Width {
		metrics.SetArtifactsLoaded(false)
		return fmt.Errorf("%w: %w: artifacts expect %d/%d features, encoder produces %d",
			ErrStart, predictor.ErrDimensionMismatch, s.scaler.Features(), s.regressor.Features(), vehicle.Width)
	}
	metrics.SetArtifactsLoaded(true)

	s.predictor = predictor.New(s.scaler, s.regressor)
	s.news = news.New(append([]news.Option{news.WithHTTPClient(s.httpClient)}, s.newsOpts...)...)
	s.imageCache = imagecache.NewInMemoryCache(imagecache.WithMaxSize(s.imageCacheSize))
	s.images = images.New(
		images.WithHTTPClient(s.httpClient),
		images.WithTimeout(s.imageTimeout),
		images.WithCache(s.imageCache),
	)

	s.startWarmup(ctx)

	select {
	case <-s.stopCh:
		// Restart after Stop.
		s.stopCh = make(chan struct{})
	default:
	}
	if s.stopCh == nil {
		s.stopCh = make(chan struct{})
	}
	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "fuelsense service started",
		logger.Int("images", len(s.imageURLs)),
		logger.Int("imageCacheSize", s.imageCacheSize),
	)

	return nil
}

// Stop shuts the service down. Predictions fail with ErrNotStarted afterwards.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping fuelsense service...")

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	if s.warmup != nil {
		s.warmCancel()
		ctx, cancel := context.WithTimeout(context.Background(), warmupStopTimeout)
		_ = s.warmup.Shutdown(ctx)
		cancel()
	}

	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}

	s.started = false
	metrics.SetArtifactsLoaded(false)
	s.logger.Info(context.Background(), "fuelsense service stopped")
}

// startWarmup queues every configured image and lets a worker pool pull
// them into the cache. Callers hold s.mu.
func (s *Service) startWarmup(ctx context.Context) {
	s.warmup = nil
	if s.warmupWorkers == 0 || len(s.imageURLs) == 0 {
		return
	}

	names := make([]string, 0, len(s.imageURLs))
	for name := range s.imageURLs {
		names = append(names, name)
	}
	sort.Strings(names)

	q := queue.NewInMemoryQueue(queue.WithCapacity(len(names)))
	for _, name := range names {
		q.Enqueue(ctx, queue.Job{Name: name, URL: s.imageURLs[name]})
	}
	_ = q.Close()

	warmCtx, cancel := context.WithCancel(context.Background())
	s.warmCancel = cancel
	s.warmup = worker.NewPool(s.warmupWorkers, q, s.images)
	s.warmup.Start(warmCtx)
	s.logger.Info(ctx, "image warm-up started",
		logger.Int("images", len(names)),
		logger.Int("workers", s.warmup.Size()),
	)
}

// WarmupDone is closed once the background image warm-up has finished.
// It is closed immediately when no warm-up is running.
func (s *Service) WarmupDone() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.warmup == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return s.warmup.Done()
}

// Done is closed when the service stops.
func (s *Service) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopCh
}

// Predict validates cfg, encodes it and runs the frozen model.
func (s *Service) Predict(ctx context.Context, cfg vehicle.Configuration) (predictor.Result, error) {
	s.mu.RLock()
	p, started := s.predictor, s.started
	s.mu.RUnlock()

	if !started {
		return predictor.Result{}, ErrNotStarted
	}

	if err := cfg.Validate(); err != nil {
		s.recordPredictionError(ctx, "invalid_input", err)
		return predictor.Result{}, err
	}

	res, err := p.Predict(ctx, vehicle.Encode(cfg))
	if err != nil {
		reason := "predict"
		if errors.Is(err, predictor.ErrDimensionMismatch) {
			reason = "dimension_mismatch"
		}
		s.recordPredictionError(ctx, reason, err)
		return predictor.Result{}, err
	}

	s.predictions.Add(1)
	metrics.RecordPrediction(res.Tier.Name, res.Consumption, float64(res.Elapsed.Microseconds())/1000)
	s.logger.Debug(ctx, "prediction served",
		logger.String("class", cfg.Class.Code()),
		logger.String("transmission", cfg.Transmission.Code()),
		logger.String("fuel", cfg.Fuel.Code()),
		logger.Float64("consumption", res.Consumption),
		logger.String("tier", res.Tier.Name),
	)
	return res, nil
}

func (s *Service) recordPredictionError(ctx context.Context, reason string, err error) {
	s.predictionErrors.Add(1)
	metrics.RecordPredictionError(reason)
	s.logger.Warn(ctx, "prediction rejected", logger.String("reason", reason), logger.Error(err))
}

// News fetches the automotive headlines. Failures degrade to the
// unavailable digest.
func (s *Service) News(ctx context.Context) news.Digest {
	s.mu.RLock()
	f, started := s.news, s.started
	s.mu.RUnlock()

	if !started {
		return news.Unavailable(time.Now())
	}

	d, err := f.Fetch(ctx)
	s.newsFetches.Add(1)
	metrics.RecordNewsFetch(string(d.Status), len(d.Items))
	if err != nil {
		s.logger.Warn(ctx, "news feed unavailable", logger.Error(err))
	}
	return d
}

// ImageNames returns the names accepted by Image, sorted.
func (s *Service) ImageNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.imageURLs))
	for name := range s.imageURLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Image returns a named decorative image. Download failures degrade to the
// fallback gauge; only unknown names are errors.
func (s *Service) Image(ctx context.Context, name string) (types.ImageResponse, error) {
	s.mu.RLock()
	url, known := s.imageURLs[name]
	f, started := s.images, s.started
	s.mu.RUnlock()

	if !known {
		return types.ImageResponse{}, fmt.Errorf("%w: %q", ErrUnknownImage, name)
	}

	var img images.Image
	if !started {
		img = images.Fallback(120, 120)
	} else {
		var err error
		img, err = f.Fetch(ctx, url)
		if err != nil {
			s.logger.Warn(ctx, "image unavailable, using fallback",
				logger.String("name", name),
				logger.Error(err),
			)
		}
		metrics.UpdateImageCacheSize(f.CacheSize())
	}

	if img.Fallback() {
		s.imageFallbacks.Add(1)
	}
	metrics.RecordImageFetch(string(img.Outcome))

	return types.ImageResponse{
		Name:     name,
		MIME:     img.MIME,
		Data:     img.Data,
		Fallback: img.Fallback(),
	}, nil
}

// Analytics returns the sample analytics report.
func (s *Service) Analytics(_ context.Context) analytics.Report {
	return analytics.Sample()
}

// Options returns the form tables, slider bounds and tiers.
func (s *Service) Options(_ context.Context) types.OptionsResponse {
	return types.OptionsResponse{
		VehicleClasses: vehicle.Classes(),
		Transmissions:  vehicle.Transmissions(),
		FuelTypes:      vehicle.Fuels(),
		EngineSize:     vehicle.EngineSizeRange,
		Cylinders:      vehicle.CylindersRange,
		CO2Rating:      vehicle.CO2RatingRange,
		Tiers:          predictor.Tiers(),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"scalerPath":       s.scalerPath,
		"modelPath":        s.modelPath,
		"predictions":      s.predictions.Load(),
		"predictionErrors": s.predictionErrors.Load(),
		"newsFetches":      s.newsFetches.Load(),
		"imageFallbacks":   s.imageFallbacks.Load(),
		"images":           len(s.imageURLs),
	}

	if s.started {
		cacheSize := s.imageCache.Size()
		stats["features"] = s.predictor.Features()
		stats["imageCacheEntries"] = cacheSize
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if s.warmup != nil {
			stats["imagesWarmed"] = s.warmup.Warmed()
			stats["imageWarmupFailures"] = s.warmup.Failed()
		}

		metrics.UpdateImageCacheSize(cacheSize)
	}

	return stats
}
