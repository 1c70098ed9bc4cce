// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers a YAML file and environment variables on top of New().
// - External errors must be wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ScalerPath and ModelPath locate the frozen scaler and regressor artifacts (JSON or YAML).
	ScalerPath string `koanf:"scaler_path"`
	ModelPath  string `koanf:"model_path"`

	// NewsFeedURL is the RSS feed scanned for automotive headlines.
	NewsFeedURL string `koanf:"news_feed_url"`

	// NewsTimeoutMS bounds a single feed fetch.
	NewsTimeoutMS int `koanf:"news_timeout_ms"`

	// NewsMaxItems caps the number of headlines returned.
	NewsMaxItems int `koanf:"news_max_items"`

	// NewsKeywords selects entries whose title or summary mentions any of them.
	NewsKeywords []string `koanf:"news_keywords"`

	// ImageTimeoutMS bounds a single decorative image fetch.
	ImageTimeoutMS int `koanf:"image_timeout_ms"`

	// ImageCacheSize bounds the number of memoised images.
	ImageCacheSize int `koanf:"image_cache_size"`

	// ImageWarmupWorkers download every image in the background at startup; 0 disables.
	ImageWarmupWorkers int `koanf:"image_warmup_workers"`

	// BackgroundImageURL is the page background texture.
	BackgroundImageURL string `koanf:"background_image_url"`

	// DashboardImageURLs are the decorative images served as dashboard-0..N.
	DashboardImageURLs []string `koanf:"dashboard_image_urls"`

	// MaxRequestBytes caps the POST /predict body.
	MaxRequestBytes int64 `koanf:"max_request_bytes"`
}

// Default values shared with the adapters.
const (
	DefaultNewsFeedURL        = "https://feeds.bbci.co.uk/news/topics/cpzpydkymr4t/rss.xml"
	DefaultBackgroundImageURL = "https://images.unsplash.com/photo-1617886903355-9354bb57751f?w=1920&h=1080&fit=crop&q=80"
)

// DefaultNewsKeywords returns the keyword list used to pick automotive headlines.
func DefaultNewsKeywords() []string {
	return []string{
		"fuel", "mileage", "electric", "efficiency", "car",
		"auto", "vehicle", "hybrid", "gasoline", "diesel",
	}
}

// DefaultDashboardImageURLs returns the decorative dashboard images.
func DefaultDashboardImageURLs() []string {
	return []string{
		"https://images.unsplash.com/photo-1492144534655-ae79c964c9d7?w=400&h=400&fit=crop&q=80",
		"https://images.unsplash.com/photo-1449824913935-59a10b8d2000?w=400&h=400&fit=crop&q=80",
		"https://images.unsplash.com/photo-1605559424843-9e4c228bf1c2?w=400&h=400&fit=crop&q=80",
		"https://images.unsplash.com/photo-1494976688754-90f4743b2d1e?w=400&h=400&fit=crop&q=80",
		"https://images.unsplash.com/photo-1503376780353-7e6692767b70?w=400&h=400&fit=crop&q=80",
	}
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		ScalerPath:         "artifacts/scaler.json",
		ModelPath:          "artifacts/model.json",
		NewsFeedURL:        DefaultNewsFeedURL,
		NewsTimeoutMS:      8000,
		NewsMaxItems:       6,
		NewsKeywords:       DefaultNewsKeywords(),
		ImageTimeoutMS:     8000,
		ImageCacheSize:     16,
		ImageWarmupWorkers: 2,
		BackgroundImageURL: DefaultBackgroundImageURL,
		DashboardImageURLs: DefaultDashboardImageURLs(),
		MaxRequestBytes:    1 << 20,
	}
}
