// Package images downloads the dashboard's decorative images and inlines
// them as base64. Any failure degrades to a generated gauge SVG.
package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fuelsense/internal/adapters/imagecache"
)

// Defaults.
const (
	DefaultTimeout  = 8 * time.Second
	DefaultMaxBytes = 10 << 20
	userAgent       = "Mozilla/5.0"
	fallbackSize    = 120
)

// MIME types.
const (
	MIMEPNG  = "image/png"
	MIMESVG  = "image/svg+xml"
	MIMEJPEG = "image/jpeg"
)

// Outcome tells where an image came from.
type Outcome string

// Lookup outcomes.
const (
	OutcomeHit      Outcome = "hit"
	OutcomeFetched  Outcome = "fetched"
	OutcomeFallback Outcome = "fallback"
)

// Image is an inline image.
type Image struct {
	MIME    string
	Data    string // base64
	Outcome Outcome
}

// Fallback reports whether the image is the generated placeholder.
func (i Image) Fallback() bool { return i.Outcome == OutcomeFallback }

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds a single download.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithCache sets the cache successful downloads are stored in.
func WithCache(c imagecache.Cache) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.cache = c
		}
	}
}

// WithMaxBytes caps the size of a downloaded image.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// Fetcher downloads images, memoising successes.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	cache    imagecache.Cache
}

// New creates a Fetcher with defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{},
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.cache == nil {
		f.cache = imagecache.NewInMemoryCache()
	}

	return f
}

// CacheSize returns the number of memoised images.
func (f *Fetcher) CacheSize() int64 { return f.cache.Size() }

// Fetch returns url as an inline image. The image is always usable: on
// failure it is the fallback SVG and err holds the cause.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Image, error) {
	if e, ok := f.cache.Get(ctx, url); ok {
		return Image{MIME: e.MIME, Data: e.Data, Outcome: OutcomeHit}, nil
	}

	img, err := f.download(ctx, url)
	if err != nil {
		return Fallback(fallbackSize, fallbackSize), err
	}

	f.cache.Put(ctx, url, imagecache.Entry{MIME: img.MIME, Data: img.Data})
	return img, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (Image, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		return Image{}, fmt.Errorf("%w: body exceeds %d bytes", ErrFetch, f.maxBytes)
	}
	if len(body) == 0 {
		return Image{}, fmt.Errorf("%w: empty body", ErrFetch)
	}

	return Image{
		MIME:    MIMEFromContentType(resp.Header.Get("Content-Type")),
		Data:    base64.StdEncoding.EncodeToString(body),
		Outcome: OutcomeFetched,
	}, nil
}

// MIMEFromContentType maps a Content-Type header to one of the three inline
// image types. Anything unrecognised is treated as JPEG.
func MIMEFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "png"):
		return MIMEPNG
	case strings.Contains(ct, "svg"):
		return MIMESVG
	default:
		return MIMEJPEG
	}
}
