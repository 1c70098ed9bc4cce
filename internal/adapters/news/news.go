// Package news fetches an RSS feed and keeps the automotive headlines.
package news

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
)

// Defaults.
const (
	DefaultFeedURL     = "https://feeds.bbci.co.uk/news/topics/cpzpydkymr4t/rss.xml"
	DefaultTimeout     = 8 * time.Second
	DefaultMaxItems    = 6
	summaryLimit       = 120
	unknownPublished   = "Unknown date"
	defaultLink        = "#"
	userAgent          = "Mozilla/5.0"
	messageEmpty       = "No automotive news found at the moment. Please try again later."
	messageUnavailable = "Unable to fetch news at the moment. Please check your internet connection."
)

// DefaultKeywords are matched against lower-cased titles and summaries.
func DefaultKeywords() []string {
	return []string{
		"fuel", "mileage", "electric", "efficiency", "car",
		"auto", "vehicle", "hybrid", "gasoline", "diesel",
	}
}

// Status is the outcome of a fetch.
type Status string

// Fetch outcomes.
const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
)

// Item is one headline as displayed.
type Item struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
	Link      string `json:"link"`
}

// Digest is the result of a fetch. Message is set when there are no items.
type Digest struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Items     []Item    `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithFeedURL sets the RSS feed to read.
func WithFeedURL(url string) Option {
	return func(f *Fetcher) {
		if url != "" {
			f.feedURL = url
		}
	}
}

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxItems caps the number of headlines.
func WithMaxItems(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxItems = n
		}
	}
}

// WithKeywords replaces the keyword list.
func WithKeywords(keywords []string) Option {
	return func(f *Fetcher) {
		if len(keywords) == 0 {
			return
		}
		f.keywords = make([]string, 0, len(keywords))
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				f.keywords = append(f.keywords, k)
			}
		}
	}
}

// WithHTTPClient sets the client used to download the feed.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// Fetcher reads the feed on every call; it keeps no state between calls.
type Fetcher struct {
	feedURL  string
	timeout  time.Duration
	maxItems int
	keywords []string
	client   *http.Client
	now      func() time.Time
}

// New creates a Fetcher with defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		feedURL:  DefaultFeedURL,
		timeout:  DefaultTimeout,
		maxItems: DefaultMaxItems,
		keywords: DefaultKeywords(),
		client:   &http.Client{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch downloads and filters the feed. The returned digest is always
// renderable: on failure it is the unavailable digest and err holds the cause.
func (f *Fetcher) Fetch(ctx context.Context) (Digest, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = userAgent

	feed, err := parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return Unavailable(f.now()), err
	}

	items := Filter(feed.Items, f.keywords, f.maxItems)
	if len(items) == 0 {
		return Digest{Status: StatusEmpty, Message: messageEmpty, Items: []Item{}, FetchedAt: f.now()}, nil
	}
	return Digest{Status: StatusOK, Items: items, FetchedAt: f.now()}, nil
}

// Unavailable is the digest shown when the feed cannot be read.
func Unavailable(at time.Time) Digest {
	return Digest{Status: StatusUnavailable, Message: messageUnavailable, Items: []Item{}, FetchedAt: at}
}

// Filter keeps the first limit entries whose title or summary mentions a keyword.
func Filter(entries []*gofeed.Item, keywords []string, limit int) []Item {
	if limit <= 0 {
		return []Item{}
	}
	out := make([]Item, 0, limit)
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if e == nil {
			continue
		}
		summary := summaryOf(e)
		if !matches(e.Title, summary, keywords) {
			continue
		}
		out = append(out, toItem(e, summary))
	}
	return out
}

func summaryOf(e *gofeed.Item) string {
	if e.Description != "" {
		return e.Description
	}
	return e.Content
}

func matches(title, summary string, keywords []string) bool {
	title = strings.ToLower(title)
	summary = strings.ToLower(summary)
	for _, k := range keywords {
		if strings.Contains(title, k) || strings.Contains(summary, k) {
			return true
		}
	}
	return false
}

func toItem(e *gofeed.Item, summary string) Item {
	it := Item{
		Title:     strings.TrimSpace(e.Title),
		Summary:   Clean(summary),
		Published: e.Published,
		Link:      e.Link,
	}
	if it.Published == "" {
		it.Published = unknownPublished
	}
	if it.Link == "" {
		it.Link = defaultLink
	}
	return it
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Clean strips HTML tags, trims, keeps the first 120 characters and appends "...".
func Clean(summary string) string {
	s := strings.TrimSpace(tagPattern.ReplaceAllString(summary, ""))
	if utf8.RuneCountInString(s) > summaryLimit {
		s = string([]rune(s)[:summaryLimit])
	}
	return s + "..."
}
