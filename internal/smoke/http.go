package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/fuelsense/internal/domain/types"
	"github.com/okian/fuelsense/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(cfg *Config) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// fetchOptions reads the form tables from /api/options.
func fetchOptions(ctx context.Context, client *HTTPClient) (types.OptionsResponse, error) {
	var opts types.OptionsResponse
	resp, err := client.Get(ctx, "/api/options")
	if err != nil {
		return opts, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return opts, fmt.Errorf("failed to read options: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return opts, fmt.Errorf("%w: options returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.Unmarshal(body, &opts); err != nil {
		return opts, fmt.Errorf("failed to decode options: %w", err)
	}
	return opts, nil
}

// submitCases posts cases concurrently using a worker pool. Outcomes are
// returned in case order.
func submitCases(ctx context.Context, cfg *Config, client *HTTPClient, cases []Case) []Outcome {
	log := logger.Get()
	log.Info(ctx, "submitting cases", logger.Int("cases", len(cases)), logger.Int("workers", cfg.Workers))

	outcomes := make([]Outcome, len(cases))
	var submitted, failed int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	indexChan := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				outcomes[idx] = submitSingleCase(ctx, client, cases[idx])
				atomic.AddInt64(&submitted, 1)
				if outcomes[idx].Status != http.StatusOK {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	// Send cases to workers
	go func() {
		defer close(indexChan)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Cases never dispatched because the context ended.
	if err := ctx.Err(); err != nil {
		for i := range outcomes {
			if outcomes[i].Case.ID == "" {
				outcomes[i] = Outcome{Case: cases[i], Error: "not submitted: " + err.Error()}
			}
		}
	}

	log.Info(ctx, "case submission completed",
		logger.Any("submitted", atomic.LoadInt64(&submitted)),
		logger.Any("failed", atomic.LoadInt64(&failed)))
	return outcomes
}

// submitSingleCase posts one case and decodes the answer.
func submitSingleCase(ctx context.Context, client *HTTPClient, c Case) Outcome {
	out := Outcome{Case: c}
	resp, err := client.Post(ctx, "/api/predict", c.Request)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Status = resp.StatusCode

	body, err := readResponseBody(resp)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil {
			out.Error = e.Message
		}
		return out
	}

	var pr types.PredictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		out.Error = "failed to decode response: " + err.Error()
		return out
	}
	out.Response = &pr
	return out
}
