package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ravinmor/sky-watcher/internal/metrics"
	"github.com/ravinmor/sky-watcher/internal/model"
	"github.com/ravinmor/sky-watcher/pkg/logger"
)

const (
	DefaultBaseURL   = "https://opensky-network.org/api"
	DefaultUserAgent = "sky-watcher/1.0"
	statesAllPath    = "/states/all"
)

// HTTPDoer is the transport the client sends requests through. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestOptions are the headers sent with every request
type RequestOptions struct {
	Accept    string
	UserAgent string
}

// DefaultRequestOptions asks for JSON
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{
		Accept:    "application/json",
		UserAgent: DefaultUserAgent,
	}
}

// Option configures an OpenSkyClient
type Option func(*OpenSkyClient)

// WithHTTPClient replaces the default *http.Client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *OpenSkyClient) {
		c.httpClient = doer
	}
}

// WithRequestOptions overrides the request headers
func WithRequestOptions(opts RequestOptions) Option {
	return func(c *OpenSkyClient) {
		if opts.Accept == "" {
			opts.Accept = "application/json"
		}
		c.options = opts
	}
}

// OpenSkyClient is a client for the OpenSky Network state vector API
type OpenSkyClient struct {
	baseURL    string
	httpClient HTTPDoer
	options    RequestOptions
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewOpenSkyClient creates a new OpenSky API client. log and m may be nil.
func NewOpenSkyClient(baseURL string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics, opts ...Option) *OpenSkyClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Discard()
	}

	c := &OpenSkyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		options: DefaultRequestOptions(),
		logger:  log,
		metrics: m,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FullURL returns the /states/all URL restricted to box
func (c *OpenSkyClient) FullURL(box model.BoundingBox) (string, error) {
	query, err := box.Encode()
	if err != nil {
		return "", err
	}
	return c.baseURL + statesAllPath + "?" + query, nil
}

// FetchFlights fetches the state vectors inside box and returns them as flight records.
// A response without states yields an empty slice.
func (c *OpenSkyClient) FetchFlights(ctx context.Context, box model.BoundingBox) ([]*model.FlightRecord, error) {
	response, err := c.FetchStates(ctx, box)
	if err != nil {
		return nil, err
	}

	records, err := OrganizeStates(response.States)
	if err != nil {
		c.logger.Error("Failed to normalize state vectors: %v", err)
		c.incrementErrors()
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.AddRecordsNormalized(len(records))
	}
	c.logger.Debug("Converted %d OpenSky states to flight records", len(records))

	return records, nil
}

// FetchStates fetches the raw state vectors inside box
func (c *OpenSkyClient) FetchStates(ctx context.Context, box model.BoundingBox) (*model.OpenSkyResponse, error) {
	url, err := c.FullURL(box)
	if err != nil {
		c.logger.Error("Refusing to query OpenSky: %v", err)
		return nil, err
	}
	return c.fetchStates(ctx, url)
}

// fetchStates is the internal method to fetch states from a given URL
func (c *OpenSkyClient) fetchStates(ctx context.Context, url string) (*model.OpenSkyResponse, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create request: %v", err)
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", c.options.Accept)
	if c.options.UserAgent != "" {
		req.Header.Set("User-Agent", c.options.UserAgent)
	}

	if c.metrics != nil {
		c.metrics.IncrementAPIRequests()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch data from OpenSky: %v", err)
		c.incrementErrors()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to fetch data: %w", err)}
	}
	defer resp.Body.Close()

	latency := time.Since(startTime)
	if c.metrics != nil {
		c.metrics.RecordAPILatency(latency)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenSky API returned status %d", resp.StatusCode)
		c.incrementErrors()
		return nil, &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API returned %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read response body: %v", err)
		c.incrementErrors()
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var openSkyResp model.OpenSkyResponse
	if err := json.Unmarshal(body, &openSkyResp); err != nil {
		c.logger.Error("Failed to parse JSON response: %v", err)
		c.incrementErrors()
		return nil, &ParseError{Err: err}
	}

	c.logger.Debug("Fetched %d flight states from OpenSky API in %dms", len(openSkyResp.States), latency.Milliseconds())

	return &openSkyResp, nil
}

func (c *OpenSkyClient) incrementErrors() {
	if c.metrics != nil {
		c.metrics.IncrementAPIErrors()
	}
}
