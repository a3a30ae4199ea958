// Package contentful fetches entry collections from the content delivery API.
package contentful

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rpattn/contentql/internal/auth"
	"github.com/rpattn/contentql/internal/domain"
	"github.com/rpattn/contentql/internal/metrics"
)

const (
	DeliveryBaseURL = "https://cdn.contentful.com"
	PreviewBaseURL  = "https://preview.contentful.com"
)

// ErrMissingSpace is returned by New when no space is configured.
var ErrMissingSpace = errors.New("contentful: space id is required")

type Config struct {
	SpaceID     string
	Environment string
	AccessToken string
	Preview     bool
	// BaseURL overrides the delivery or preview host.
	BaseURL string
	Timeout time.Duration
	// RateLimit is the number of requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
}

// DefaultConfig returns a config for the master environment of the delivery API.
func DefaultConfig() Config {
	return Config{
		Environment: "master",
		Timeout:     10 * time.Second,
		RateLimit:   50,
		Burst:       10,
	}
}

// APIError is a non-2xx response from the delivery API.
type APIError struct {
	Status    int
	ID        string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.ID != "" {
		return fmt.Sprintf("contentful: %d %s: %s", e.Status, e.ID, msg)
	}
	return fmt.Sprintf("contentful: %d: %s", e.Status, msg)
}

// Client fetches collections for a single space and environment.
type Client struct {
	baseURL    string
	space      string
	env        string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SpaceID) == "" {
		return nil, ErrMissingSpace
	}
	env := cfg.Environment
	if env == "" {
		env = "master"
	}
	base := cfg.BaseURL
	if base == "" {
		base = DeliveryBaseURL
		if cfg.Preview {
			base = PreviewBaseURL
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		space:      cfg.SpaceID,
		env:        env,
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RequestURL returns the full URL of a collection fetch.
func (c *Client) RequestURL(req domain.FetchRequest) string {
	return fmt.Sprintf("%s/spaces/%s/environments/%s/entries?%s",
		c.baseURL, url.PathEscape(c.space), url.PathEscape(c.env), EncodeRequest(req).Encode())
}

// Fetch retrieves one page of a collection together with its linked entries
// and assets.
func (c *Client) Fetch(ctx context.Context, req domain.FetchRequest) (domain.RawPayload, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.RawPayload{}, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	start := time.Now()
	payload, status, err := c.do(ctx, req)
	metrics.FetchDuration.WithLabelValues(strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("collection fetch failed",
			zap.String("collection", req.Collection),
			zap.Int("status", status),
			zap.Error(err))
		return domain.RawPayload{}, err
	}

	c.logger.Debug("collection fetched",
		zap.String("collection", req.Collection),
		zap.Int("items", len(payload.Items)),
		zap.Int("total", payload.Total),
		zap.Duration("duration", time.Since(start)))
	return payload, nil
}

func (c *Client) do(ctx context.Context, req domain.FetchRequest) (domain.RawPayload, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(req), nil)
	if err != nil {
		return domain.RawPayload{}, 0, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	token := c.token
	if override, ok := auth.AccessTokenFromContext(ctx); ok {
		token = override
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.RawPayload{}, 0, fmt.Errorf("failed to fetch %s: %w", req.Collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.RawPayload{}, resp.StatusCode, decodeAPIError(resp)
	}

	var payload domain.RawPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.RawPayload{}, resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", req.Collection, err)
	}
	return payload, resp.StatusCode, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get("X-Contentful-Request-Id"),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var wire struct {
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
		Sys       struct {
			ID string `json:"id"`
		} `json:"sys"`
	}
	if json.Unmarshal(body, &wire) != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}
	apiErr.ID = wire.Sys.ID
	apiErr.Message = wire.Message
	if apiErr.RequestID == "" {
		apiErr.RequestID = wire.RequestID
	}
	return apiErr
}
