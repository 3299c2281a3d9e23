package signalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"signalgen/internal/config"
	"signalgen/internal/logging"
	"signalgen/internal/services"
)

const (
	defaultBaseURL         = "http://localhost:5000/api"
	defaultHealthTimeout   = 5 * time.Second
	defaultCatalogTimeout  = 10 * time.Second
	defaultGenerateTimeout = 2 * time.Minute
	defaultDownloadTimeout = time.Minute

	// RequestIDHeader carries the per-request correlation identifier.
	RequestIDHeader = "X-Request-ID"

	errorBodyLimit   = 4096
	maxArtifactBytes = 256 << 20
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	BaseURL         string
	AssetBaseURL    string
	UserAgent       string
	HealthTimeout   time.Duration
	CatalogTimeout  time.Duration
	GenerateTimeout time.Duration
	DownloadTimeout time.Duration
}

// ConfigFromApp maps the application configuration onto client settings.
func ConfigFromApp(cfg *config.Config) Config {
	if cfg == nil {
		return Config{}
	}
	health, catalog, generate, download := cfg.Timeouts()
	return Config{
		BaseURL:         cfg.Service.BaseURL,
		AssetBaseURL:    cfg.Service.AssetBaseURL,
		UserAgent:       cfg.Service.UserAgent,
		HealthTimeout:   health,
		CatalogTimeout:  catalog,
		GenerateTimeout: generate,
		DownloadTimeout: download,
	}
}

// Client issues requests against the generation service.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	logger       *slog.Logger
	newRequestID func() string
	now          func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Per-call timeouts are
// still applied through the request context.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDFunc overrides how correlation identifiers are minted.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

// WithClock overrides the time source used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.AssetBaseURL = strings.TrimRight(strings.TrimSpace(cfg.AssetBaseURL), "/")
	if cfg.AssetBaseURL == "" {
		cfg.AssetBaseURL = strings.TrimSuffix(cfg.BaseURL, "/api")
	}
	cfg.HealthTimeout = orDefault(cfg.HealthTimeout, defaultHealthTimeout)
	cfg.CatalogTimeout = orDefault(cfg.CatalogTimeout, defaultCatalogTimeout)
	cfg.GenerateTimeout = orDefault(cfg.GenerateTimeout, defaultGenerateTimeout)
	cfg.DownloadTimeout = orDefault(cfg.DownloadTimeout, defaultDownloadTimeout)

	client := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{},
		logger:       logging.NewNop(),
		newRequestID: uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "signalapi")
	return client
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// HealthCheck succeeds only if the service answers 200 within the health
// timeout. Any other outcome matches services.ErrNetwork.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	resp, err := c.do(ctx, "health", http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return services.Wrap(services.ErrNetwork, "signalapi", "health", "service unreachable", err)
	}
	defer drainClose(resp)
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrNetwork, "signalapi", "health", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return nil
}

// do issues a request and returns the response for any status code. Only
// transport failures are returned as errors.
func (c *Client) do(ctx context.Context, op, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.newRequestID()
	}
	req.Header.Set(RequestIDHeader, requestID)

	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("service request failed",
			logging.String("op", op),
			logging.String(logging.FieldCorrelationID, requestID),
			logging.Error(err),
		)
		return nil, err
	}
	logger.Debug("service request completed",
		logging.String("op", op),
		logging.String("method", method),
		logging.String("url", url),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldCorrelationID, requestID),
	)
	return resp, nil
}

// getJSON issues a GET and decodes a 2xx body into T. Non-2xx responses are
// returned as *statusError.
func getJSON[T any](ctx context.Context, c *Client, op, url string) (T, error) {
	var zero T
	resp, err := c.do(ctx, op, http.MethodGet, url, nil)
	if err != nil {
		return zero, err
	}
	defer drainClose(resp)
	if resp.StatusCode >= 300 {
		return zero, newStatusError(resp)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", op, err)
	}
	return out, nil
}

// statusError captures a non-2xx response. Message is the service's `error`
// field when the body is the usual JSON envelope.
type statusError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *statusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

func newStatusError(resp *http.Response) *statusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	out := &statusError{StatusCode: resp.StatusCode, Body: string(raw)}
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		out.Message = strings.TrimSpace(envelope.Error)
	}
	return out
}

func asStatusError(err error) (*statusError, bool) {
	var se *statusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyLimit))
	_ = resp.Body.Close()
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
