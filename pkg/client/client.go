// Package client provides a typed client for The Blue Alliance API v3 with
// optional Redis caching and concurrent multi-year / multi-page queries.
package client

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/tba-client/pkg/cache"
	"github.com/Sternrassler/tba-client/pkg/fanout"
	"github.com/Sternrassler/tba-client/pkg/logging"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the TBA API v3 root.
	DefaultBaseURL = "https://www.thebluealliance.com/api/v3/"

	// AuthHeader carries the API key on every request.
	AuthHeader = "X-TBA-Auth-Key"

	// EnvAPIKey and EnvAPIKeyFallback are consulted in order when Config.APIKey is empty.
	EnvAPIKey         = "TBA_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
)

// Prometheus metrics for TBA client operations.
var (
	tbaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tba_requests_total",
		Help: "Total TBA requests by endpoint and status",
	}, []string{"endpoint", "status"})

	tbaRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tba_request_duration_seconds",
		Help:    "TBA request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	tbaErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tba_errors_total",
		Help: "Total TBA errors by class",
	}, []string{"class"})
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the client configuration.
type Config struct {
	// APIKey is sent as X-TBA-Auth-Key. Empty means TBA_API_KEY, then API_KEY.
	APIKey string `validate:"-"`

	// PersistentSession keeps the HTTP session open across calls until Close.
	// Otherwise the session is torn down whenever no call is in flight.
	PersistentSession bool

	// BaseURL of the API, ending in "/api/v3/"
	BaseURL string `validate:"required,url"`

	// Timeout per HTTP request
	Timeout time.Duration `validate:"gte=0"`

	// Fan-out
	MaxConcurrency int `validate:"gte=1"` // Max parallel sub-requests
	PageCeiling    int `validate:"gte=1"` // Pages requested when no page is given

	// Redis enables the response cache when set.
	Redis          redis.UniversalClient `validate:"-"`
	CacheRetention time.Duration         `validate:"gte=0"`

	// Logger overrides the component logger.
	Logger *zerolog.Logger `validate:"-"`

	// HTTPClient replaces the default session client (for testing).
	HTTPClient *http.Client `validate:"-"`
}

// DefaultConfig returns a default configuration. The API key is resolved from
// the environment by New.
func DefaultConfig() Config {
	fc := fanout.DefaultConfig()
	return Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        30 * time.Second,
		MaxConcurrency: fc.MaxConcurrency,
		PageCeiling:    fc.PageCeiling,
		CacheRetention: cache.DefaultRetention,
	}
}

// Client is the TBA API client. It is safe for concurrent use.
type Client struct {
	config  Config
	apiKey  string
	baseURL string
	cache   *cache.Manager
	fetcher *fanout.Fetcher
	logger  zerolog.Logger

	mu     sync.Mutex
	sess   *session
	refs   int
	closed bool
}

// New creates a new TBA client.
func New(cfg Config) (*Client, error) {
	apiKey := resolveAPIKey(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid config"), ErrInvalidArgument)
	}

	logger := logging.NewLogger("tba-client")
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "tba-client").Logger()
	}

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis, cfg.CacheRetention)
	}

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Client{
		config:  cfg,
		apiKey:  apiKey,
		baseURL: baseURL,
		cache:   cacheManager,
		fetcher: fanout.NewFetcher(fanout.Config{
			MaxConcurrency: cfg.MaxConcurrency,
			Timeout:        cfg.Timeout,
			PageCeiling:    cfg.PageCeiling,
		}, logger),
		logger: logger,
	}, nil
}

func resolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return os.Getenv(EnvAPIKeyFallback)
}

// Close releases the HTTP session. Operations after Close fail with
// ErrClientClosed, as does a second Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	c.closed = true
	if c.refs == 0 {
		c.teardownLocked()
	}

	c.logger.Info().Int("in_flight", c.refs).Msg("Client closed")
	return nil
}

// Cache returns the cache manager, or nil when caching is disabled.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
