// Package client provides the Flickr REST request pipeline: OAuth1 signing,
// response caching, normalization and error classification.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/flickr-client/pkg/cache"
	"github.com/Sternrassler/flickr-client/pkg/metrics"
	"github.com/Sternrassler/flickr-client/pkg/oauth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Flickr client operations.
var (
	flickrRequestsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "flickr_requests_total",
		Help: "Total Flickr API requests by method and status",
	}, []string{"method", "status"})

	flickrRequestDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flickr_request_duration_seconds",
		Help:    "Flickr API request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	flickrErrorsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "flickr_errors_total",
		Help: "Total Flickr API errors by class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the Flickr services root.
	DefaultBaseURL = "https://api.flickr.com/services"

	// DefaultHTTPTimeout applies when Config.HTTPClient is nil.
	DefaultHTTPTimeout = 30 * time.Second
)

// Client is the Flickr REST client. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	consumer   *oauth.Consumer
	tokens     oauth.TokenStore
	cache      cache.Store
	cacheTTL   time.Duration
	baseURL    string
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// APIKey and APISecret identify the application (REQUIRED)
	APIKey    string
	APISecret string

	// ProxyBaseURL replaces DefaultBaseURL for every request when set
	ProxyBaseURL string

	// Tokens supplies the access token. Nil or empty means anonymous calls.
	Tokens oauth.TokenStore

	// Cache stores raw responses of read requests. Nil disables caching.
	Cache    cache.Store
	CacheTTL time.Duration

	// HTTPClient overrides the default client (timeout HTTPTimeout)
	HTTPClient  *http.Client
	HTTPTimeout time.Duration

	Logger *zerolog.Logger
}

// DefaultConfig returns an uncached, anonymous configuration.
func DefaultConfig(apiKey, apiSecret string) Config {
	return Config{
		APIKey:      apiKey,
		APISecret:   apiSecret,
		CacheTTL:    cache.DefaultTTL,
		HTTPTimeout: DefaultHTTPTimeout,
	}
}

// New creates a new Flickr client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("api secret is required")
	}

	logger := log.With().Str("component", "flickr-client").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "flickr-client").Logger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := DefaultBaseURL
	if cfg.ProxyBaseURL != "" {
		baseURL = strings.TrimRight(cfg.ProxyBaseURL, "/")
	}

	tokens := cfg.Tokens
	if tokens == nil {
		tokens = oauth.NewMemoryTokenStore()
	}

	consumer, err := oauth.NewConsumer(oauth.ConsumerConfig{
		Key:        cfg.APIKey,
		Secret:     cfg.APISecret,
		BaseURL:    baseURL,
		Store:      tokens,
		HTTPClient: httpClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	return &Client{
		httpClient: httpClient,
		consumer:   consumer,
		tokens:     tokens,
		cache:      cfg.Cache,
		cacheTTL:   ttl,
		baseURL:    baseURL,
		logger:     logger,
	}, nil
}

// BaseURL returns the services root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Consumer returns the OAuth consumer, for running the authorization flow.
func (c *Client) Consumer() *oauth.Consumer {
	return c.consumer
}

// CacheEnabled reports whether read requests are cached.
func (c *Client) CacheEnabled() bool {
	return c.cache != nil
}

// Request sends method with params and returns the normalized response.
// Unless bypassCache is set, a cached response is returned without any
// network call and a successful response is cached. Write methods must
// bypass the cache.
func (c *Client) Request(ctx context.Context, method string, params Params, bypassCache bool) (Response, error) {
	method = QualifyMethod(method)
	values := params.Values()

	startTime := time.Now()
	defer func() {
		flickrRequestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}()

	var cacheKey string
	if !bypassCache && c.cache != nil {
		cacheKey = cache.Key{Method: method, Params: flatten(values)}.String()

		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().
				Str("method", method).
				Str("cache_key", cacheKey).
				Dur("ttl", entry.TTL()).
				Msg("Cache hit")
			resp, err := Normalize(entry.Data)
			if err != nil {
				return nil, c.fail(method, err)
			}
			flickrRequestsTotal.WithLabelValues(method, "cache_hit").Inc()
			return resp, nil
		case cache.IsMiss(err):
			c.logger.Debug().Str("method", method).Str("cache_key", cacheKey).Msg("Cache miss")
		default:
			c.logger.Warn().Err(err).Str("method", method).Msg("Cache get error")
		}
	}

	body, err := c.send(ctx, method, values)
	if err != nil {
		return nil, c.fail(method, err)
	}

	resp, err := Normalize(body)
	if err != nil {
		return nil, c.fail(method, err)
	}

	if cacheKey != "" {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.Warn().Err(err).Str("method", method).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("method", method).
				Str("cache_key", cacheKey).
				Dur("ttl", c.cacheTTL).
				Msg("Cached response")
		}
	}

	flickrRequestsTotal.WithLabelValues(method, "ok").Inc()
	return resp, nil
}

// Call is the generic entry point for any API method. It reports false
// when the response holds nothing besides stat.
func (c *Client) Call(ctx context.Context, method string, params Params) (Response, bool, error) {
	resp, err := c.Request(ctx, method, params, false)
	if err != nil {
		return nil, false, err
	}
	return resp, !resp.IsEmpty(), nil
}

// SignedForm returns params with the OAuth1 parameters and signature for a
// POST to endpoint added, using the stored access token.
func (c *Client) SignedForm(ctx context.Context, endpoint string, params url.Values) (url.Values, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	form := make(url.Values, len(params)+8)
	for k, v := range params {
		form[k] = append([]string(nil), v...)
	}
	form.Set("api_key", c.consumer.Key())

	if err := c.consumer.SignForm(token, http.MethodPost, endpoint, form); err != nil {
		return nil, &AuthError{Err: err}
	}
	return form, nil
}

func (c *Client) send(ctx context.Context, method string, values url.Values) ([]byte, error) {
	params := make(url.Values, len(values)+4)
	for k, v := range values {
		params[k] = v
	}
	params.Set("method", method)
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")

	endpoint := c.baseURL + "/rest/"
	form, err := c.SignedForm(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("method", method).Msg("Executing Flickr request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if authErr := RejectedAuth(resp.StatusCode, body); authErr != nil {
		return nil, authErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Method: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	return body, nil
}

func (c *Client) token(ctx context.Context) (oauth.Token, error) {
	token, err := c.tokens.Token(ctx, oauth.DefaultService)
	if errors.Is(err, oauth.ErrNoToken) {
		return oauth.Token{}, nil
	}
	if err != nil {
		return oauth.Token{}, &AuthError{Problem: "token_unavailable", Err: err}
	}
	return token, nil
}

// fail records err and returns it.
func (c *Client) fail(method string, err error) error {
	class := Classify(err)
	flickrErrorsTotal.WithLabelValues(string(class)).Inc()
	flickrRequestsTotal.WithLabelValues(method, string(class)).Inc()

	event := c.logger.Error()
	if class == ErrorClassService {
		event = c.logger.Debug()
	}
	event.Err(err).Str("method", method).Str("error_class", string(class)).Msg("Flickr request failed")
	return err
}

// QualifyMethod adds the "flickr." namespace to method when missing.
func QualifyMethod(method string) string {
	if strings.HasPrefix(method, cache.MethodPrefix) {
		return method
	}
	return cache.MethodPrefix + method
}

// RejectedAuth returns the AuthError for a response the OAuth layer
// rejected: an oauth_problem body or HTTP 401. Otherwise it returns nil.
func RejectedAuth(statusCode int, body []byte) *AuthError {
	problem := OAuthProblem(body)
	if problem == "" && statusCode != http.StatusUnauthorized {
		return nil
	}
	return &AuthError{Problem: problem, Err: fmt.Errorf("status %d", statusCode)}
}

// OAuthProblem extracts the oauth_problem value from a form-encoded error body.
func OAuthProblem(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte("oauth_problem=")) {
		return ""
	}
	values, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return "unknown"
	}
	return values.Get("oauth_problem")
}
