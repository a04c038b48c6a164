// Package fetch performs single-request HTTP GETs against provider APIs with
// a bounded timeout-only retry policy, a per-host circuit breaker, and an
// optional on-disk response cache.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/AScotM/vilnius-weather-gui-test/internal/cache"
	"github.com/AScotM/vilnius-weather-gui-test/internal/observability"
)

// Request failure categories. Callers classify with errors.Is.
var (
	// ErrInvalidURL marks a request target that was rejected before any I/O.
	ErrInvalidURL = errors.New("invalid request URL")

	// ErrTimeout marks a request whose every attempt timed out.
	ErrTimeout = errors.New("request timed out")

	// ErrTransport marks a non-timeout network or HTTP-status failure.
	ErrTransport = errors.New("transport error")

	// ErrDecode marks a 2xx response whose body is not valid JSON.
	ErrDecode = errors.New("response is not valid JSON")
)

const userAgent = "Mozilla/5.0 (compatible; WeatherApp/1.0)"

// Config bundles the fetch policy knobs. The defaults match the provider rate
// limits this engine is tuned for; tests shrink them.
type Config struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration

	// MaxAttempts caps attempts per call. Only timeouts are retried.
	MaxAttempts int

	// RetryDelay is the pause between a timed-out attempt and the next one.
	RetryDelay time.Duration
}

// DefaultConfig returns the production fetch policy.
func DefaultConfig() Config {
	return Config{
		Timeout:     15 * time.Second,
		MaxAttempts: 2,
		RetryDelay:  time.Second,
	}
}

// Client issues GETs with retries, circuit breaking, and caching. Safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
	cache      *cache.Cache
	clock      clockwork.Clock
	logger     zerolog.Logger
	metrics    *observability.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// Option customizes a Client.
type Option func(*Client)

// WithClock swaps the time source used for retry pauses, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// NewClient builds a fetch client. respCache may be nil to disable caching;
// the client behaves identically aside from hitting the network every time.
func NewClient(cfg Config, respCache *cache.Cache, metrics *observability.Metrics, logger zerolog.Logger, opts ...Option) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		cache:      respCache,
		clock:      clockwork.NewRealClock(),
		logger:     logger,
		metrics:    metrics,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches rawURL with the given query parameters and returns the raw JSON
// body. The cache, when present, is consulted first and populated on success.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	key := cache.Key(rawURL, params)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			c.metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.logger.Debug().Str("url", rawURL).Msg("cache hit")
			return data, nil
		}
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	fullURL := rawURL
	if len(params) > 0 {
		fullURL = rawURL + "?" + params.Encode()
	}

	parsed, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	cb := c.breakerFor(parsed.Host)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.doAttempt(ctx, fullURL, cb)
		if err == nil {
			if !json.Valid(body) {
				return nil, fmt.Errorf("%w: %s", ErrDecode, fullURL)
			}
			if c.cache != nil {
				c.cache.Put(key, body)
			}
			return body, nil
		}

		if errors.Is(err, ErrTransport) {
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		if !isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}

		lastErr = err
		if attempt == c.cfg.MaxAttempts {
			break
		}

		c.metrics.FetchRetries.Inc()
		c.logger.Debug().Str("url", rawURL).Int("attempt", attempt).Msg("timeout, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(c.cfg.RetryDelay):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrTimeout, c.cfg.MaxAttempts, lastErr)
}

func (c *Client) doAttempt(ctx context.Context, fullURL string, cb *gobreaker.CircuitBreaker) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: status %d from %s", ErrTransport, resp.StatusCode, fullURL)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrTransport)
	}
	return body, nil
}

// breakerFor returns the circuit breaker for a provider host, creating it on
// first use so failures in one provider never trip the others.
func (c *Client) breakerFor(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	c.breakers[host] = cb
	return cb
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
