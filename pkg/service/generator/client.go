package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
	"github.com/secmon-lab/taproom/pkg/utils/safe"
	"github.com/sony/gobreaker"
)

const maxBodySize = 1 << 20

// Client is the HTTP implementation of Service
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

var _ Service = &Client{}

// Option configures Client
type Option func(*Client)

// WithURL overrides the generator endpoint
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithTimeout bounds every fetch. Zero leaves fetches unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// BreakerSettings tunes the circuit breaker
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive source failures and
// probes again after 30 seconds
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// WithCircuitBreaker makes fetches fail fast with ErrNetwork while the
// source keeps failing. Only network failures count toward tripping.
func WithCircuitBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "generator",
			MaxRequests: 1,
			Timeout:     settings.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !errors.Is(err, model.ErrNetwork)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Default().Warn("circuit breaker state changed",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		})
	}
}

// New creates a generator client
func New(opts ...Option) *Client {
	c := &Client{
		url:        DefaultURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client fetches from
func (c *Client) URL() string {
	return c.url
}

func (c *Client) FetchOne(ctx context.Context) (*model.RawBeer, error) {
	if c.breaker == nil {
		return c.fetch(ctx)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, goerr.Wrap(model.ErrNetwork, "generator circuit is open",
				goerr.V("url", c.url),
				goerr.V("cause", err.Error()))
		}
		return nil, err
	}
	return result.(*model.RawBeer), nil
}

func (c *Client) FetchBatch(ctx context.Context, count int) ([]*model.RawBeer, error) {
	if count < 0 {
		return nil, goerr.Wrap(model.ErrValidation, "count must not be negative", goerr.V("count", count))
	}

	beers := make([]*model.RawBeer, 0, count)
	for i := range count {
		beer, err := c.FetchOne(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch beer batch",
				goerr.V("index", i),
				goerr.V("count", count))
		}
		beers = append(beers, beer)
	}
	return beers, nil
}

func (c *Client) fetch(ctx context.Context) (*model.RawBeer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, goerr.Wrap(model.ErrNetwork, "failed to build generator request",
			goerr.V("url", c.url),
			goerr.V("cause", err.Error()))
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrNetwork, "failed to reach generator",
			goerr.V("url", c.url),
			goerr.V("cause", err.Error()))
	}
	defer safe.CloseBody(ctx, resp.Body, slog.String("url", c.url))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, goerr.Wrap(model.ErrNetwork, "generator returned non-2xx status",
			goerr.V("url", c.url),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	var raw model.RawBeer
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&raw); err != nil {
		return nil, goerr.Wrap(model.ErrFormat, "failed to decode generator response",
			goerr.V("url", c.url),
			goerr.V("cause", err.Error()))
	}

	logging.From(ctx).Debug("fetched beer",
		slog.Int64("id", raw.ID),
		slog.Duration("elapsed", time.Since(started)))

	return &raw, nil
}
