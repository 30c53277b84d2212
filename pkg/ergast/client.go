package ergast

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/olerom/formula/pkg/httpclient"
	"golang.org/x/time/rate"
)

// Client fetches season, driver, circuit and constructor lists from the API.
// Each call is one blocking GET; a Client holds no per-call state and may be
// shared between goroutines.
type Client struct {
	http      httpclient.Client
	baseURL   string
	series    string
	userAgent string
	limiter   *rate.Limiter
	log       Logger
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host, e.g. a mirror or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithSeries selects the racing category code used in every URL.
func WithSeries(series string) Option {
	return func(c *Client) {
		if series = strings.TrimSpace(series); series != "" {
			c.series = series
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRateLimiter makes every request wait for a token from l.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient builds a Client on top of client, or a resty client with the
// default timeout when client is nil.
func NewClient(client httpclient.Client, opts ...Option) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}
	c := &Client{
		http:      client,
		baseURL:   DefaultBaseURL,
		series:    DefaultSeries,
		userAgent: DefaultUserAgent,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Drivers returns the drivers of season, or of every season when season is
// Unspecified. limit may go up to 1000; Unspecified means 30. offset skips
// into the result set; Unspecified means 0.
func (c *Client) Drivers(ctx context.Context, season, limit, offset int) ([]Driver, error) {
	body, err := c.fetch(ctx, ResourceDrivers, season, limit, offset)
	if err != nil {
		return nil, err
	}
	return decodeTable[Driver](body, driverTable, driverList)
}

// Circuits returns the circuits used in season. Parameters behave as in Drivers.
func (c *Client) Circuits(ctx context.Context, season, limit, offset int) ([]Circuit, error) {
	body, err := c.fetch(ctx, ResourceCircuits, season, limit, offset)
	if err != nil {
		return nil, err
	}
	return decodeTable[Circuit](normalizeCircuitBody(body), circuitTable, circuitList)
}

// Constructors returns the constructors of season. Parameters behave as in Drivers.
func (c *Client) Constructors(ctx context.Context, season, limit, offset int) ([]Constructor, error) {
	body, err := c.fetch(ctx, ResourceConstructors, season, limit, offset)
	if err != nil {
		return nil, err
	}
	return decodeTable[Constructor](body, constructorTable, constructorList)
}

// Seasons returns championship seasons. Parameters behave as in Drivers.
func (c *Client) Seasons(ctx context.Context, season, limit, offset int) ([]Season, error) {
	body, err := c.fetch(ctx, ResourceSeasons, season, limit, offset)
	if err != nil {
		return nil, err
	}
	return decodeTable[Season](body, seasonTable, seasonList)
}

// URL returns the request URL the client would use for the given query.
func (c *Client) URL(resource Resource, season, limit, offset int) string {
	return BuildURL(c.baseURL, c.series, resource, season, limit, offset)
}

func (c *Client) fetch(ctx context.Context, resource Resource, season, limit, offset int) ([]byte, error) {
	url := c.URL(resource, season, limit, offset)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("get %s: rate limit: %w", resource, err)
		}
	}

	resp, err := c.http.Get(ctx, url, map[string]string{"User-Agent": c.userAgent})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", resource, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode(), Body: bodySnippet(body)}
	}

	c.log.DebugObj("ergast response received", "ergast_response", map[string]any{
		"url":   url,
		"bytes": len(body),
		"page":  readPageMeta(body),
	})
	return body, nil
}

// normalizeCircuitBody renames every occurrence of "long" to "lng" so the
// longitude lands in Location.Lng.
func normalizeCircuitBody(body []byte) []byte {
	return []byte(strings.ReplaceAll(string(body), "long", "lng"))
}
