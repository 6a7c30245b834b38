// Package httpclient is the authenticated request client for the TaskFlow
// API. Every call attaches the stored access token when one exists and, on a
// 401, transparently refreshes the token once and replays the request.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/taskflow/client/internal/core/ports"
	"github.com/taskflow/client/internal/infrastructure/metrics"
)

const (
	defaultPrefix         = "/api/v1"
	defaultRefreshTimeout = 30 * time.Second
	maxBodyBytes          = 10 << 20

	HeaderRequestID = "X-Request-ID"
)

// Config captures where the API lives.
type Config struct {
	BaseURL string
	Prefix  string
	// Timeout bounds a single exchange. Zero leaves the transport default.
	Timeout time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registers the session that is told about refreshed and
// expired tokens.
func WithObserver(o ports.SessionObserver) Option {
	return func(c *Client) { c.observer = o }
}

// WithSharedRefresh collapses concurrent refreshes into a single in-flight
// call whose result every waiter reuses. Without it each request that hits a
// 401 runs its own refresh.
func WithSharedRefresh() Option {
	return func(c *Client) { c.shared = true }
}

// Client implements ports.APIClient.
type Client struct {
	base   *url.URL
	http   *http.Client
	store  ports.CredentialStore
	log    zerolog.Logger
	shared bool
	group  singleflight.Group

	// refreshTimeout bounds a shared refresh, which runs detached from the
	// caller that started it.
	refreshTimeout time.Duration

	mu       sync.RWMutex
	observer ports.SessionObserver
}

// New builds a Client for cfg.BaseURL + cfg.Prefix.
func New(cfg Config, store ports.CredentialStore, log zerolog.Logger, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("httpclient: credential store is required")
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.Trim(prefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("httpclient: base url %q must be absolute", cfg.BaseURL)
	}

	c := &Client{
		base:  base,
		store: store,
		log:   log.With().Str("component", "httpclient").Logger(),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		refreshTimeout: defaultRefreshTimeout,
	}
	if cfg.Timeout > 0 {
		c.refreshTimeout = cfg.Timeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetObserver registers o after construction, for wiring where the observer
// itself depends on the client.
func (c *Client) SetObserver(o ports.SessionObserver) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// Send dispatches spec, attaching the stored access token when present, and
// applies the single-retry refresh protocol on a 401.
func (c *Client) Send(ctx context.Context, spec ports.RequestSpec) (*ports.Response, error) {
	body, err := encodeBody(spec.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", spec.Method, spec.Path, err)
	}

	creds, err := c.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	p := policy{
		send: func(ctx context.Context, a attempt) (*ports.Response, error) {
			return c.dispatch(ctx, spec, body, a)
		},
		refresh:     c.refreshAccessToken,
		refreshable: !spec.NoRefresh,
	}

	resp, state, err := p.run(ctx, attempt{bearer: creds.AccessToken})
	metrics.RetryOutcomes.WithLabelValues(state.String()).Inc()
	if state == StateRetriedSuccess || state == StateRetriedFailure {
		c.log.Debug().
			Str("method", spec.Method).
			Str("path", spec.Path).
			Str("state", state.String()).
			Msg("request resubmitted after token refresh")
	}
	return resp, err
}

// Refresh exchanges the stored refresh token for a new access token with the
// same semantics as the automatic path: the store and the observer are
// updated on success, and both are cleared on failure.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refreshAccessToken(ctx)
}

func (c *Client) dispatch(ctx context.Context, spec ports.RequestSpec, body []byte, a attempt) (*ports.Response, error) {
	req, err := c.newRequest(ctx, spec.Method, spec.Path, spec.Query, body)
	if err != nil {
		return nil, err
	}
	if a.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+a.bearer)
	}
	return c.do(req, spec.Path)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, path string) (*ports.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	metrics.RequestDuration.WithLabelValues(req.Method).Observe(elapsed.Seconds())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(req.Method, "error").Inc()
		c.log.Debug().Err(err).Str("method", req.Method).Str("path", path).Msg("api request failed")
		return nil, networkError(req.Method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(req.Method, "error").Inc()
		return nil, networkError(req.Method, path, err)
	}

	metrics.RequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Msg("api request")

	return &ports.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) currentObserver() ports.SessionObserver {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.observer
}

func encodeBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
