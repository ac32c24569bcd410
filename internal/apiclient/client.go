package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"warimas-storefront/internal/logger"
	"warimas-storefront/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DeviceIDHeader = "X-Device-Id"

// TokenSource is the session the client reads its credentials from.
type TokenSource interface {
	Token() string
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	DeviceID(ctx context.Context) (string, error)
}

// API is the request surface the domain services depend on. *Client implements it.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Config struct {
	// Name tags log lines, e.g. "storefront" or "admin".
	Name    string
	BaseURL string
	// RefreshURL defaults to BaseURL + "/auth/refresh".
	RefreshURL string
	// Timeout of zero means requests never time out on their own.
	Timeout time.Duration

	// RateLimit of zero disables the outbound limiter.
	RateLimit rate.Limit
	Burst     int

	Transport http.RoundTripper
	Jar       http.CookieJar

	// Refresher is shared by clients over the same session. Nil gives the
	// client one of its own.
	Refresher *Refresher

	// OnSessionExpired runs after a failed refresh once the session was cleared.
	OnSessionExpired func()
}

// Client speaks the REST API: bearer auth, device id, one refresh-and-retry on
// 401 and envelope unwrapping. Storefront and admin clients are both built by New.
type Client struct {
	cfg        Config
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	refresher  *Refresher
	stats      metrics.ClientStats
}

func New(cfg Config, tokens TokenSource) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RefreshURL == "" {
		cfg.RefreshURL = cfg.BaseURL + "/auth/refresh"
	}
	if cfg.Name == "" {
		cfg.Name = "api"
	}
	if cfg.Refresher == nil {
		cfg.Refresher = NewRefresher()
	}

	c := &Client{
		cfg:       cfg,
		tokens:    tokens,
		refresher: cfg.Refresher,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: logger.NewTransport(cfg.Transport),
			Jar:       cfg.Jar,
		},
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}
	return c
}

func (c *Client) BaseURL() string { return c.cfg.BaseURL }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one API call and decodes the data field of the reply into out
// (which may be nil). A 401 triggers at most one refresh and one retry.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	timer := metrics.StartTimer()
	err := c.do(ctx, method, path, query, body, out)
	c.stats.Observe(timer, err)
	return err
}

// Stats reports the calls made so far.
func (c *Client) Stats() metrics.Snapshot { return c.stats.Snapshot() }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "apiclient"),
		zap.String("client", c.cfg.Name),
		zap.String("method", method),
		zap.String("path", path),
	)

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to encode request body", zap.Error(err))
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	target := c.url(path, query)
	token := c.tokens.Token()

	status, respBody, err := c.send(ctx, method, target, payload, token)
	if err != nil {
		log.Error("request failed", zap.Error(err))
		return err
	}

	// an anonymous 401 (bad credentials on login) is final
	if status == http.StatusUnauthorized && token != "" && target != c.cfg.RefreshURL {
		log.Info("access token rejected, refreshing")
		newToken, err := c.refresh(ctx, token)
		if err != nil {
			return err
		}
		status, respBody, err = c.send(ctx, method, target, payload, newToken)
		if err != nil {
			log.Error("retry failed", zap.Error(err))
			return err
		}
	}

	if err := decodeResponse(status, respBody, out); err != nil {
		log.Warn("api error", zap.Int("status", status), zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte, token string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	deviceID, err := c.tokens.DeviceID(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("device id: %w", err)
	}
	req.Header.Set(DeviceIDHeader, deviceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}
