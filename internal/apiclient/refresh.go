package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

type refreshResult struct {
	token string
	err   error
}

type refreshData struct {
	AccessToken string `json:"accessToken"`
}

// Refresher keeps one refresh call in flight for every client sharing a
// session. It remembers the token the last failed refresh was made for, so a
// late 401 on that token expires without a second refresh.
type Refresher struct {
	mu        sync.Mutex
	running   bool
	waiters   []chan refreshResult
	failed    string
	failedErr error
}

func NewRefresher() *Refresher {
	return &Refresher{}
}

// refresh returns a token newer than rejected. Concurrent callers wait for the
// result of the refresh already in flight.
func (c *Client) refresh(ctx context.Context, rejected string) (string, error) {
	r := c.refresher

	r.mu.Lock()
	if r.running {
		ch := make(chan refreshResult, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if r.failed != "" && r.failed == rejected {
		err := r.failedErr
		r.mu.Unlock()
		return "", err
	}
	// another request already refreshed after ours was rejected
	if cur := c.tokens.Token(); cur != "" && cur != rejected {
		r.mu.Unlock()
		return cur, nil
	}
	r.running = true
	r.mu.Unlock()

	// the refreshed token serves every waiter, so the caller's cancellation
	// must not abort it
	token, err := c.doRefresh(context.WithoutCancel(ctx))
	c.stats.ObserveRefresh(err)
	if err != nil {
		c.expire(ctx, err)
		err = fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	r.mu.Lock()
	if err != nil {
		r.failed, r.failedErr = rejected, err
	} else {
		r.failed, r.failedErr = "", nil
	}
	waiters := r.waiters
	r.waiters = nil
	r.running = false
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}
	return token, err
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "apiclient"),
		zap.String("client", c.cfg.Name),
		zap.String("method", "Refresh"),
	)
	log.Debug("start refresh")

	status, body, err := c.send(ctx, http.MethodPost, c.cfg.RefreshURL, []byte("{}"), "")
	if err != nil {
		log.Error("refresh request failed", zap.Error(err))
		return "", err
	}

	var data refreshData
	if err := decodeResponse(status, body, &data); err != nil {
		log.Warn("refresh rejected", zap.Int("status", status), zap.Error(err))
		return "", err
	}
	if data.AccessToken == "" {
		log.Warn("refresh returned no token")
		return "", ErrEmptyRefreshToken
	}

	if err := c.tokens.SetToken(ctx, data.AccessToken); err != nil {
		// in-memory token is already updated
		log.Warn("refreshed token not persisted", zap.Error(err))
	}

	log.Info("success refresh")
	return data.AccessToken, nil
}

func (c *Client) expire(ctx context.Context, cause error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "apiclient"),
		zap.String("client", c.cfg.Name),
	)
	log.Warn("session expired", zap.Error(cause))

	if err := c.tokens.Clear(ctx); err != nil {
		log.Error("failed to clear session", zap.Error(err))
	}
	if c.cfg.OnSessionExpired != nil {
		c.cfg.OnSessionExpired()
	}
}
