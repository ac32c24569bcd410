package session

import (
	"context"
	"sync"
	"time"

	"warimas-storefront/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is the single owner of the access token and device id. Network and
// socket clients read the token through it and subscribe to changes instead of
// reading storage themselves.
type Session struct {
	store Store

	mu        sync.RWMutex
	state     State
	listeners map[int]func(token string)
	nextID    int
}

// New loads the persisted state from store.
func New(ctx context.Context, store Store) (*Session, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{
		store:     store,
		state:     st,
		listeners: make(map[int]func(string)),
	}, nil
}

// Token returns the current access token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// SetToken stores a new access token and notifies subscribers when it changed.
// The in-memory token is updated even if persisting fails.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	changed := s.state.AccessToken != token
	s.state.AccessToken = token
	s.state.UpdatedAt = time.Now()
	snapshot := cloneState(s.state)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	err := s.store.Save(ctx, snapshot)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to persist session token", zap.Error(err))
	}

	if changed {
		for _, fn := range listeners {
			fn(token)
		}
	}
	return err
}

// Clear drops the access token and refresh cookies. The device id survives.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state.Cookies = nil
	s.mu.Unlock()
	return s.SetToken(ctx, "")
}

// DeviceID returns the persisted device id, generating one on first use.
func (s *Session) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state.DeviceID != "" {
		id := s.state.DeviceID
		s.mu.Unlock()
		return id, nil
	}
	s.state.DeviceID = uuid.NewString()
	s.state.UpdatedAt = time.Now()
	id := s.state.DeviceID
	snapshot := cloneState(s.state)
	s.mu.Unlock()

	if err := s.store.Save(ctx, snapshot); err != nil {
		return id, err
	}
	logger.FromCtx(ctx).Info("device id generated", zap.String("device_id", id))
	return id, nil
}

// OnTokenChange registers fn to be called with every new token value.
// The returned func removes the subscription.
func (s *Session) OnTokenChange(fn func(token string)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Claims decodes the current token without verifying its signature.
func (s *Session) Claims() (*Claims, error) {
	return ParseClaims(s.Token())
}

func (s *Session) listenersLocked() []func(string) {
	out := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func (s *Session) cookies() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.state.Cookies))
	for k, v := range s.state.Cookies {
		out[k] = v
	}
	return out
}

func (s *Session) setCookies(ctx context.Context, set map[string]string, drop []string) error {
	s.mu.Lock()
	if s.state.Cookies == nil {
		s.state.Cookies = make(map[string]string)
	}
	for k, v := range set {
		s.state.Cookies[k] = v
	}
	for _, k := range drop {
		delete(s.state.Cookies, k)
	}
	s.state.UpdatedAt = time.Now()
	snapshot := cloneState(s.state)
	s.mu.Unlock()

	return s.store.Save(ctx, snapshot)
}
