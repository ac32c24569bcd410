package auth

import (
	"context"
	"strings"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/logger"
	"warimas-storefront/internal/user"

	"go.uber.org/zap"
)

// Session is the part of session.Session the auth flow writes to.
type Session interface {
	Token() string
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Service interface {
	Login(ctx context.Context, email, password string) (*user.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*user.User, error)
}

type service struct {
	api     apiclient.API
	session Session
}

func NewService(api apiclient.API, session Session) Service {
	return &service{api: api, session: session}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"accessToken"`
	User        *user.User `json:"user"`
}

func (s *service) Login(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
		zap.String("email", email),
	)

	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	log.Debug("start login")

	var resp loginResponse
	if err := s.api.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		log.Warn("login failed", zap.Error(err))
		return nil, err
	}
	if resp.AccessToken == "" {
		log.Error("login response without token")
		return nil, ErrNoAccessToken
	}

	if err := s.session.SetToken(ctx, resp.AccessToken); err != nil {
		log.Warn("token not persisted", zap.Error(err))
	}

	u := resp.User
	if u == nil {
		var err error
		if u, err = s.Me(ctx); err != nil {
			return nil, err
		}
	}

	log.Info("success login", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Logout always clears the local session; a failed server call is only logged.
func (s *service) Logout(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Logout"),
	)

	if s.session.Token() != "" {
		if err := s.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
			log.Warn("server logout failed, clearing locally", zap.Error(err))
		}
	}

	if err := s.session.Clear(ctx); err != nil {
		log.Error("failed to clear session", zap.Error(err))
		return err
	}

	log.Info("success logout")
	return nil
}

func (s *service) Me(ctx context.Context) (*user.User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Me"),
	)

	if s.session.Token() == "" {
		return nil, ErrNotLoggedIn
	}

	var u user.User
	if err := s.api.Get(ctx, "/users/me", nil, &u); err != nil {
		log.Warn("failed to load profile", zap.Error(err))
		return nil, err
	}
	return &u, nil
}
