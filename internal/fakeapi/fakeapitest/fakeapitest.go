// Package fakeapitest starts a seeded fakeapi server and hands out clients
// wired to it.
package fakeapitest

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/fakeapi"
	"warimas-storefront/internal/session"

	"github.com/stretchr/testify/require"
)

type Env struct {
	Fake    *fakeapi.Server
	HTTP    *httptest.Server
	Session *session.Session
	API     *apiclient.Client
	Admin   *apiclient.Client
}

// Start runs a seeded server for the duration of the test. The session has
// no token yet.
func Start(t testing.TB) *Env {
	t.Helper()

	fake := fakeapi.New(fakeapi.Options{Seed: true})
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	sess, err := session.New(context.Background(), session.NewMemoryStore(session.State{}))
	require.NoError(t, err)

	base := srv.URL + "/api"
	return &Env{
		Fake:    fake,
		HTTP:    srv,
		Session: sess,
		API:     apiclient.New(apiclient.Config{Name: "storefront", BaseURL: base, Jar: sess.Jar()}, sess),
		Admin: apiclient.New(apiclient.Config{
			Name:       "admin",
			BaseURL:    base + "/admin",
			RefreshURL: base + "/auth/refresh",
			Jar:        sess.Jar(),
		}, sess),
	}
}

// WSURL is the websocket endpoint of the running server.
func (e *Env) WSURL() string {
	return "ws" + strings.TrimPrefix(e.HTTP.URL, "http") + "/ws"
}

// Login signs in through the API and stores the token in the session.
func (e *Env) Login(t testing.TB, email, password string) {
	t.Helper()

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	ctx := context.Background()
	require.NoError(t, e.API.Post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &out))
	require.NotEmpty(t, out.AccessToken)
	require.NoError(t, e.Session.SetToken(ctx, out.AccessToken))
}

func (e *Env) LoginCustomer(t testing.TB) {
	e.Login(t, fakeapi.CustomerEmail, fakeapi.CustomerPassword)
}

func (e *Env) LoginAdmin(t testing.TB) {
	e.Login(t, fakeapi.AdminEmail, fakeapi.AdminPassword)
}
