package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	MemoryStore
}

func (f *failingStore) Save(ctx context.Context, st State) error {
	return errors.New("disk full")
}

func TestSession_Token(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads persisted token", func(t *testing.T) {
		s, err := New(ctx, NewMemoryStore(State{AccessToken: "tok-1", DeviceID: "dev-1"}))
		require.NoError(t, err)
		assert.Equal(t, "tok-1", s.Token())
	})

	t.Run("SetToken persists and notifies", func(t *testing.T) {
		store := NewMemoryStore(State{})
		s, err := New(ctx, store)
		require.NoError(t, err)

		var got []string
		unsubscribe := s.OnTokenChange(func(token string) { got = append(got, token) })

		require.NoError(t, s.SetToken(ctx, "tok-2"))
		require.NoError(t, s.SetToken(ctx, "tok-2"))
		require.NoError(t, s.SetToken(ctx, "tok-3"))

		assert.Equal(t, []string{"tok-2", "tok-3"}, got)

		st, _ := store.Load(ctx)
		assert.Equal(t, "tok-3", st.AccessToken)

		unsubscribe()
		require.NoError(t, s.SetToken(ctx, "tok-4"))
		assert.Len(t, got, 2)
	})

	t.Run("Clear keeps device id", func(t *testing.T) {
		store := NewMemoryStore(State{AccessToken: "tok", DeviceID: "dev", Cookies: map[string]string{"refresh_token": "r"}})
		s, err := New(ctx, store)
		require.NoError(t, err)

		require.NoError(t, s.Clear(ctx))
		assert.Equal(t, "", s.Token())

		st, _ := store.Load(ctx)
		assert.Equal(t, "dev", st.DeviceID)
		assert.Empty(t, st.Cookies)
	})

	t.Run("Token updated in memory when save fails", func(t *testing.T) {
		s, err := New(ctx, &failingStore{})
		require.NoError(t, err)

		err = s.SetToken(ctx, "tok")
		assert.Error(t, err)
		assert.Equal(t, "tok", s.Token())
	})

	t.Run("Concurrent access", func(t *testing.T) {
		s, err := New(ctx, NewMemoryStore(State{}))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.SetToken(ctx, "tok")
				_ = s.Token()
			}()
		}
		wg.Wait()
		assert.Equal(t, "tok", s.Token())
	})
}

func TestSession_DeviceID(t *testing.T) {
	ctx := context.Background()

	t.Run("Generated once", func(t *testing.T) {
		store := NewMemoryStore(State{})
		s, err := New(ctx, store)
		require.NoError(t, err)

		id1, err := s.DeviceID(ctx)
		require.NoError(t, err)
		id2, err := s.DeviceID(ctx)
		require.NoError(t, err)

		assert.NotEmpty(t, id1)
		assert.Equal(t, id1, id2)
		assert.Equal(t, 1, store.Saves())

		st, _ := store.Load(ctx)
		assert.Equal(t, id1, st.DeviceID)
	})

	t.Run("Existing id reused", func(t *testing.T) {
		s, err := New(ctx, NewMemoryStore(State{DeviceID: "dev-fixed"}))
		require.NoError(t, err)

		id, err := s.DeviceID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dev-fixed", id)
	})
}

func TestJar(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(State{})
	s, err := New(ctx, store)
	require.NoError(t, err)

	u, _ := url.Parse("http://api.test/api/auth/refresh")
	jar := s.Jar()

	jar.SetCookies(u, []*http.Cookie{{Name: "refresh_token", Value: "r-1", HttpOnly: true}})
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "r-1", cookies[0].Value)

	st, _ := store.Load(ctx)
	assert.Equal(t, "r-1", st.Cookies["refresh_token"])

	jar.SetCookies(u, []*http.Cookie{{Name: "refresh_token", Value: "gone", Expires: time.Now().Add(-time.Hour)}})
	assert.Empty(t, jar.Cookies(u))
}
