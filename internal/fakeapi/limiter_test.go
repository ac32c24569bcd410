package fakeapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	s := New(Options{Seed: true, RateLimit: true})
	bad := map[string]string{"email": CustomerEmail, "password": "wrong"}

	statuses := make([]int, 0, burstStrict+1)
	for i := 0; i <= burstStrict; i++ {
		rec, _ := do(t, s, call{method: http.MethodPost, path: "/api/auth/login", device: "dev-spam", body: bad})
		statuses = append(statuses, rec.Code)
	}
	for _, st := range statuses[:burstStrict] {
		assert.Equal(t, http.StatusUnauthorized, st)
	}

	rec, env := do(t, s, call{method: http.MethodPost, path: "/api/auth/login", device: "dev-spam", body: bad})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", env.Message)

	t.Run("Other tiers and devices keep their budget", func(t *testing.T) {
		rec, _ := do(t, s, call{method: http.MethodGet, path: "/api/products", device: "dev-spam"})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = do(t, s, call{method: http.MethodPost, path: "/api/auth/login", device: "dev-other", body: bad})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimit_Off(t *testing.T) {
	s := New(Options{Seed: true})
	for i := 0; i < burstStrict*2; i++ {
		rec, _ := do(t, s, call{method: http.MethodPost, path: "/api/auth/refresh", device: "dev-1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Now()
	l := newRateLimiter()
	l.now = func() time.Time { return now }

	l.get("device:a:general", limitGeneral, burstGeneral)
	l.get("device:b:general", limitGeneral, burstGeneral)
	assert.Equal(t, 2, l.size())

	now = now.Add(visitorTTL + 2*time.Minute)
	l.get("device:c:general", limitGeneral, burstGeneral)
	assert.Equal(t, 1, l.size())
}
