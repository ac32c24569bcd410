package session

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

// Jar is an http.CookieJar backed by the session, so the http-only refresh
// cookie outlives a single CLI invocation. The client talks to one API host,
// so cookies are not partitioned by domain.
type Jar struct {
	s *Session
}

func (s *Session) Jar() *Jar {
	return &Jar{s: s}
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	set := make(map[string]string)
	var drop []string
	now := time.Now()

	for _, c := range cookies {
		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now))
		if expired || c.Value == "" {
			drop = append(drop, c.Name)
			continue
		}
		set[c.Name] = c.Value
	}
	if len(set) == 0 && len(drop) == 0 {
		return
	}

	if err := j.s.setCookies(context.Background(), set, drop); err != nil {
		logger.L().Error("failed to persist cookies", zap.String("host", u.Host), zap.Error(err))
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	stored := j.s.cookies()
	out := make([]*http.Cookie, 0, len(stored))
	for name, value := range stored {
		out = append(out, &http.Cookie{Name: name, Value: value})
	}
	return out
}
