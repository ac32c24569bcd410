package session

import (
	"encoding/json"
	"fmt"
	"time"

	"warimas-storefront/internal/user"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access token claims the client cares about.
type Claims struct {
	Subject   string
	Email     string
	Role      user.Role
	ExpiresAt time.Time
}

// Expired reports whether the token is past its exp claim. Tokens without exp never expire.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes token without checking its signature; the server is the
// only party that can verify it.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}

	raw, err := json.Marshal(map[string]any(mc))
	if err != nil {
		return nil, err
	}
	c.Role = user.NormalizeRole(raw)

	return c, nil
}
