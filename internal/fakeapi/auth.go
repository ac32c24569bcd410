package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	deviceHeader = "X-Device-Id"
)

// bearerToken reads the access token from the Authorization header, falling
// back to the token query parameter used by websocket clients.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// roleClaims reports the role in the user's legacy shape.
func roleClaims(u *userRecord) map[string]any {
	switch u.RoleShape {
	case "roles":
		return map[string]any{"roles": []string{"ROLE_" + u.Role}}
	case "authorities":
		return map[string]any{"authorities": []map[string]string{{"authority": "ROLE_" + u.Role}}}
	case "isAdmin":
		return map[string]any{"isAdmin": u.Role == "ADMIN"}
	default:
		return map[string]any{"role": u.Role}
	}
}

func userView(u *userRecord) gin.H {
	h := gin.H{
		"id":       u.ID,
		"email":    u.Email,
		"fullName": u.FullName,
		"phone":    u.Phone,
		"locked":   u.Locked,
	}
	for k, v := range roleClaims(u) {
		h[k] = v
	}
	return h
}

// issueAccess must be called with mu held.
func (s *Server) issueAccess(u *userRecord) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"gen":   s.generation,
		"iat":   now.Unix(),
		"exp":   now.Add(s.opts.AccessTTL).Unix(),
	}
	for k, v := range roleClaims(u) {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// authenticate must be called with mu held.
func (s *Server) authenticate(token string) (*userRecord, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, false
	}
	if gen, _ := claims["gen"].(float64); int(gen) != s.generation {
		return nil, false
	}
	sub, _ := claims.GetSubject()
	u, found := s.users[sub]
	if !found || u.Locked {
		return nil, false
	}
	return u, true
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		u, valid := s.authenticate(bearerToken(c.Request))
		s.mu.Unlock()

		if !valid {
			fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Set(ctxUserID, u.ID)
		c.Set(ctxRole, u.Role)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != "ADMIN" {
			fail(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func (s *Server) setRefreshCookie(c *gin.Context, userID string) {
	token := uuid.NewString()
	s.refresh[token] = refreshSession{UserID: userID, DeviceID: c.GetHeader(deviceHeader)}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, token, int((7 * 24 * time.Hour).Seconds()), "/", "", false, true)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var u *userRecord
	for _, candidate := range s.users {
		if strings.EqualFold(candidate.Email, req.Email) {
			u = candidate
			break
		}
	}
	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if u.Locked {
		fail(c, http.StatusForbidden, "Account is locked")
		return
	}

	access, err := s.issueAccess(u)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	s.setRefreshCookie(c, u.ID)

	ok(c, http.StatusOK, "Login successful", gin.H{"accessToken": access, "user": userView(u)})
}

func (s *Server) refreshToken(c *gin.Context) {
	s.refreshCalls.Add(1)

	cookie, err := c.Cookie(refreshCookie)
	if err != nil || cookie == "" {
		fail(c, http.StatusUnauthorized, "Missing refresh token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, found := s.refresh[cookie]
	if !found {
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	if sess.DeviceID != "" && sess.DeviceID != c.GetHeader(deviceHeader) {
		fail(c, http.StatusUnauthorized, "Refresh token was issued to another device")
		return
	}
	u, found := s.users[sess.UserID]
	if !found || u.Locked {
		delete(s.refresh, cookie)
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	access, err := s.issueAccess(u)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	delete(s.refresh, cookie)
	s.setRefreshCookie(c, u.ID)

	ok(c, http.StatusOK, "Token refreshed", gin.H{"accessToken": access})
}

func (s *Server) logout(c *gin.Context) {
	if cookie, err := c.Cookie(refreshCookie); err == nil {
		s.mu.Lock()
		delete(s.refresh, cookie)
		s.mu.Unlock()
	}
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
	ok(c, http.StatusOK, "Logged out", nil)
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[c.GetString(ctxUserID)]
	ok(c, http.StatusOK, "", userView(u))
}
