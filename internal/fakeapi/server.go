// Package fakeapi is an in-memory implementation of the storefront REST and
// websocket API for local development and tests.
package fakeapi

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"warimas-storefront/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	DefaultShippingFee = 20000
	DefaultAccessTTL   = 15 * time.Minute

	refreshCookie = "refresh_token"
)

type Options struct {
	JWTSecret   string
	AccessTTL   time.Duration
	ShippingFee int64
	// Seed loads the demo accounts, catalog and coupons.
	Seed bool
	// RateLimit throttles each device (or IP) per endpoint tier.
	RateLimit bool
}

type Server struct {
	opts   Options
	secret []byte
	engine *gin.Engine

	mu         sync.Mutex
	seq        int
	generation int
	users      map[string]*userRecord // by id
	refresh    map[string]refreshSession
	categories []*categoryRecord
	products   []*productRecord
	cart       []*cartLine
	coupons    []*couponRecord
	orders     []*orderRecord
	favorites  map[string][]string // user id -> product ids

	refreshCalls atomic.Int64
	hub          *hub
}

type refreshSession struct {
	UserID   string
	DeviceID string
}

func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev-secret"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.ShippingFee == 0 {
		opts.ShippingFee = DefaultShippingFee
	}

	s := &Server{
		opts:      opts,
		secret:    []byte(opts.JWTSecret),
		users:     make(map[string]*userRecord),
		refresh:   make(map[string]refreshSession),
		favorites: make(map[string][]string),
		hub:       newHub(),
	}
	if opts.Seed {
		s.seed()
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// RefreshCalls counts POST /auth/refresh requests received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// RevokeAccessTokens invalidates every access token issued so far. Refresh
// cookies stay valid.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if s.opts.RateLimit {
		r.Use(newRateLimiter().middleware())
	}

	api := r.Group("/api")
	{
		api.POST("/auth/login", s.login)
		api.POST("/auth/refresh", s.refreshToken)
		api.POST("/auth/logout", s.logout)

		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)
		api.GET("/categories", s.listCategories)
	}

	authed := api.Group("", s.requireUser())
	{
		authed.GET("/users/me", s.me)

		authed.GET("/carts", s.getCart)
		authed.POST("/carts/add", s.addToCart)
		authed.PUT("/carts/:id", s.updateCartItem)
		authed.PATCH("/carts/:id", s.updateCartItem)
		authed.DELETE("/carts/:id", s.removeCartItem)
		authed.POST("/carts/preview-checkout", s.previewCheckout)

		authed.GET("/coupons/my-coupons", s.myCoupons)

		authed.POST("/orders/checkout-cod", s.checkoutCOD)
		authed.GET("/orders/my-orders", s.myOrders)
		authed.GET("/orders/:id", s.getOrder)
		authed.PUT("/orders/:id/cancel", s.cancelOrder)

		authed.GET("/favorites", s.listFavorites)
		authed.POST("/favorites/:productId", s.addFavorite)
		authed.DELETE("/favorites/:productId", s.removeFavorite)
	}

	admin := api.Group("/admin", s.requireUser(), requireAdmin())
	{
		admin.GET("/products", s.listProducts)
		admin.POST("/products", s.adminCreateProduct)
		admin.PUT("/products/:id", s.adminUpdateProduct)
		admin.DELETE("/products/:id", s.adminDeleteProduct)

		admin.GET("/categories", s.listCategories)
		admin.POST("/categories", s.adminCreateCategory)
		admin.DELETE("/categories/:id", s.adminDeleteCategory)

		admin.GET("/users", s.adminListUsers)
		admin.PUT("/users/:id/role", s.adminSetRole)
		admin.PUT("/users/:id/lock", s.adminSetLocked)

		admin.GET("/orders", s.adminListOrders)
		admin.PUT("/orders/:id/status", s.adminSetOrderStatus)

		admin.GET("/coupons", s.adminListCoupons)
		admin.POST("/coupons", s.adminCreateCoupon)
		admin.DELETE("/coupons/:id", s.adminDeleteCoupon)
	}

	r.GET("/ws", s.serveWS)
	return r
}

// nextID must be called with mu held.
func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.L().Debug("HTTP Request",
			zap.String("layer", "fakeapi"),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetHeader(logger.RequestIDHeader)),
			zap.String("user_id", c.GetString(ctxUserID)),
		)
	}
}
