// Package app wires configuration, the session and every client-side service
// into one value the CLI works against.
package app

import (
	"context"
	"database/sql"
	"errors"

	"warimas-storefront/internal/admin"
	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/auth"
	"warimas-storefront/internal/cart"
	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/chat"
	"warimas-storefront/internal/checkout"
	"warimas-storefront/internal/config"
	"warimas-storefront/internal/db"
	"warimas-storefront/internal/events"
	"warimas-storefront/internal/favorite"
	"warimas-storefront/internal/logger"
	"warimas-storefront/internal/order"
	"warimas-storefront/internal/session"
	"warimas-storefront/internal/voucher"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type App struct {
	Config   *config.Config
	Session  *session.Session
	API      *apiclient.Client
	AdminAPI *apiclient.Client
	Events   events.Publisher

	Auth      auth.Service
	Catalog   catalog.Service
	Cart      *cart.Store
	Vouchers  voucher.Service
	Picker    *voucher.Picker
	Checkout  checkout.Service
	Orders    order.Service
	Favorites favorite.Service
	Admin     admin.Service
	Chat      *chat.Client

	store     session.Store
	database  *sql.DB
	onExpired func()
}

type Option func(*App)

// WithSessionStore replaces the store chosen by SESSION_STORE.
func WithSessionStore(st session.Store) Option {
	return func(a *App) { a.store = st }
}

// WithPublisher replaces the publisher chosen by KAFKA_BROKERS.
func WithPublisher(p events.Publisher) Option {
	return func(a *App) { a.Events = p }
}

// OnSessionExpired runs when a refresh fails and the session was cleared.
func OnSessionExpired(fn func()) Option {
	return func(a *App) { a.onExpired = fn }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "app"))

	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		st, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		a.store = st
	}

	sess, err := session.New(ctx, a.store)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Session = sess

	if a.Events == nil {
		if len(cfg.KafkaBrokers) > 0 {
			a.Events = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
		} else {
			a.Events = events.NopPublisher{}
		}
	}

	expired := func() {
		log.Warn("session expired, login required")
		if a.onExpired != nil {
			a.onExpired()
		}
	}
	refresher := apiclient.NewRefresher()
	a.API = apiclient.New(apiclient.Config{
		Name:             "storefront",
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.HTTPTimeout,
		RateLimit:        rate.Limit(cfg.RateLimitRPS),
		Burst:            cfg.RateLimitBurst,
		Jar:              sess.Jar(),
		Refresher:        refresher,
		OnSessionExpired: expired,
	}, sess)
	a.AdminAPI = apiclient.New(apiclient.Config{
		Name:             "admin",
		BaseURL:          cfg.AdminAPIBaseURL,
		RefreshURL:       cfg.APIBaseURL + "/auth/refresh",
		Timeout:          cfg.HTTPTimeout,
		RateLimit:        rate.Limit(cfg.RateLimitRPS),
		Burst:            cfg.RateLimitBurst,
		Jar:              sess.Jar(),
		Refresher:        refresher,
		OnSessionExpired: expired,
	}, sess)

	a.Auth = auth.NewService(a.API, sess)
	a.Catalog = catalog.NewService(a.API, catalog.NewRecentlyViewed(cfg.RecentlyViewedSize))
	a.Cart = cart.NewStore(cart.NewRepository(a.API), a.Events)
	a.Vouchers = voucher.NewService(a.API)
	a.Picker = voucher.NewPicker()
	a.Checkout = checkout.NewService(a.API, a.Cart,
		checkout.WithPublisher(a.Events),
		checkout.AfterSuccess(func(context.Context, *order.Order) {
			a.Picker.Clear(voucher.ClassShipping)
			a.Picker.Clear(voucher.ClassProduct)
		}),
	)
	a.Orders = order.NewService(order.NewRepository(a.API))
	a.Favorites = favorite.NewService(a.API)
	a.Admin = admin.NewService(a.AdminAPI)
	a.Chat = chat.New(chat.Config{URL: cfg.WSURL}, sess)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (session.Store, error) {
	switch a.Config.SessionStore {
	case "postgres":
		database, err := db.Open(ctx, a.Config.DBURL)
		if err != nil {
			return nil, err
		}
		a.database = database
		return session.NewPostgresStore(database, a.Config.SessionProfile), nil
	default:
		return session.NewFileStore(a.Config.SessionFile, a.Config.SessionKey), nil
	}
}

// Close flushes the event sink and releases the database.
func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}
	return errors.Join(errs...)
}
