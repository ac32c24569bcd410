package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warimas-storefront/internal/fakeapi"
	"warimas-storefront/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()

	srv := newServer(os.Getenv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L().Info("mock API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("mock API stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Warn("shutdown", zap.Error(err))
	}
}

func newServer(getenv func(string) string) *http.Server {
	addr := getenv("MOCK_API_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	fake := fakeapi.New(fakeapi.Options{
		JWTSecret: getenv("MOCK_JWT_SECRET"),
		Seed:      getenv("MOCK_SEED") != "false",
		RateLimit: getenv("MOCK_RATE_LIMIT") != "false",
	})
	return &http.Server{
		Addr:              addr,
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
