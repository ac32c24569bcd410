package order

import (
	"context"

	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	// List returns the user's orders, optionally filtered by status.
	List(ctx context.Context, status OrderStatus) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	// Cancel cancels a pending order. The order is fetched first so a
	// non-pending one is refused without a cancel request.
	Cancel(ctx context.Context, id string) (*Order, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, status OrderStatus) ([]Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, status)
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, ErrOrderIDRequired
	}
	return s.repo.Get(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.String("order_id", id),
	)

	if id == "" {
		return nil, ErrOrderIDRequired
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Cancellable() {
		log.Warn("order not cancellable", zap.String("status", string(current.Status)))
		return nil, ErrNotCancellable
	}

	o, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info("success cancel order", zap.String("code", o.Code))
	return o, nil
}
