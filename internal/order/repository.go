package order

import (
	"context"
	"net/url"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, status OrderStatus) ([]Order, error)
	Get(ctx context.Context, id string) (*Order, error)
	Cancel(ctx context.Context, id string) (*Order, error)
}

type repository struct {
	api apiclient.API
}

func NewRepository(api apiclient.API) Repository {
	return &repository{api: api}
}

func (r *repository) List(ctx context.Context, status OrderStatus) ([]Order, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}

	var out []Order
	if err := r.api.Get(ctx, "/orders/my-orders", q, &out); err != nil {
		logger.FromCtx(ctx).Error("failed to fetch orders",
			zap.String("layer", "repository"),
			zap.String("method", "List"),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, err
	}
	normalizeAll(out)
	return out, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := r.api.Get(ctx, "/orders/"+url.PathEscape(id), nil, &o); err != nil {
		logger.FromCtx(ctx).Warn("failed to fetch order",
			zap.String("layer", "repository"),
			zap.String("method", "Get"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	normalize(&o)
	return &o, nil
}

func (r *repository) Cancel(ctx context.Context, id string) (*Order, error) {
	var o Order
	if err := r.api.Put(ctx, "/orders/"+url.PathEscape(id)+"/cancel", nil, &o); err != nil {
		logger.FromCtx(ctx).Error("failed to cancel order",
			zap.String("layer", "repository"),
			zap.String("method", "Cancel"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	normalize(&o)
	return &o, nil
}
