package catalog

import (
	"context"
	"net/url"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Search(ctx context.Context, q Query) (*Page[Product], error)
	Get(ctx context.Context, id string) (*Product, error)
	Categories(ctx context.Context) ([]Category, error)
	Recent() *RecentlyViewed
}

type service struct {
	api    apiclient.API
	recent *RecentlyViewed
}

func NewService(api apiclient.API, recent *RecentlyViewed) Service {
	if recent == nil {
		recent = NewRecentlyViewed(DefaultRecentlyViewedSize)
	}
	return &service{api: api, recent: recent}
}

func (s *service) Search(ctx context.Context, q Query) (*Page[Product], error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SearchProducts"),
		zap.String("keyword", q.Keyword),
	)

	if err := q.Validate(); err != nil {
		log.Warn("invalid query", zap.Error(err))
		return nil, err
	}

	var page Page[Product]
	if err := s.api.Get(ctx, "/products", q.Values(), &page); err != nil {
		log.Error("failed to search products", zap.Error(err))
		return nil, err
	}

	log.Debug("search done", zap.Int("count", len(page.Items)), zap.Int("total", page.Total))
	return &page, nil
}

// Get loads one product and records it as recently viewed.
func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetProduct"),
		zap.String("product_id", id),
	)

	if id == "" {
		return nil, ErrProductIDRequired
	}

	var p Product
	if err := s.api.Get(ctx, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		if apiclient.IsNotFound(err) {
			s.recent.Remove(id)
		}
		log.Warn("failed to get product", zap.Error(err))
		return nil, err
	}

	s.recent.Add(p)
	return &p, nil
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.api.Get(ctx, "/categories", nil, &out); err != nil {
		logger.FromCtx(ctx).Error("failed to list categories",
			zap.String("layer", "service"),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

func (s *service) Recent() *RecentlyViewed {
	return s.recent
}
