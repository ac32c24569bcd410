package favorite

import (
	"context"
	"net/url"
	"sync"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Add(ctx context.Context, productID string) error
	Remove(ctx context.Context, productID string) error
	// Contains answers from the ids seen by the last List, Add or Remove.
	Contains(productID string) bool
}

type service struct {
	api apiclient.API

	mu  sync.RWMutex
	ids map[string]bool
}

func NewService(api apiclient.API) Service {
	return &service{api: api, ids: make(map[string]bool)}
}

func (s *service) List(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := s.api.Get(ctx, "/favorites", nil, &out); err != nil {
		logger.FromCtx(ctx).Error("failed to list favorites",
			zap.String("layer", "service"),
			zap.String("method", "List"),
			zap.Error(err),
		)
		return nil, err
	}

	ids := make(map[string]bool, len(out))
	for _, p := range out {
		ids[p.ID] = true
	}
	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
	return out, nil
}

func (s *service) Add(ctx context.Context, productID string) error {
	if productID == "" {
		return ErrProductIDRequired
	}
	if err := s.api.Post(ctx, "/favorites/"+url.PathEscape(productID), nil, nil); err != nil {
		logger.FromCtx(ctx).Warn("failed to add favorite",
			zap.String("layer", "service"),
			zap.String("method", "Add"),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return err
	}

	s.mu.Lock()
	s.ids[productID] = true
	s.mu.Unlock()
	return nil
}

func (s *service) Remove(ctx context.Context, productID string) error {
	if productID == "" {
		return ErrProductIDRequired
	}
	err := s.api.Delete(ctx, "/favorites/"+url.PathEscape(productID), nil)
	if err != nil && !apiclient.IsNotFound(err) {
		logger.FromCtx(ctx).Warn("failed to remove favorite",
			zap.String("layer", "service"),
			zap.String("method", "Remove"),
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return err
	}

	s.mu.Lock()
	delete(s.ids, productID)
	s.mu.Unlock()
	return err
}

func (s *service) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[productID]
}
