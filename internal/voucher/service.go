package voucher

import (
	"context"
	"net/url"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	// MyCoupons lists the coupons the user can use. An empty class lists both.
	MyCoupons(ctx context.Context, class Class) ([]Coupon, error)
}

type service struct {
	api apiclient.API
}

func NewService(api apiclient.API) Service {
	return &service{api: api}
}

func (s *service) MyCoupons(ctx context.Context, class Class) ([]Coupon, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MyCoupons"),
		zap.String("type", string(class)),
	)

	q := url.Values{}
	if class != "" {
		if !class.Valid() {
			return nil, ErrInvalidClass
		}
		q.Set("type", string(class))
	}

	var out []Coupon
	if err := s.api.Get(ctx, "/coupons/my-coupons", q, &out); err != nil {
		log.Error("failed to fetch coupons", zap.Error(err))
		return nil, err
	}

	log.Debug("success fetch coupons", zap.Int("count", len(out)))
	return out, nil
}
