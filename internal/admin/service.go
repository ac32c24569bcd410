package admin

import (
	"context"
	"net/url"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/logger"
	"warimas-storefront/internal/order"
	"warimas-storefront/internal/user"
	"warimas-storefront/internal/voucher"

	"go.uber.org/zap"
)

// Service is the admin console. It talks to the admin API base.
type Service interface {
	ListProducts(ctx context.Context, q catalog.Query) (*catalog.Page[catalog.Product], error)
	CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]user.User, error)
	SetUserRole(ctx context.Context, id string, role user.Role) (*user.User, error)
	SetUserLocked(ctx context.Context, id string, locked bool) (*user.User, error)

	ListOrders(ctx context.Context, status order.OrderStatus) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.OrderStatus) (*order.Order, error)

	ListCoupons(ctx context.Context) ([]voucher.Coupon, error)
	CreateCoupon(ctx context.Context, in CouponInput) (*voucher.Coupon, error)
	DeleteCoupon(ctx context.Context, id string) error
}

type service struct {
	api apiclient.API
}

func NewService(api apiclient.API) Service {
	return &service{api: api}
}

func logFor(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "admin"),
		zap.String("method", method),
	)
}

func path(parts ...string) string {
	out := ""
	for _, p := range parts {
		out += "/" + url.PathEscape(p)
	}
	return out
}

// -- Products --

func (s *service) ListProducts(ctx context.Context, q catalog.Query) (*catalog.Page[catalog.Product], error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var page catalog.Page[catalog.Product]
	if err := s.api.Get(ctx, "/products", q.Values(), &page); err != nil {
		logFor(ctx, "ListProducts").Error("failed to list products", zap.Error(err))
		return nil, err
	}
	return &page, nil
}

func (s *service) CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error) {
	log := logFor(ctx, "CreateProduct").With(zap.String("name", in.Name))

	if err := in.Validate(); err != nil {
		log.Warn("invalid product", zap.Error(err))
		return nil, err
	}

	var p catalog.Product
	if err := s.api.Post(ctx, "/products", toProductPayload(in), &p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("success create product", zap.String("product_id", p.ID))
	return &p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*catalog.Product, error) {
	log := logFor(ctx, "UpdateProduct").With(zap.String("product_id", id))

	if id == "" {
		return nil, ErrIDRequired
	}
	if err := in.Validate(); err != nil {
		log.Warn("invalid product", zap.Error(err))
		return nil, err
	}

	var p catalog.Product
	if err := s.api.Put(ctx, path("products", id), toProductPayload(in), &p); err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.api.Delete(ctx, path("products", id), nil); err != nil {
		logFor(ctx, "DeleteProduct").Error("failed to delete product", zap.String("product_id", id), zap.Error(err))
		return err
	}
	return nil
}

// -- Categories --

func (s *service) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	if err := s.api.Get(ctx, "/categories", nil, &out); err != nil {
		logFor(ctx, "ListCategories").Error("failed to list categories", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, in CategoryInput) (*catalog.Category, error) {
	if in.Name == "" {
		return nil, ErrCategoryNameRequired
	}
	var cat catalog.Category
	if err := s.api.Post(ctx, "/categories", in, &cat); err != nil {
		logFor(ctx, "CreateCategory").Error("failed to create category", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	return &cat, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.api.Delete(ctx, path("categories", id), nil); err != nil {
		logFor(ctx, "DeleteCategory").Error("failed to delete category", zap.String("category_id", id), zap.Error(err))
		return err
	}
	return nil
}

// -- Users --

func (s *service) ListUsers(ctx context.Context) ([]user.User, error) {
	var out []user.User
	if err := s.api.Get(ctx, "/users", nil, &out); err != nil {
		logFor(ctx, "ListUsers").Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *service) SetUserRole(ctx context.Context, id string, role user.Role) (*user.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if role != user.RoleAdmin && role != user.RoleCustomer {
		return nil, ErrInvalidRole
	}

	var u user.User
	body := map[string]string{"role": string(role)}
	if err := s.api.Put(ctx, path("users", id, "role"), body, &u); err != nil {
		logFor(ctx, "SetUserRole").Error("failed to set role", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (s *service) SetUserLocked(ctx context.Context, id string, locked bool) (*user.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	var u user.User
	body := map[string]bool{"locked": locked}
	if err := s.api.Put(ctx, path("users", id, "lock"), body, &u); err != nil {
		logFor(ctx, "SetUserLocked").Error("failed to set lock", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

// -- Orders --

func (s *service) ListOrders(ctx context.Context, status order.OrderStatus) ([]order.Order, error) {
	q := url.Values{}
	if status != "" {
		if !status.Valid() {
			return nil, order.ErrInvalidStatus
		}
		q.Set("status", string(status))
	}

	var out []order.Order
	if err := s.api.Get(ctx, "/orders", q, &out); err != nil {
		logFor(ctx, "ListOrders").Error("failed to list orders", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id string, status order.OrderStatus) (*order.Order, error) {
	log := logFor(ctx, "UpdateOrderStatus").With(
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)

	if id == "" {
		return nil, ErrIDRequired
	}
	if !status.Valid() {
		return nil, order.ErrInvalidStatus
	}

	var o order.Order
	body := map[string]string{"status": string(status)}
	if err := s.api.Put(ctx, path("orders", id, "status"), body, &o); err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, err
	}

	log.Info("success update order status")
	return &o, nil
}

// -- Coupons --

func (s *service) ListCoupons(ctx context.Context) ([]voucher.Coupon, error) {
	var out []voucher.Coupon
	if err := s.api.Get(ctx, "/coupons", nil, &out); err != nil {
		logFor(ctx, "ListCoupons").Error("failed to list coupons", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *service) CreateCoupon(ctx context.Context, in CouponInput) (*voucher.Coupon, error) {
	log := logFor(ctx, "CreateCoupon").With(zap.String("code", in.Code))

	if err := in.Validate(); err != nil {
		log.Warn("invalid coupon", zap.Error(err))
		return nil, err
	}

	var c voucher.Coupon
	if err := s.api.Post(ctx, "/coupons", toCouponPayload(in), &c); err != nil {
		log.Error("failed to create coupon", zap.Error(err))
		return nil, err
	}

	log.Info("success create coupon", zap.String("coupon_id", c.ID))
	return &c, nil
}

func (s *service) DeleteCoupon(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.api.Delete(ctx, path("coupons", id), nil); err != nil {
		logFor(ctx, "DeleteCoupon").Error("failed to delete coupon", zap.String("coupon_id", id), zap.Error(err))
		return err
	}
	return nil
}
