package checkout

import (
	"context"
	"strings"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/events"
	"warimas-storefront/internal/logger"
	"warimas-storefront/internal/order"
	"warimas-storefront/internal/utils"

	"go.uber.org/zap"
)

// Request is a cash-on-delivery checkout of the selected cart lines.
type Request struct {
	Address         string   `json:"address"`
	Phone           string   `json:"phone"`
	CartItemIDs     []string `json:"cartItemIds"`
	ShippingVoucher string   `json:"shippingVoucher"`
	ProductVoucher  string   `json:"productVoucher"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return ErrAddressRequired
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrPhoneRequired
	}
	if !utils.ValidPhone(r.Phone) {
		return ErrInvalidPhone
	}
	if len(r.CartItemIDs) == 0 {
		return ErrNoItemsSelected
	}
	return nil
}

// Cart is what checkout needs from the cart store.
type Cart interface {
	Clear()
}

type Service interface {
	Submit(ctx context.Context, req Request) (*order.Order, error)
}

type service struct {
	api          apiclient.API
	cart         Cart
	publisher    events.Publisher
	afterSuccess func(ctx context.Context, o *order.Order)
}

type Option func(*service)

// WithPublisher emits checkout.order_placed after each successful order.
func WithPublisher(p events.Publisher) Option {
	return func(s *service) { s.publisher = p }
}

// AfterSuccess sets the hook that moves the user on to their orders.
func AfterSuccess(fn func(ctx context.Context, o *order.Order)) Option {
	return func(s *service) { s.afterSuccess = fn }
}

func NewService(api apiclient.API, cart Cart, opts ...Option) Service {
	s := &service{api: api, cart: cart}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit places the order. On success the whole local cart is cleared, not
// only the submitted lines; the next fetch brings back whatever the server kept.
// On failure nothing local changes and the call is not retried.
func (s *service) Submit(ctx context.Context, req Request) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SubmitCheckout"),
		zap.Int("items", len(req.CartItemIDs)),
	)

	if err := req.Validate(); err != nil {
		log.Warn("invalid checkout request", zap.Error(err))
		return nil, err
	}
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)

	log.Debug("start checkout")

	var o order.Order
	if err := s.api.Post(ctx, "/orders/checkout-cod", req, &o); err != nil {
		log.Error("checkout failed", zap.Error(err))
		return nil, err
	}

	s.cart.Clear()

	events.Emit(ctx, s.publisher, o.ID, events.New(events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:   o.ID,
		Code:      o.Code,
		Total:     o.Total.String(),
		ItemCount: o.ItemCount(),
	}))

	log.Info("success checkout", zap.String("order_id", o.ID), zap.String("code", o.Code))

	if s.afterSuccess != nil {
		s.afterSuccess(ctx, &o)
	}
	return &o, nil
}
