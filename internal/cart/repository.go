package cart

import (
	"context"
	"net/url"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

// Repository is the server-side cart.
type Repository interface {
	List(ctx context.Context) ([]CartItem, error)
	Add(ctx context.Context, variantID string, quantity int) (*CartItem, error)
	// UpdateQuantity returns the line as the server echoes it; a quantity of
	// zero or less means the server dropped it.
	UpdateQuantity(ctx context.Context, cartItemID string, quantity int) (*CartItem, error)
	Remove(ctx context.Context, cartItemID string) error
	PreviewCheckout(ctx context.Context, req PreviewRequest) (*PreCheckout, error)
}

type repository struct {
	api apiclient.API
}

func NewRepository(api apiclient.API) Repository {
	return &repository{api: api}
}

func (r *repository) List(ctx context.Context) ([]CartItem, error) {
	var rows []cartItemDTO
	if err := r.api.Get(ctx, "/carts", nil, &rows); err != nil {
		logger.FromCtx(ctx).Error("failed to get cart rows",
			zap.String("layer", "repository"),
			zap.String("method", "List"),
			zap.Error(err),
		)
		return nil, err
	}
	return mapCartItems(rows), nil
}

type addRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (r *repository) Add(ctx context.Context, variantID string, quantity int) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Add"),
		zap.String("variant_id", variantID),
		zap.Int("quantity", quantity),
	)

	var row cartItemDTO
	if err := r.api.Post(ctx, "/carts/add", addRequest{VariantID: variantID, Quantity: quantity}, &row); err != nil {
		log.Error("failed to create cart item", zap.Error(err))
		return nil, err
	}

	item := mapCartItem(row)
	if item.Variant.ID == "" {
		item.Variant.ID = variantID
	}
	if item.Quantity == 0 {
		item.Quantity = quantity
	}
	return &item, nil
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

// updateEchoDTO tells an echoed zero apart from a reply that carries no line.
type updateEchoDTO struct {
	cartItemDTO
	Quantity *int `json:"quantity"`
}

func (r *repository) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateQuantity"),
		zap.String("cart_item_id", cartItemID),
		zap.Int("quantity", quantity),
	)

	var row updateEchoDTO
	if err := r.api.Put(ctx, "/carts/"+url.PathEscape(cartItemID), updateRequest{Quantity: quantity}, &row); err != nil {
		log.Error("failed to update cart item", zap.Error(err))
		return nil, err
	}

	item := mapCartItem(row.cartItemDTO)
	if item.ID == "" {
		item.ID = cartItemID
	}
	if row.Quantity != nil {
		item.Quantity = *row.Quantity
	} else {
		log.Debug("update reply carried no quantity, keeping the requested one")
		item.Quantity = quantity
	}
	return &item, nil
}

func (r *repository) Remove(ctx context.Context, cartItemID string) error {
	if err := r.api.Delete(ctx, "/carts/"+url.PathEscape(cartItemID), nil); err != nil {
		logger.FromCtx(ctx).Error("failed to remove cart item",
			zap.String("layer", "repository"),
			zap.String("method", "Remove"),
			zap.String("cart_item_id", cartItemID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) PreviewCheckout(ctx context.Context, req PreviewRequest) (*PreCheckout, error) {
	if req.CartItemIDs == nil {
		req.CartItemIDs = []string{}
	}

	var out PreCheckout
	if err := r.api.Post(ctx, "/carts/preview-checkout", req, &out); err != nil {
		logger.FromCtx(ctx).Warn("pre-checkout rejected",
			zap.String("layer", "repository"),
			zap.String("method", "PreviewCheckout"),
			zap.Strings("cart_item_ids", req.CartItemIDs),
			zap.Error(err),
		)
		return nil, err
	}
	return &out, nil
}
