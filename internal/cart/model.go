package cart

import (
	"warimas-storefront/internal/catalog"

	"github.com/shopspring/decimal"
)

type Money = catalog.Money

// CartItem is one cart line. Two lines may share a variant.
type CartItem struct {
	ID       string          `json:"id"`
	Variant  catalog.Variant `json:"variant"`
	Quantity int             `json:"quantity"`
}

func (i CartItem) LineTotal() Money {
	return i.Variant.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PriceSummary is derived from the item list, or copied from the server's
// pre-checkout reply when FromServer is set.
type PriceSummary struct {
	Subtotal         Money
	ShippingFee      Money
	ShippingDiscount Money
	ProductDiscount  Money
	Total            Money
	FromServer       bool
}

// PreCheckout is the server's pricing for a tentative order.
type PreCheckout struct {
	Subtotal         Money `json:"subtotal"`
	ShippingFee      Money `json:"shippingFee"`
	ShippingDiscount Money `json:"shippingDiscount"`
	ProductDiscount  Money `json:"productDiscount"`
	Total            Money `json:"total"`
}

type PreviewRequest struct {
	CartItemIDs     []string `json:"cartItemIds"`
	ShippingVoucher string   `json:"shippingVoucher"`
	ProductVoucher  string   `json:"productVoucher"`
}

// Snapshot is a copy of the store state handed to observers.
type Snapshot struct {
	Items    []CartItem
	Selected []string
	Summary  PriceSummary
	Err      string
}
