package voucher

import (
	"time"

	"warimas-storefront/internal/catalog"

	"github.com/shopspring/decimal"
)

type Money = catalog.Money

// Class says what a coupon discounts.
type Class string

const (
	ClassShipping Class = "SHIPPING"
	ClassProduct  Class = "PRODUCT"
)

func (c Class) Valid() bool {
	return c == ClassShipping || c == ClassProduct
}

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

type Coupon struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Type          Class        `json:"type"`
	Description   string       `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue Money        `json:"discountValue"`
	MaxDiscount   *Money       `json:"maxDiscount,omitempty"`
	MinOrderValue Money        `json:"minOrderValue"`
	ExpiresAt     *time.Time   `json:"expiresAt,omitempty"`
	Active        bool         `json:"active"`
}

// Eligible reports whether subtotal reaches the coupon's minimum order value.
func (c Coupon) Eligible(subtotal Money) bool {
	return !subtotal.LessThan(c.MinOrderValue)
}

// EstimateDiscount is what the coupon would take off base. It is only shown
// next to the option; the pre-checkout figure is the one that counts.
func (c Coupon) EstimateDiscount(base Money) Money {
	var d Money
	switch c.DiscountType {
	case DiscountPercent:
		d = base.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Floor()
		if c.MaxDiscount != nil && d.GreaterThan(*c.MaxDiscount) {
			d = *c.MaxDiscount
		}
	default:
		d = c.DiscountValue
	}
	if d.GreaterThan(base) {
		d = base
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Option is a coupon as the picker presents it.
type Option struct {
	Coupon
	Disabled bool
	Selected bool
}

// Selection holds the chosen codes; "" means none.
type Selection struct {
	Shipping string
	Product  string
}
