package admin

import (
	"encoding/json"
	"strings"
	"time"

	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/voucher"

	"github.com/shopspring/decimal"
)

type Money = catalog.Money

type VariantInput struct {
	ID            string
	ImageURL      string
	Price         Money
	DiscountPrice *Money
	Color         *string
	Size          *string
	Stock         int
}

type ProductInput struct {
	Name        string
	Slug        string
	Description string
	CategoryID  string
	Thumbnail   string
	Variants    []VariantInput
}

func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrProductNameRequired
	}
	if in.CategoryID == "" {
		return ErrCategoryRequired
	}
	if len(in.Variants) == 0 {
		return ErrNoVariants
	}
	for _, v := range in.Variants {
		if !v.Price.IsPositive() {
			return ErrInvalidPrice
		}
		if v.DiscountPrice != nil && v.DiscountPrice.GreaterThan(v.Price) {
			return ErrDiscountAbovePrice
		}
		if v.Stock < 0 {
			return ErrNegativeStock
		}
	}
	return nil
}

type CategoryInput struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug,omitempty"`
	ParentID *string `json:"parentId,omitempty"`
}

type CouponInput struct {
	Code          string
	Type          voucher.Class
	Description   string
	DiscountType  voucher.DiscountType
	DiscountValue Money
	MaxDiscount   *Money
	MinOrderValue Money
	ExpiresAt     *time.Time
	Active        bool
}

func (in CouponInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return ErrCouponCodeRequired
	}
	if !in.Type.Valid() {
		return ErrInvalidCouponType
	}
	switch in.DiscountType {
	case voucher.DiscountPercent, voucher.DiscountFixed:
	default:
		return ErrInvalidDiscountType
	}
	if !in.DiscountValue.IsPositive() {
		return ErrInvalidDiscountValue
	}
	if in.DiscountType == voucher.DiscountPercent && in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPercentAbove100
	}
	if in.MinOrderValue.IsNegative() {
		return ErrNegativeMinOrder
	}
	return nil
}

// The API takes amounts as JSON numbers; decimal marshals to strings.

func number(d Money) json.Number {
	return json.Number(d.String())
}

func numberPtr(d *Money) *json.Number {
	if d == nil {
		return nil
	}
	n := number(*d)
	return &n
}

type variantPayload struct {
	ID            string       `json:"id,omitempty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	Price         json.Number  `json:"price"`
	DiscountPrice *json.Number `json:"discountPrice,omitempty"`
	Color         *string      `json:"color,omitempty"`
	Size          *string      `json:"size,omitempty"`
	Stock         int          `json:"stock"`
}

type productPayload struct {
	Name        string           `json:"name"`
	Slug        string           `json:"slug,omitempty"`
	Description string           `json:"description,omitempty"`
	CategoryID  string           `json:"categoryId"`
	Thumbnail   string           `json:"thumbnail,omitempty"`
	Variants    []variantPayload `json:"variants"`
}

func toProductPayload(in ProductInput) productPayload {
	p := productPayload{
		Name:        strings.TrimSpace(in.Name),
		Slug:        in.Slug,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Thumbnail:   in.Thumbnail,
		Variants:    make([]variantPayload, 0, len(in.Variants)),
	}
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, variantPayload{
			ID:            v.ID,
			ImageURL:      v.ImageURL,
			Price:         number(v.Price),
			DiscountPrice: numberPtr(v.DiscountPrice),
			Color:         v.Color,
			Size:          v.Size,
			Stock:         v.Stock,
		})
	}
	return p
}

type couponPayload struct {
	Code          string       `json:"code"`
	Type          string       `json:"type"`
	Description   string       `json:"description,omitempty"`
	DiscountType  string       `json:"discountType"`
	DiscountValue json.Number  `json:"discountValue"`
	MaxDiscount   *json.Number `json:"maxDiscount,omitempty"`
	MinOrderValue json.Number  `json:"minOrderValue"`
	ExpiresAt     *time.Time   `json:"expiresAt,omitempty"`
	Active        bool         `json:"active"`
}

func toCouponPayload(in CouponInput) couponPayload {
	return couponPayload{
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Type:          string(in.Type),
		Description:   in.Description,
		DiscountType:  string(in.DiscountType),
		DiscountValue: number(in.DiscountValue),
		MaxDiscount:   numberPtr(in.MaxDiscount),
		MinOrderValue: number(in.MinOrderValue),
		ExpiresAt:     in.ExpiresAt,
		Active:        in.Active,
	}
}
