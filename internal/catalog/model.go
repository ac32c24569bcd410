package catalog

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is an IDR amount. Server payloads carry JSON numbers or numeric strings.
type Money = decimal.Decimal

type Variant struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Price         Money   `json:"price"`
	DiscountPrice *Money  `json:"discountPrice,omitempty"`
	Color         *string `json:"color,omitempty"`
	Size          *string `json:"size,omitempty"`
	Stock         int     `json:"stock"`
}

// EffectivePrice is the discount price when it undercuts the list price.
func (v Variant) EffectivePrice() Money {
	if v.DiscountPrice != nil && v.DiscountPrice.LessThan(v.Price) {
		return *v.DiscountPrice
	}
	return v.Price
}

func (v Variant) OnSale() bool {
	return !v.EffectivePrice().Equal(v.Price)
}

func (v Variant) InStock() bool {
	return v.Stock > 0
}

// Label is "Color / Size" with missing parts left out.
func (v Variant) Label() string {
	switch {
	case v.Color != nil && v.Size != nil:
		return *v.Color + " / " + *v.Size
	case v.Color != nil:
		return *v.Color
	case v.Size != nil:
		return *v.Size
	}
	return ""
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"categoryId"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	MinPrice    Money     `json:"minPrice"`
}

// LowestPrice is MinPrice, or the cheapest effective variant price when the
// server left MinPrice out.
func (p Product) LowestPrice() Money {
	if !p.MinPrice.IsZero() || len(p.Variants) == 0 {
		return p.MinPrice
	}
	lowest := p.Variants[0].EffectivePrice()
	for _, v := range p.Variants[1:] {
		if ep := v.EffectivePrice(); ep.LessThan(lowest) {
			lowest = ep
		}
	}
	return lowest
}

func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId,omitempty"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return (p.Total + p.Size - 1) / p.Size
}

// Sort orders for product search.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type Query struct {
	Keyword    string
	CategoryID string
	MinPrice   *Money
	MaxPrice   *Money
	Sort       string
	Page       int
	Size       int
}

func (q Query) Validate() error {
	switch q.Sort {
	case "", SortNewest, SortPriceAsc, SortPriceDesc, SortName:
	default:
		return ErrInvalidSort
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return ErrInvalidPriceRange
	}
	if q.Page < 0 || q.Size < 0 {
		return ErrInvalidPage
	}
	return nil
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.CategoryID != "" {
		v.Set("categoryId", q.CategoryID)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	return v
}
