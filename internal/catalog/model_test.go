package catalog

import (
	"testing"

	"warimas-storefront/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func idr(v int64) Money { return decimal.NewFromInt(v) }

func idrPtr(v int64) *Money {
	m := idr(v)
	return &m
}

func TestVariant(t *testing.T) {
	tests := []struct {
		name      string
		variant   Variant
		effective int64
		onSale    bool
	}{
		{name: "No discount", variant: Variant{Price: idr(100000)}, effective: 100000},
		{name: "Discount", variant: Variant{Price: idr(100000), DiscountPrice: idrPtr(80000)}, effective: 80000, onSale: true},
		{name: "Discount above price", variant: Variant{Price: idr(250000), DiscountPrice: idrPtr(300000)}, effective: 250000},
		{name: "Discount equal to price", variant: Variant{Price: idr(50000), DiscountPrice: idrPtr(50000)}, effective: 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, idr(tt.effective).Equal(tt.variant.EffectivePrice()))
			assert.Equal(t, tt.onSale, tt.variant.OnSale())
		})
	}

	assert.Equal(t, "Biru / M", Variant{Color: utils.StrPtr("Biru"), Size: utils.StrPtr("M")}.Label())
	assert.Equal(t, "32", Variant{Size: utils.StrPtr("32")}.Label())
	assert.Equal(t, "", Variant{}.Label())
	assert.False(t, Variant{Stock: 0}.InStock())
}

func TestProduct_LowestPrice(t *testing.T) {
	p := Product{Variants: []Variant{
		{ID: "a", Price: idr(100000), DiscountPrice: idrPtr(80000)},
		{ID: "b", Price: idr(75000)},
	}}
	assert.True(t, idr(75000).Equal(p.LowestPrice()))

	p.MinPrice = idr(70000)
	assert.True(t, idr(70000).Equal(p.LowestPrice()))

	v, ok := p.Variant("a")
	assert.True(t, ok)
	assert.Equal(t, "a", v.ID)
	_, ok = p.Variant("zzz")
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		assert.NoError(t, Query{}.Validate())
		assert.ErrorIs(t, Query{Sort: "random"}.Validate(), ErrInvalidSort)
		assert.ErrorIs(t, Query{MinPrice: idrPtr(200), MaxPrice: idrPtr(100)}.Validate(), ErrInvalidPriceRange)
		assert.ErrorIs(t, Query{Page: -1}.Validate(), ErrInvalidPage)
	})

	t.Run("Values", func(t *testing.T) {
		v := Query{Keyword: "batik", CategoryID: "cat-1", MinPrice: idrPtr(50000), Sort: SortPriceAsc, Page: 2, Size: 5}.Values()
		assert.Equal(t, "batik", v.Get("keyword"))
		assert.Equal(t, "cat-1", v.Get("categoryId"))
		assert.Equal(t, "50000", v.Get("minPrice"))
		assert.Empty(t, v.Get("maxPrice"))
		assert.Equal(t, "price_asc", v.Get("sort"))
		assert.Equal(t, "2", v.Get("page"))
		assert.Equal(t, "5", v.Get("size"))

		assert.Empty(t, Query{}.Values())
	})

	assert.Equal(t, 3, Page[Product]{Size: 12, Total: 25}.TotalPages())
	assert.Equal(t, 0, Page[Product]{Size: 12}.TotalPages())
}
