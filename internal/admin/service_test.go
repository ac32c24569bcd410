package admin

import (
	"context"
	"net/http"
	"testing"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/fakeapi/fakeapitest"
	"warimas-storefront/internal/order"
	"warimas-storefront/internal/user"
	"warimas-storefront/internal/voucher"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idr(v int64) Money { return decimal.NewFromInt(v) }

func idrPtr(v int64) *Money {
	m := idr(v)
	return &m
}

func validProduct() ProductInput {
	return ProductInput{
		Name:       "  Sarung Tenun ",
		CategoryID: "cat-3",
		Variants: []VariantInput{
			{Price: idr(120000), DiscountPrice: idrPtr(99000), Stock: 4},
			{Price: idr(150000), Stock: 2},
		},
	}
}

func TestProductInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ProductInput)
		want   error
	}{
		{"Valid", func(*ProductInput) {}, nil},
		{"Blank name", func(p *ProductInput) { p.Name = "   " }, ErrProductNameRequired},
		{"No category", func(p *ProductInput) { p.CategoryID = "" }, ErrCategoryRequired},
		{"No variants", func(p *ProductInput) { p.Variants = nil }, ErrNoVariants},
		{"Zero price", func(p *ProductInput) { p.Variants[1].Price = idr(0) }, ErrInvalidPrice},
		{"Discount above price", func(p *ProductInput) { p.Variants[0].DiscountPrice = idrPtr(130000) }, ErrDiscountAbovePrice},
		{"Negative stock", func(p *ProductInput) { p.Variants[0].Stock = -1 }, ErrNegativeStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProduct()
			tt.modify(&in)
			err := in.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func validCoupon() CouponInput {
	return CouponInput{
		Code:          " gajian ",
		Type:          voucher.ClassProduct,
		DiscountType:  voucher.DiscountPercent,
		DiscountValue: idr(15),
		MaxDiscount:   idrPtr(40000),
		MinOrderValue: idr(100000),
		Active:        true,
	}
}

func TestCouponInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CouponInput)
		want   error
	}{
		{"Valid", func(*CouponInput) {}, nil},
		{"Blank code", func(c *CouponInput) { c.Code = " " }, ErrCouponCodeRequired},
		{"Unknown class", func(c *CouponInput) { c.Type = "BUNDLE" }, ErrInvalidCouponType},
		{"Unknown discount type", func(c *CouponInput) { c.DiscountType = "BOGO" }, ErrInvalidDiscountType},
		{"Zero value", func(c *CouponInput) { c.DiscountValue = idr(0) }, ErrInvalidDiscountValue},
		{"Percent above 100", func(c *CouponInput) { c.DiscountValue = idr(101) }, ErrPercentAbove100},
		{"Fixed above 100 is fine", func(c *CouponInput) {
			c.DiscountType = voucher.DiscountFixed
			c.DiscountValue = idr(25000)
		}, nil},
		{"Negative minimum", func(c *CouponInput) { c.MinOrderValue = idr(-1) }, ErrNegativeMinOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCoupon()
			tt.modify(&in)
			err := in.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_CustomerIsForbidden(t *testing.T) {
	env := fakeapitest.Start(t)
	env.LoginCustomer(t)
	svc := NewService(env.Admin)

	_, err := svc.ListUsers(context.Background())
	assert.True(t, apiclient.IsStatus(err, http.StatusForbidden))
}

func TestService_Products(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginAdmin(t)
	svc := NewService(env.Admin)

	created, err := svc.CreateProduct(ctx, validProduct())
	require.NoError(t, err)
	assert.Equal(t, "Sarung Tenun", created.Name)
	assert.Equal(t, "sarung-tenun", created.Slug)
	require.Len(t, created.Variants, 2)
	assert.True(t, created.LowestPrice().Equal(idr(99000)))

	page, err := svc.ListProducts(ctx, catalog.Query{Keyword: "sarung"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	update := validProduct()
	update.Name = "Sarung Tenun Premium"
	update.Variants = update.Variants[1:]
	updated, err := svc.UpdateProduct(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Sarung Tenun Premium", updated.Name)
	require.Len(t, updated.Variants, 1)

	_, err = svc.UpdateProduct(ctx, "prd-404", update)
	assert.True(t, apiclient.IsNotFound(err))

	bad := validProduct()
	bad.CategoryID = "cat-404"
	_, err = svc.CreateProduct(ctx, bad)
	assert.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	assert.True(t, apiclient.IsNotFound(svc.DeleteProduct(ctx, created.ID)))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, ""), ErrIDRequired)
}

func TestService_Categories(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginAdmin(t)
	svc := NewService(env.Admin)

	parent := "cat-1"
	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Celana Panjang", ParentID: &parent})
	require.NoError(t, err)
	assert.Equal(t, "celana-panjang", cat.Slug)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 4)

	_, err = svc.CreateCategory(ctx, CategoryInput{})
	assert.ErrorIs(t, err, ErrCategoryNameRequired)

	err = svc.DeleteCategory(ctx, "cat-1")
	assert.True(t, apiclient.IsStatus(err, http.StatusConflict))

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
}

func TestService_Users(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginAdmin(t)
	svc := NewService(env.Admin)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	u, err := svc.SetUserRole(ctx, "usr-1", user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)

	_, err = svc.SetUserRole(ctx, "usr-1", user.RoleGuest)
	assert.ErrorIs(t, err, ErrInvalidRole)

	u, err = svc.SetUserLocked(ctx, "usr-1", true)
	require.NoError(t, err)
	assert.True(t, u.Locked)

	_, err = svc.SetUserLocked(ctx, "usr-2", true)
	assert.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	_, err = svc.SetUserRole(ctx, "", user.RoleAdmin)
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestService_Orders(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)

	env.LoginCustomer(t)
	var line struct {
		ID string `json:"id"`
	}
	require.NoError(t, env.API.Post(ctx, "/carts/add", map[string]any{"variantId": "var-1", "quantity": 2}, &line))
	var placed order.Order
	require.NoError(t, env.API.Post(ctx, "/orders/checkout-cod", map[string]any{
		"address":     "Jl. Braga 10, Bandung",
		"phone":       "081234567890",
		"cartItemIds": []string{line.ID},
	}, &placed))

	env.LoginAdmin(t)
	svc := NewService(env.Admin)

	pending, err := svc.ListOrders(ctx, order.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, placed.ID, pending[0].ID)

	_, err = svc.ListOrders(ctx, "LOST")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	o, err := svc.UpdateOrderStatus(ctx, placed.ID, order.StatusShipping)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipping, o.Status)

	o, err = svc.UpdateOrderStatus(ctx, placed.ID, order.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, o.Status)

	_, err = svc.UpdateOrderStatus(ctx, placed.ID, order.StatusCancelled)
	assert.True(t, apiclient.IsStatus(err, http.StatusBadRequest))

	all, err := svc.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	pending, err = svc.ListOrders(ctx, order.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestService_Coupons(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginAdmin(t)
	svc := NewService(env.Admin)

	before, err := svc.ListCoupons(ctx)
	require.NoError(t, err)

	c, err := svc.CreateCoupon(ctx, validCoupon())
	require.NoError(t, err)
	assert.Equal(t, "GAJIAN", c.Code)
	assert.Equal(t, voucher.DiscountPercent, c.DiscountType)
	assert.True(t, c.DiscountValue.Equal(idr(15)))
	require.NotNil(t, c.MaxDiscount)
	assert.True(t, c.MaxDiscount.Equal(idr(40000)))

	_, err = svc.CreateCoupon(ctx, validCoupon())
	assert.True(t, apiclient.IsStatus(err, http.StatusConflict))

	after, err := svc.ListCoupons(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	require.NoError(t, svc.DeleteCoupon(ctx, c.ID))
	assert.True(t, apiclient.IsNotFound(svc.DeleteCoupon(ctx, c.ID)))
}
