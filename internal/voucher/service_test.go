package voucher

import (
	"context"
	"testing"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/fakeapi/fakeapitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(cs []Coupon) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Code
	}
	return out
}

func TestService_MyCoupons(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	svc := NewService(env.API)

	t.Run("Requires login", func(t *testing.T) {
		_, err := svc.MyCoupons(ctx, ClassShipping)
		assert.True(t, apiclient.IsStatus(err, 401))
	})

	env.LoginCustomer(t)

	t.Run("Shipping", func(t *testing.T) {
		out, err := svc.MyCoupons(ctx, ClassShipping)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"SHIP20", "ONGKIR50"}, codes(out))
		for _, c := range out {
			assert.Equal(t, ClassShipping, c.Type)
		}
	})

	t.Run("Product", func(t *testing.T) {
		out, err := svc.MyCoupons(ctx, ClassProduct)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"DISC5", "BIG10"}, codes(out))

		for _, c := range out {
			if c.Code == "BIG10" {
				assert.Equal(t, DiscountPercent, c.DiscountType)
				require.NotNil(t, c.MaxDiscount)
				assert.True(t, idr(50000).Equal(*c.MaxDiscount))
				assert.True(t, idr(200000).Equal(c.MinOrderValue))
			}
		}
	})

	t.Run("Both classes, inactive hidden", func(t *testing.T) {
		out, err := svc.MyCoupons(ctx, "")
		require.NoError(t, err)
		assert.Len(t, out, 4)
		assert.NotContains(t, codes(out), "OLD")
	})

	t.Run("Invalid class rejected locally", func(t *testing.T) {
		_, err := svc.MyCoupons(ctx, "GIFT")
		assert.ErrorIs(t, err, ErrInvalidClass)
	})
}
