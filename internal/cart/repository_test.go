package cart

import (
	"context"
	"testing"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/fakeapi/fakeapitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginCustomer(t)
	repo := NewRepository(env.API)

	var lineID string

	t.Run("Add returns the created line", func(t *testing.T) {
		item, err := repo.Add(ctx, "var-1", 2)
		require.NoError(t, err)

		lineID = item.ID
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "var-1", item.Variant.ID)
		assert.True(t, idr(80000).Equal(item.Variant.EffectivePrice()))
		assert.True(t, idr(160000).Equal(item.LineTotal()))
	})

	t.Run("Add unknown variant", func(t *testing.T) {
		_, err := repo.Add(ctx, "var-404", 1)
		assert.True(t, apiclient.IsNotFound(err))
		assert.EqualError(t, err, "Variant not found")
	})

	t.Run("List", func(t *testing.T) {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, lineID, items[0].ID)
	})

	t.Run("Preview checkout", func(t *testing.T) {
		p, err := repo.PreviewCheckout(ctx, PreviewRequest{
			CartItemIDs:     []string{lineID},
			ShippingVoucher: "SHIP20",
			ProductVoucher:  "DISC5",
		})
		require.NoError(t, err)

		assert.True(t, idr(160000).Equal(p.Subtotal))
		assert.True(t, idr(20000).Equal(p.ShippingFee))
		assert.True(t, idr(20000).Equal(p.ShippingDiscount))
		assert.True(t, idr(5000).Equal(p.ProductDiscount))
		assert.True(t, idr(155000).Equal(p.Total))
	})

	t.Run("Update echoes the quantity", func(t *testing.T) {
		item, err := repo.UpdateQuantity(ctx, lineID, 3)
		require.NoError(t, err)
		assert.Equal(t, lineID, item.ID)
		assert.Equal(t, 3, item.Quantity)
	})

	t.Run("Update to zero drops the line", func(t *testing.T) {
		item, err := repo.UpdateQuantity(ctx, lineID, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, item.Quantity, 0)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("Remove", func(t *testing.T) {
		item, err := repo.Add(ctx, "var-3", 1)
		require.NoError(t, err)
		require.NoError(t, repo.Remove(ctx, item.ID))

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		assert.Error(t, repo.Remove(ctx, item.ID))
	})
}

func TestStore_AgainstServer(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginCustomer(t)
	s := NewStore(NewRepository(env.API), nil)

	_, err := s.AddToCart(ctx, "var-1", 2)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, "var-1", 1)
	require.NoError(t, err)
	require.NoError(t, s.FetchCart(ctx))

	assert.Equal(t, 2, s.Len())
	assert.True(t, idr(240000).Equal(s.Summary().Total))

	s.SelectAll()
	summary, err := s.FetchPreCheckout(ctx, s.SelectedIDs(), "SHIP20", "BIG10")
	require.NoError(t, err)
	assert.True(t, summary.FromServer)
	assert.True(t, idr(240000).Equal(summary.Subtotal))
	// 240000 - 10% product discount + 20000 shipping - 20000 shipping discount
	assert.True(t, idr(216000).Equal(summary.Total), "got %s", summary.Total)
}
