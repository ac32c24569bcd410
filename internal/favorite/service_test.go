package favorite

import (
	"context"
	"testing"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/fakeapi/fakeapitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	env := fakeapitest.Start(t)
	env.LoginCustomer(t)
	svc := NewService(env.API)

	t.Run("Empty at first", func(t *testing.T) {
		out, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.False(t, svc.Contains("prd-1"))
	})

	t.Run("Add is idempotent", func(t *testing.T) {
		require.NoError(t, svc.Add(ctx, "prd-1"))
		require.NoError(t, svc.Add(ctx, "prd-1"))
		require.NoError(t, svc.Add(ctx, "prd-2"))
		assert.True(t, svc.Contains("prd-1"))

		out, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "prd-1", out[0].ID)
		assert.Equal(t, "prd-2", out[1].ID)
	})

	t.Run("Unknown product", func(t *testing.T) {
		err := svc.Add(ctx, "prd-404")
		assert.True(t, apiclient.IsNotFound(err))
		assert.False(t, svc.Contains("prd-404"))
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, svc.Remove(ctx, "prd-1"))
		assert.False(t, svc.Contains("prd-1"))

		err := svc.Remove(ctx, "prd-1")
		assert.True(t, apiclient.IsNotFound(err))

		out, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "prd-2", out[0].ID)
	})

	t.Run("Empty id", func(t *testing.T) {
		assert.ErrorIs(t, svc.Add(ctx, ""), ErrProductIDRequired)
		assert.ErrorIs(t, svc.Remove(ctx, ""), ErrProductIDRequired)
	})
}
