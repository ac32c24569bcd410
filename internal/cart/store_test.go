package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]CartItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CartItem), args.Error(1)
}

func (m *MockRepository) Add(ctx context.Context, variantID string, quantity int) (*CartItem, error) {
	args := m.Called(ctx, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) (*CartItem, error) {
	args := m.Called(ctx, cartItemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) Remove(ctx context.Context, cartItemID string) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *MockRepository) PreviewCheckout(ctx context.Context, req PreviewRequest) (*PreCheckout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PreCheckout), args.Error(1)
}

// replayAPI answers every call with a fixed data payload, as the envelope
// decoder would hand it over.
type replayAPI struct {
	get string
	put string
}

func (a *replayAPI) Get(_ context.Context, _ string, _ url.Values, out any) error {
	return json.Unmarshal([]byte(a.get), out)
}

func (a *replayAPI) Post(context.Context, string, any, any) error { return nil }

func (a *replayAPI) Put(_ context.Context, _ string, _, out any) error {
	return json.Unmarshal([]byte(a.put), out)
}

func (a *replayAPI) Patch(context.Context, string, any, any) error { return nil }

func (a *replayAPI) Delete(context.Context, string, any) error { return nil }

func idr(v int64) Money { return decimal.NewFromInt(v) }

func idrPtr(v int64) *Money {
	m := idr(v)
	return &m
}

func line(id, variantID string, price int64, discount *Money, qty int) CartItem {
	return CartItem{
		ID:       id,
		Quantity: qty,
		Variant:  catalog.Variant{ID: variantID, Price: idr(price), DiscountPrice: discount},
	}
}

func loaded(t *testing.T, items ...CartItem) (*Store, *MockRepository) {
	t.Helper()
	repo := new(MockRepository)
	repo.On("List", mock.Anything).Return(items, nil).Once()
	s := NewStore(repo, nil)
	require.NoError(t, s.FetchCart(context.Background()))
	return s, repo
}

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		items    []CartItem
		expected int64
	}{
		{name: "Empty", items: nil, expected: 0},
		{name: "Discount applies", items: []CartItem{line("c1", "v1", 100000, idrPtr(80000), 2)}, expected: 160000},
		{name: "Discount above price ignored", items: []CartItem{line("c1", "v1", 100000, idrPtr(120000), 1)}, expected: 100000},
		{name: "Equal discount", items: []CartItem{line("c1", "v1", 50000, idrPtr(50000), 3)}, expected: 150000},
		{
			name: "Mixed lines",
			items: []CartItem{
				line("c1", "v1", 100000, idrPtr(80000), 2),
				line("c2", "v2", 25000, nil, 4),
				line("c3", "v1", 100000, idrPtr(80000), 1),
			},
			expected: 340000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, idr(tt.expected).Equal(Subtotal(tt.items)), "got %s", Subtotal(tt.items))

			summary := FallbackSummary(tt.items)
			assert.True(t, summary.Total.Equal(summary.Subtotal))
			assert.False(t, summary.FromServer)
		})
	}
}

func TestStore_FetchCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s, _ := loaded(t, line("c1", "v1", 100000, idrPtr(80000), 2))

		assert.Equal(t, 1, s.Len())
		assert.True(t, idr(160000).Equal(s.Summary().Subtotal))
		assert.True(t, idr(160000).Equal(s.Summary().Total))
		assert.Empty(t, s.Err())
	})

	t.Run("Failure keeps prior items", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 1))
		repo.On("List", mock.Anything).Return(nil, errors.New("Server sedang sibuk")).Once()

		err := s.FetchCart(ctx)
		assert.Error(t, err)
		assert.Equal(t, "Server sedang sibuk", s.Err())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("Success clears previous error", func(t *testing.T) {
		s, repo := loaded(t)
		repo.On("List", mock.Anything).Return(nil, errors.New("boom")).Once()
		repo.On("List", mock.Anything).Return([]CartItem{}, nil).Once()

		_ = s.FetchCart(ctx)
		require.Equal(t, "boom", s.Err())
		require.NoError(t, s.FetchCart(ctx))
		assert.Empty(t, s.Err())
	})
}

func TestStore_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid quantity is rejected before the request", func(t *testing.T) {
		repo := new(MockRepository)
		s := NewStore(repo, nil)

		_, err := s.AddToCart(ctx, "v1", 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Equal(t, ErrInvalidQuantity.Error(), s.Err())
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Same variant twice gives two lines", func(t *testing.T) {
		repo := new(MockRepository)
		rec := &events.Recorder{}
		s := NewStore(repo, rec)

		first := line("c1", "v1", 100000, idrPtr(80000), 1)
		second := line("c2", "v1", 100000, idrPtr(80000), 1)
		repo.On("Add", mock.Anything, "v1", 1).Return(&first, nil).Once()
		repo.On("Add", mock.Anything, "v1", 1).Return(&second, nil).Once()

		_, err := s.AddToCart(ctx, "v1", 1)
		require.NoError(t, err)
		_, err = s.AddToCart(ctx, "v1", 1)
		require.NoError(t, err)

		items := s.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "c1", items[0].ID)
		assert.Equal(t, "c2", items[1].ID)
		assert.True(t, idr(160000).Equal(s.Summary().Subtotal))
		assert.Equal(t, []string{events.TypeCartItemAdded, events.TypeCartItemAdded}, rec.Types())
	})

	t.Run("Server error", func(t *testing.T) {
		repo := new(MockRepository)
		s := NewStore(repo, nil)
		repo.On("Add", mock.Anything, "v9", 1).Return(nil, errors.New("Variant not found"))

		_, err := s.AddToCart(ctx, "v9", 1)
		assert.EqualError(t, err, "Variant not found")
		assert.Equal(t, "Variant not found", s.Err())
		assert.Equal(t, 0, s.Len())
	})
}

func TestStore_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("Echoed zero removes the line", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 2), line("c2", "v2", 50000, nil, 1))
		s.SelectAll()
		echo := line("c1", "v1", 100000, nil, 0)
		repo.On("UpdateQuantity", mock.Anything, "c1", 0).Return(&echo, nil)

		require.NoError(t, s.UpdateQuantity(ctx, "c1", 0))

		_, found := s.Item("c1")
		assert.False(t, found)
		assert.Equal(t, []string{"c2"}, s.SelectedIDs())
		assert.True(t, idr(50000).Equal(s.Summary().Subtotal))
	})

	t.Run("Negative echo removes too", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 1))
		repo.On("UpdateQuantity", mock.Anything, "c1", -1).Return(&CartItem{ID: "c1", Quantity: -1}, nil)

		require.NoError(t, s.UpdateQuantity(ctx, "c1", -1))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("Echoed quantity overwrites", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, idrPtr(80000), 2))
		// server clamps to available stock
		echo := line("c1", "v1", 100000, idrPtr(80000), 3)
		repo.On("UpdateQuantity", mock.Anything, "c1", 5).Return(&echo, nil)

		require.NoError(t, s.UpdateQuantity(ctx, "c1", 5))
		item, _ := s.Item("c1")
		assert.Equal(t, 3, item.Quantity)
		assert.True(t, idr(240000).Equal(s.Summary().Total))
	})

	t.Run("Unknown line is rejected before the request", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 2))

		err := s.UpdateQuantity(ctx, "c9", 3)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
		assert.Equal(t, ErrCartItemNotFound.Error(), s.Err())
		repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Reply without data keeps the requested quantity", func(t *testing.T) {
		api := &replayAPI{
			get: `[{"id":"c1","quantity":1,"variant":{"id":"v1","price":"100000"}}]`,
			put: `null`,
		}
		s := NewStore(NewRepository(api), nil)
		require.NoError(t, s.FetchCart(ctx))

		require.NoError(t, s.UpdateQuantity(ctx, "c1", 3))

		item, found := s.Item("c1")
		require.True(t, found)
		assert.Equal(t, 3, item.Quantity)
		assert.Equal(t, "v1", item.Variant.ID)
		assert.True(t, idr(300000).Equal(s.Summary().Subtotal))
	})

	t.Run("Failure leaves the line", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 2))
		repo.On("UpdateQuantity", mock.Anything, "c1", 9).Return(nil, errors.New("Insufficient stock"))

		assert.Error(t, s.UpdateQuantity(ctx, "c1", 9))
		item, _ := s.Item("c1")
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "Insufficient stock", s.Err())
	})
}

func TestStore_RemoveFromCart(t *testing.T) {
	ctx := context.Background()
	s, repo := loaded(t, line("c1", "v1", 100000, nil, 1), line("c2", "v1", 100000, nil, 1))
	rec := &events.Recorder{}
	s.publisher = rec
	repo.On("Remove", mock.Anything, "c1").Return(nil)

	require.NoError(t, s.RemoveFromCart(ctx, "c1"))

	for _, it := range s.Items() {
		assert.NotEqual(t, "c1", it.ID)
	}
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []string{events.TypeCartItemRemoved}, rec.Types())
	assert.Equal(t, []string{"c1"}, rec.Keys())
}

func TestStore_FetchPreCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Server figures win, subtotal stays local", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, idrPtr(80000), 2))
		repo.On("PreviewCheckout", mock.Anything, PreviewRequest{
			CartItemIDs:     []string{"c1"},
			ShippingVoucher: "SHIP20",
			ProductVoucher:  "DISC5",
		}).Return(&PreCheckout{
			Subtotal:         idr(160000),
			ShippingFee:      idr(20000),
			ShippingDiscount: idr(20000),
			ProductDiscount:  idr(5000),
			Total:            idr(155000),
		}, nil)

		summary, err := s.FetchPreCheckout(ctx, []string{"c1"}, "SHIP20", "DISC5")
		require.NoError(t, err)
		assert.True(t, idr(155000).Equal(summary.Total))
		assert.True(t, idr(160000).Equal(summary.Subtotal))
		assert.True(t, summary.FromServer)
		assert.Equal(t, *summary, s.Summary())
	})

	t.Run("Subtotal covers unselected lines", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 1), line("c2", "v2", 40000, nil, 1))
		repo.On("PreviewCheckout", mock.Anything, mock.Anything).Return(&PreCheckout{
			Subtotal:    idr(100000),
			ShippingFee: idr(20000),
			Total:       idr(120000),
		}, nil)

		summary, err := s.FetchPreCheckout(ctx, []string{"c1"}, "", "")
		require.NoError(t, err)
		assert.True(t, idr(140000).Equal(summary.Subtotal))
		assert.True(t, idr(120000).Equal(summary.Total))
	})

	t.Run("Next mutation falls back to local pricing", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 1))
		repo.On("PreviewCheckout", mock.Anything, mock.Anything).Return(&PreCheckout{Total: idr(95000)}, nil)
		repo.On("Remove", mock.Anything, "c1").Return(nil)

		_, err := s.FetchPreCheckout(ctx, []string{"c1"}, "", "")
		require.NoError(t, err)
		require.NoError(t, s.RemoveFromCart(ctx, "c1"))

		assert.False(t, s.Summary().FromServer)
		assert.True(t, s.Summary().Total.IsZero())
	})

	t.Run("Nothing selected", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 1))
		_, err := s.FetchPreCheckout(ctx, nil, "", "")
		assert.ErrorIs(t, err, ErrNothingSelected)
		repo.AssertNotCalled(t, "PreviewCheckout", mock.Anything, mock.Anything)
	})

	t.Run("Server rejection keeps the summary", func(t *testing.T) {
		s, repo := loaded(t, line("c1", "v1", 100000, nil, 1))
		repo.On("PreviewCheckout", mock.Anything, mock.Anything).Return(nil, errors.New("Voucher not found"))

		_, err := s.FetchPreCheckout(ctx, []string{"c1"}, "NOPE", "")
		assert.Error(t, err)
		assert.Equal(t, "Voucher not found", s.Err())
		assert.False(t, s.Summary().FromServer)
	})
}

func TestStore_Selection(t *testing.T) {
	s, _ := loaded(t, line("c1", "v1", 1000, nil, 1), line("c2", "v2", 1000, nil, 1), line("c3", "v3", 1000, nil, 1))

	s.Select("c3", "c1", "ghost")
	assert.Equal(t, []string{"c1", "c3"}, s.SelectedIDs())
	assert.True(t, s.IsSelected("c3"))
	assert.False(t, s.IsSelected("ghost"))

	s.Deselect("c3")
	assert.Equal(t, []string{"c1"}, s.SelectedIDs())

	s.SelectAll()
	assert.Equal(t, []string{"c1", "c2", "c3"}, s.SelectedIDs())

	s.ClearSelection()
	assert.Empty(t, s.SelectedIDs())
}

func TestStore_Clear(t *testing.T) {
	s, _ := loaded(t, line("c1", "v1", 1000, nil, 1), line("c2", "v2", 1000, nil, 1))
	s.Select("c1")

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.SelectedIDs())
	assert.True(t, s.Summary().Total.IsZero())
}

func TestStore_OnChange(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	s := NewStore(repo, nil)

	var snaps []Snapshot
	unsubscribe := s.OnChange(func(snap Snapshot) { snaps = append(snaps, snap) })

	added := line("c1", "v1", 100000, idrPtr(80000), 2)
	repo.On("Add", mock.Anything, "v1", 2).Return(&added, nil)
	_, err := s.AddToCart(ctx, "v1", 2)
	require.NoError(t, err)

	_, _ = s.AddToCart(ctx, "v1", 0)

	require.Len(t, snaps, 2)
	assert.Len(t, snaps[0].Items, 1)
	assert.True(t, idr(160000).Equal(snaps[0].Summary.Subtotal))
	assert.Equal(t, ErrInvalidQuantity.Error(), snaps[1].Err)

	unsubscribe()
	s.Clear()
	assert.Len(t, snaps, 2)
}
