package cart

import (
	"context"
	"sync"

	"warimas-storefront/internal/events"
	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

// Store is the client-side cart: line items, the checkout selection and the
// derived price summary. Requests run without holding the lock, so when two
// calls race the response that lands last wins.
type Store struct {
	repo      Repository
	publisher events.Publisher

	mu        sync.Mutex
	items     []CartItem
	selected  map[string]bool
	summary   PriceSummary
	err       string
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore builds an empty store. publisher may be nil.
func NewStore(repo Repository, publisher events.Publisher) *Store {
	return &Store{
		repo:      repo,
		publisher: publisher,
		selected:  make(map[string]bool),
		summary:   FallbackSummary(nil),
		listeners: make(map[int]func(Snapshot)),
	}
}

// -- Remote operations --

// FetchCart replaces the item list with the server's. On failure the previous
// items stay in place.
func (s *Store) FetchCart(ctx context.Context) error {
	items, err := s.repo.List(ctx)
	if err != nil {
		return s.fail(ctx, "FetchCart", err)
	}

	s.update(func() {
		s.items = items
		s.recomputeLocked()
	})
	return nil
}

// AddToCart appends the line the server created. Lines are never merged.
func (s *Store) AddToCart(ctx context.Context, variantID string, quantity int) (*CartItem, error) {
	if variantID == "" {
		return nil, s.fail(ctx, "AddToCart", ErrVariantIDRequired)
	}
	if quantity < 1 {
		return nil, s.fail(ctx, "AddToCart", ErrInvalidQuantity)
	}

	item, err := s.repo.Add(ctx, variantID, quantity)
	if err != nil {
		return nil, s.fail(ctx, "AddToCart", err)
	}

	s.update(func() {
		s.items = append(s.items, *item)
		s.recomputeLocked()
	})

	events.Emit(ctx, s.publisher, item.ID, events.New(events.TypeCartItemAdded, events.CartItemAdded{
		CartItemID: item.ID,
		VariantID:  item.Variant.ID,
		Quantity:   item.Quantity,
		UnitPrice:  item.Variant.EffectivePrice().String(),
	}))
	return item, nil
}

// UpdateQuantity applies the server's echo: an echoed quantity of zero or less
// removes the line, anything else overwrites it. Only lines already in the
// store can be updated.
func (s *Store) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	if cartItemID == "" {
		return s.fail(ctx, "UpdateQuantity", ErrCartItemIDRequired)
	}
	if _, ok := s.Item(cartItemID); !ok {
		return s.fail(ctx, "UpdateQuantity", ErrCartItemNotFound)
	}

	echo, err := s.repo.UpdateQuantity(ctx, cartItemID, quantity)
	if err != nil {
		return s.fail(ctx, "UpdateQuantity", err)
	}

	removed := echo.Quantity <= 0
	s.update(func() {
		if removed {
			s.removeLocked(cartItemID)
		} else {
			for i := range s.items {
				if s.items[i].ID == cartItemID {
					s.items[i].Quantity = echo.Quantity
					if echo.Variant.ID != "" {
						s.items[i].Variant = echo.Variant
					}
				}
			}
		}
		s.recomputeLocked()
	})

	if removed {
		events.Emit(ctx, s.publisher, cartItemID, events.New(events.TypeCartItemRemoved, events.CartItemRemoved{CartItemID: cartItemID}))
	}
	return nil
}

func (s *Store) RemoveFromCart(ctx context.Context, cartItemID string) error {
	if cartItemID == "" {
		return s.fail(ctx, "RemoveFromCart", ErrCartItemIDRequired)
	}

	if err := s.repo.Remove(ctx, cartItemID); err != nil {
		return s.fail(ctx, "RemoveFromCart", err)
	}

	s.update(func() {
		s.removeLocked(cartItemID)
		s.recomputeLocked()
	})

	events.Emit(ctx, s.publisher, cartItemID, events.New(events.TypeCartItemRemoved, events.CartItemRemoved{CartItemID: cartItemID}))
	return nil
}

// FetchPreCheckout asks the server to price the selected lines with the given
// vouchers ("" for none) and adopts its figures. The subtotal stays local and
// covers the whole cart.
func (s *Store) FetchPreCheckout(ctx context.Context, selectedIDs []string, shippingVoucher, productVoucher string) (*PriceSummary, error) {
	if len(selectedIDs) == 0 {
		return nil, s.fail(ctx, "FetchPreCheckout", ErrNothingSelected)
	}

	p, err := s.repo.PreviewCheckout(ctx, PreviewRequest{
		CartItemIDs:     append([]string(nil), selectedIDs...),
		ShippingVoucher: shippingVoucher,
		ProductVoucher:  productVoucher,
	})
	if err != nil {
		return nil, s.fail(ctx, "FetchPreCheckout", err)
	}

	var summary PriceSummary
	s.update(func() {
		s.summary = ServerSummary(s.items, *p)
		summary = s.summary
	})
	return &summary, nil
}

// -- Local operations --

// Clear wipes items, selection and summary without calling the server.
func (s *Store) Clear() {
	s.update(func() {
		s.items = nil
		s.selected = make(map[string]bool)
		s.summary = FallbackSummary(nil)
	})
}

// Select adds ids that are in the cart to the selection. Unknown ids are ignored.
func (s *Store) Select(ids ...string) {
	s.change(func() {
		for _, id := range ids {
			if s.indexLocked(id) >= 0 {
				s.selected[id] = true
			}
		}
	})
}

func (s *Store) Deselect(ids ...string) {
	s.change(func() {
		for _, id := range ids {
			delete(s.selected, id)
		}
	})
}

func (s *Store) SelectAll() {
	s.change(func() {
		for _, it := range s.items {
			s.selected[it.ID] = true
		}
	})
}

func (s *Store) ClearSelection() {
	s.change(func() {
		s.selected = make(map[string]bool)
	})
}

// SelectedIDs lists selected line ids in cart order.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// -- Accessors --

func (s *Store) Items() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartItem(nil), s.items...)
}

func (s *Store) Item(id string) (CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return CartItem{}, false
}

func (s *Store) Summary() PriceSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Err is the message of the last failed operation, "" after a success.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// OnChange registers fn to run after every state change.
func (s *Store) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// -- internals --

// update applies the result of a successful operation: fn runs under the
// lock, the error is cleared and observers run after unlocking.
func (s *Store) update(fn func()) {
	s.commit(fn, true)
}

// change is update for local edits that leave the error alone.
func (s *Store) change(fn func()) {
	s.commit(fn, false)
}

func (s *Store) commit(fn func(), clearErr bool) {
	s.mu.Lock()
	fn()
	if clearErr {
		s.err = ""
	}
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) fail(ctx context.Context, method string, err error) error {
	logger.FromCtx(ctx).Warn("cart operation failed",
		zap.String("layer", "store"),
		zap.String("method", method),
		zap.Error(err),
	)

	s.mu.Lock()
	s.err = err.Error()
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return err
}

func (s *Store) recomputeLocked() {
	s.summary = FallbackSummary(s.items)
	for id := range s.selected {
		if s.indexLocked(id) < 0 {
			delete(s.selected, id)
		}
	}
}

func (s *Store) removeLocked(id string) {
	kept := s.items[:0:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	delete(s.selected, id)
}

func (s *Store) indexLocked(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) selectedLocked() []string {
	out := make([]string, 0, len(s.selected))
	for _, it := range s.items {
		if s.selected[it.ID] {
			out = append(out, it.ID)
		}
	}
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    append([]CartItem(nil), s.items...),
		Selected: s.selectedLocked(),
		Summary:  s.summary,
		Err:      s.err,
	}
}

func (s *Store) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}
