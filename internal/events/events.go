package events

import (
	"context"
	"sync"
	"time"

	"warimas-storefront/internal/logger"

	"go.uber.org/zap"
)

const (
	TypeCartItemAdded   = "cart.item_added"
	TypeCartItemRemoved = "cart.item_removed"
	TypeOrderPlaced     = "checkout.order_placed"
)

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

type CartItemAdded struct {
	CartItemID string `json:"cart_item_id"`
	VariantID  string `json:"variant_id"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
}

type CartItemRemoved struct {
	CartItemID string `json:"cart_item_id"`
}

type OrderPlaced struct {
	OrderID   string `json:"order_id"`
	Code      string `json:"code"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
	Close() error
}

// Emit publishes e and only logs a failure. Storefront flows never fail because
// the event sink is down.
func Emit(ctx context.Context, p Publisher, key string, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, e); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish event",
			zap.String("layer", "events"),
			zap.String("type", e.Type),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	keys   []string
	Err    error
}

func (r *Recorder) Publish(ctx context.Context, key string, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	r.keys = append(r.keys, key)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}
