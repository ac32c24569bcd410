package cart

import "warimas-storefront/internal/catalog"

// cartItemDTO is a cart line as the server sends it. Older endpoints send
// only variantId and leave the variant object out.
type cartItemDTO struct {
	ID        string           `json:"id"`
	Quantity  int              `json:"quantity"`
	VariantID string           `json:"variantId"`
	Variant   *catalog.Variant `json:"variant"`
}

func mapCartItem(d cartItemDTO) CartItem {
	item := CartItem{ID: d.ID, Quantity: d.Quantity}
	if d.Variant != nil {
		item.Variant = *d.Variant
	}
	if item.Variant.ID == "" {
		item.Variant.ID = d.VariantID
	}
	return item
}

func mapCartItems(ds []cartItemDTO) []CartItem {
	items := make([]CartItem, 0, len(ds))
	for _, d := range ds {
		items = append(items, mapCartItem(d))
	}
	return items
}
