package cart

import "github.com/shopspring/decimal"

// Subtotal sums effective unit price times quantity over items.
func Subtotal(items []CartItem) Money {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// FallbackSummary is the local estimate used until the server prices the
// order: no fees or discounts, Total equal to Subtotal.
func FallbackSummary(items []CartItem) PriceSummary {
	sub := Subtotal(items)
	return PriceSummary{
		Subtotal:         sub,
		ShippingFee:      decimal.Zero,
		ShippingDiscount: decimal.Zero,
		ProductDiscount:  decimal.Zero,
		Total:            sub,
	}
}

// ServerSummary takes fees, discounts and total from the server verbatim.
// Subtotal stays the local figure over every item in the cart, selected or not.
func ServerSummary(items []CartItem, p PreCheckout) PriceSummary {
	return PriceSummary{
		Subtotal:         Subtotal(items),
		ShippingFee:      p.ShippingFee,
		ShippingDiscount: p.ShippingDiscount,
		ProductDiscount:  p.ProductDiscount,
		Total:            p.Total,
		FromServer:       true,
	}
}
