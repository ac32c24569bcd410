package order

import (
	"time"

	"warimas-storefront/internal/catalog"
)

type Money = catalog.Money

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipping  OrderStatus = "SHIPPING"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type Order struct {
	ID               string      `json:"id"`
	Code             string      `json:"code"`
	Status           OrderStatus `json:"status"`
	Address          string      `json:"address"`
	Phone            string      `json:"phone"`
	Items            []OrderItem `json:"items"`
	ShippingVoucher  string      `json:"shippingVoucher,omitempty"`
	ProductVoucher   string      `json:"productVoucher,omitempty"`
	Subtotal         Money       `json:"subtotal"`
	ShippingFee      Money       `json:"shippingFee"`
	ShippingDiscount Money       `json:"shippingDiscount"`
	ProductDiscount  Money       `json:"productDiscount"`
	Total            Money       `json:"total"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Cancellable reports whether the customer may still cancel the order.
func (o Order) Cancellable() bool {
	return o.Status == StatusPending
}

func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

type OrderItem struct {
	VariantID   string `json:"variantId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unitPrice"`
}
