package fakeapi

import "time"

// Server-side records. Amounts are whole rupiah.

type userRecord struct {
	ID           string
	Email        string
	FullName     string
	Phone        string
	PasswordHash []byte
	Role         string // ADMIN or CUSTOMER
	// RoleShape picks the legacy payload shape the role is reported in.
	RoleShape string
	Locked    bool
}

type variantRecord struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	Price         int64   `json:"price"`
	DiscountPrice *int64  `json:"discountPrice,omitempty"`
	Color         *string `json:"color,omitempty"`
	Size          *string `json:"size,omitempty"`
	Stock         int     `json:"stock"`
}

func (v variantRecord) effectivePrice() int64 {
	if v.DiscountPrice != nil && *v.DiscountPrice < v.Price {
		return *v.DiscountPrice
	}
	return v.Price
}

type productRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	CategoryID  string          `json:"categoryId"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Variants    []variantRecord `json:"variants"`
	MinPrice    int64           `json:"minPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (p *productRecord) refreshMinPrice() {
	p.MinPrice = 0
	for i, v := range p.Variants {
		if ep := v.effectivePrice(); i == 0 || ep < p.MinPrice {
			p.MinPrice = ep
		}
	}
}

type categoryRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId,omitempty"`
}

type cartLine struct {
	ID        string
	UserID    string
	VariantID string
	Quantity  int
}

type cartItemView struct {
	ID       string        `json:"id"`
	Quantity int           `json:"quantity"`
	Variant  variantRecord `json:"variant"`
}

type couponRecord struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Type          string     `json:"type"`
	Description   string     `json:"description,omitempty"`
	DiscountType  string     `json:"discountType"`
	DiscountValue int64      `json:"discountValue"`
	MaxDiscount   *int64     `json:"maxDiscount,omitempty"`
	MinOrderValue int64      `json:"minOrderValue"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Active        bool       `json:"active"`
}

func (c couponRecord) usable(now time.Time) bool {
	return c.Active && (c.ExpiresAt == nil || now.Before(*c.ExpiresAt))
}

// discount applies the coupon to base. Percent discounts respect MaxDiscount;
// no discount exceeds base.
func (c couponRecord) discount(base int64) int64 {
	var d int64
	switch c.DiscountType {
	case "PERCENT":
		d = base * c.DiscountValue / 100
		if c.MaxDiscount != nil && d > *c.MaxDiscount {
			d = *c.MaxDiscount
		}
	default:
		d = c.DiscountValue
	}
	if d > base {
		d = base
	}
	return d
}

type orderItemRecord struct {
	VariantID   string `json:"variantId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
}

type orderRecord struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	UserID           string            `json:"userId"`
	Status           string            `json:"status"`
	Address          string            `json:"address"`
	Phone            string            `json:"phone"`
	Items            []orderItemRecord `json:"items"`
	ShippingVoucher  string            `json:"shippingVoucher,omitempty"`
	ProductVoucher   string            `json:"productVoucher,omitempty"`
	Subtotal         int64             `json:"subtotal"`
	ShippingFee      int64             `json:"shippingFee"`
	ShippingDiscount int64             `json:"shippingDiscount"`
	ProductDiscount  int64             `json:"productDiscount"`
	Total            int64             `json:"total"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type pricing struct {
	Subtotal         int64 `json:"subtotal"`
	ShippingFee      int64 `json:"shippingFee"`
	ShippingDiscount int64 `json:"shippingDiscount"`
	ProductDiscount  int64 `json:"productDiscount"`
	Total            int64 `json:"total"`
}

type chatFrame struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sentAt"`
	Kind           string    `json:"kind"`
}
