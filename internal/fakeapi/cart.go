package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	errNoItems       = errors.New("No items selected")
	errUnknownItem   = errors.New("Cart item not found")
	errUnknownCoupon = errors.New("Voucher not found")
)

// lineView must be called with mu held.
func (s *Server) lineView(l *cartLine) cartItemView {
	view := cartItemView{ID: l.ID, Quantity: l.Quantity}
	if _, v := s.findVariant(l.VariantID); v != nil {
		view.Variant = *v
	}
	return view
}

func (s *Server) findLine(userID, id string) (int, *cartLine) {
	for i, l := range s.cart {
		if l.ID == id && l.UserID == userID {
			return i, l
		}
	}
	return -1, nil
}

func (s *Server) getCart(c *gin.Context) {
	userID := c.GetString(ctxUserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]cartItemView, 0)
	for _, l := range s.cart {
		if l.UserID == userID {
			out = append(out, s.lineView(l))
		}
	}
	ok(c, http.StatusOK, "", out)
}

type addToCartRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity < 1 {
		fail(c, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, v := s.findVariant(req.VariantID)
	if v == nil {
		fail(c, http.StatusNotFound, "Variant not found")
		return
	}
	if req.Quantity > v.Stock {
		fail(c, http.StatusBadRequest, "Insufficient stock")
		return
	}

	line := &cartLine{
		ID:        s.nextID("cart"),
		UserID:    c.GetString(ctxUserID),
		VariantID: v.ID,
		Quantity:  req.Quantity,
	}
	s.cart = append(s.cart, line)
	ok(c, http.StatusCreated, "Added to cart", s.lineView(line))
}

type updateCartRequest struct {
	Quantity *int `json:"quantity"`
}

// updateCartItem deletes the line when quantity drops to zero or below and
// echoes quantity 0 back.
func (s *Server) updateCartItem(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		fail(c, http.StatusBadRequest, "Quantity is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, line := s.findLine(c.GetString(ctxUserID), c.Param("id"))
	if line == nil {
		fail(c, http.StatusNotFound, errUnknownItem.Error())
		return
	}

	if *req.Quantity <= 0 {
		view := s.lineView(line)
		view.Quantity = 0
		s.cart = append(s.cart[:i:i], s.cart[i+1:]...)
		ok(c, http.StatusOK, "Removed from cart", view)
		return
	}

	if _, v := s.findVariant(line.VariantID); v != nil && *req.Quantity > v.Stock {
		fail(c, http.StatusBadRequest, "Insufficient stock")
		return
	}
	line.Quantity = *req.Quantity
	ok(c, http.StatusOK, "Cart updated", s.lineView(line))
}

func (s *Server) removeCartItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, line := s.findLine(c.GetString(ctxUserID), c.Param("id"))
	if line == nil {
		fail(c, http.StatusNotFound, errUnknownItem.Error())
		return
	}
	s.cart = append(s.cart[:i:i], s.cart[i+1:]...)
	ok(c, http.StatusOK, "Removed from cart", nil)
}

type previewRequest struct {
	CartItemIDs     []string `json:"cartItemIds"`
	ShippingVoucher string   `json:"shippingVoucher"`
	ProductVoucher  string   `json:"productVoucher"`
}

// price computes the order figures for the selected lines. Must be called with mu held.
func (s *Server) price(userID string, req previewRequest) ([]*cartLine, pricing, error) {
	if len(req.CartItemIDs) == 0 {
		return nil, pricing{}, errNoItems
	}

	var (
		lines []*cartLine
		p     pricing
	)
	for _, id := range req.CartItemIDs {
		_, line := s.findLine(userID, id)
		if line == nil {
			return nil, pricing{}, errUnknownItem
		}
		_, v := s.findVariant(line.VariantID)
		if v == nil {
			return nil, pricing{}, errUnknownItem
		}
		lines = append(lines, line)
		p.Subtotal += v.effectivePrice() * int64(line.Quantity)
	}
	p.ShippingFee = s.opts.ShippingFee

	now := time.Now()
	apply := func(code, class string, base int64) (int64, error) {
		if code == "" {
			return 0, nil
		}
		for _, cp := range s.coupons {
			if !strings.EqualFold(cp.Code, code) || cp.Type != class || !cp.usable(now) {
				continue
			}
			if p.Subtotal < cp.MinOrderValue {
				return 0, fmt.Errorf("Minimum order for voucher %s is %d", cp.Code, cp.MinOrderValue)
			}
			return cp.discount(base), nil
		}
		return 0, errUnknownCoupon
	}

	var err error
	if p.ShippingDiscount, err = apply(req.ShippingVoucher, "SHIPPING", p.ShippingFee); err != nil {
		return nil, pricing{}, err
	}
	if p.ProductDiscount, err = apply(req.ProductVoucher, "PRODUCT", p.Subtotal); err != nil {
		return nil, pricing{}, err
	}
	p.Total = p.Subtotal + p.ShippingFee - p.ShippingDiscount - p.ProductDiscount
	return lines, p, nil
}

func (s *Server) previewCheckout(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, p, err := s.price(c.GetString(ctxUserID), req)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	ok(c, http.StatusOK, "", p)
}

func (s *Server) myCoupons(c *gin.Context) {
	class := strings.ToUpper(c.Query("type"))
	if class != "" && class != "SHIPPING" && class != "PRODUCT" {
		fail(c, http.StatusBadRequest, "Unknown voucher type")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := make([]*couponRecord, 0)
	for _, cp := range s.coupons {
		if cp.usable(now) && (class == "" || cp.Type == class) {
			out = append(out, cp)
		}
	}
	ok(c, http.StatusOK, "", out)
}
