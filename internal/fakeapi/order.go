package fakeapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"warimas-storefront/internal/utils"

	"github.com/gin-gonic/gin"
)

var orderStatuses = map[string]bool{
	"PENDING":   true,
	"CONFIRMED": true,
	"SHIPPING":  true,
	"DELIVERED": true,
	"CANCELLED": true,
}

type checkoutRequest struct {
	Address         string   `json:"address"`
	Phone           string   `json:"phone"`
	CartItemIDs     []string `json:"cartItemIds"`
	ShippingVoucher string   `json:"shippingVoucher"`
	ProductVoucher  string   `json:"productVoucher"`
}

func (s *Server) checkoutCOD(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		fail(c, http.StatusBadRequest, "Address is required")
		return
	}
	if strings.TrimSpace(req.Phone) == "" {
		fail(c, http.StatusBadRequest, "Phone is required")
		return
	}

	userID := c.GetString(ctxUserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, p, err := s.price(userID, previewRequest{
		CartItemIDs:     req.CartItemIDs,
		ShippingVoucher: req.ShippingVoucher,
		ProductVoucher:  req.ProductVoucher,
	})
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]orderItemRecord, 0, len(lines))
	for _, l := range lines {
		_, v := s.findVariant(l.VariantID)
		if l.Quantity > v.Stock {
			fail(c, http.StatusBadRequest, "Insufficient stock for "+v.ProductName)
			return
		}
		items = append(items, orderItemRecord{
			VariantID:   v.ID,
			ProductName: v.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   v.effectivePrice(),
		})
	}

	// commit: stock, cart, order
	submitted := make(map[string]bool, len(lines))
	for _, l := range lines {
		_, v := s.findVariant(l.VariantID)
		v.Stock -= l.Quantity
		submitted[l.ID] = true
	}
	kept := s.cart[:0:0]
	for _, l := range s.cart {
		if !submitted[l.ID] {
			kept = append(kept, l)
		}
	}
	s.cart = kept

	now := time.Now()
	o := &orderRecord{
		ID:               s.nextID("ord"),
		Code:             utils.GenerateOrderCode(now),
		UserID:           userID,
		Status:           "PENDING",
		Address:          strings.TrimSpace(req.Address),
		Phone:            utils.NormalizePhoneID(req.Phone),
		Items:            items,
		ShippingVoucher:  req.ShippingVoucher,
		ProductVoucher:   req.ProductVoucher,
		Subtotal:         p.Subtotal,
		ShippingFee:      p.ShippingFee,
		ShippingDiscount: p.ShippingDiscount,
		ProductDiscount:  p.ProductDiscount,
		Total:            p.Total,
		CreatedAt:        now,
	}
	s.orders = append(s.orders, o)

	ok(c, http.StatusCreated, "Order placed", o)
}

// ordersFor must be called with mu held. An empty userID matches everyone.
func (s *Server) ordersFor(userID, status string) []*orderRecord {
	out := make([]*orderRecord, 0)
	for _, o := range s.orders {
		if (userID == "" || o.UserID == userID) && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Server) myOrders(c *gin.Context) {
	status := strings.ToUpper(c.Query("status"))
	if status != "" && !orderStatuses[status] {
		fail(c, http.StatusBadRequest, "Unknown order status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, http.StatusOK, "", s.ordersFor(c.GetString(ctxUserID), status))
}

func (s *Server) findOrder(id string) *orderRecord {
	for _, o := range s.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *Server) getOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findOrder(c.Param("id"))
	if o == nil || o.UserID != c.GetString(ctxUserID) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	ok(c, http.StatusOK, "", o)
}

func (s *Server) cancelOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findOrder(c.Param("id"))
	if o == nil || o.UserID != c.GetString(ctxUserID) {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	if o.Status != "PENDING" {
		fail(c, http.StatusBadRequest, "Only pending orders can be cancelled")
		return
	}
	s.setOrderStatus(o, "CANCELLED")
	ok(c, http.StatusOK, "Order cancelled", o)
}

// setOrderStatus must be called with mu held. Cancelling puts stock back.
func (s *Server) setOrderStatus(o *orderRecord, status string) {
	if status == "CANCELLED" && o.Status != "CANCELLED" {
		for _, it := range o.Items {
			if _, v := s.findVariant(it.VariantID); v != nil {
				v.Stock += it.Quantity
			}
		}
	}
	o.Status = status
	s.hub.notify(o.UserID, "Order "+o.Code+" is now "+status)
}
