package fakeapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"warimas-storefront/internal/utils"

	"github.com/gin-gonic/gin"
)

type variantInput struct {
	ID            string  `json:"id"`
	ImageURL      string  `json:"imageUrl"`
	Price         int64   `json:"price"`
	DiscountPrice *int64  `json:"discountPrice"`
	Color         *string `json:"color"`
	Size          *string `json:"size"`
	Stock         int     `json:"stock"`
}

type productInput struct {
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	CategoryID  string         `json:"categoryId"`
	Thumbnail   string         `json:"thumbnail"`
	Variants    []variantInput `json:"variants"`
}

// validate must be called with mu held.
func (s *Server) validateProduct(in productInput) string {
	if strings.TrimSpace(in.Name) == "" {
		return "Product name is required"
	}
	if !s.categoryExists(in.CategoryID) {
		return "Category not found"
	}
	if len(in.Variants) == 0 {
		return "At least one variant is required"
	}
	for _, v := range in.Variants {
		if v.Price <= 0 {
			return "Variant price must be positive"
		}
		if v.DiscountPrice != nil && *v.DiscountPrice > v.Price {
			return "Discount price must not exceed price"
		}
		if v.Stock < 0 {
			return "Stock must not be negative"
		}
	}
	return ""
}

func (s *Server) categoryExists(id string) bool {
	for _, cat := range s.categories {
		if cat.ID == id {
			return true
		}
	}
	return false
}

func applyProductInput(p *productRecord, in productInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = in.Slug
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Name)
	}
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.Thumbnail = in.Thumbnail
	p.Variants = p.Variants[:0:0]
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, variantRecord{
			ID:            v.ID,
			ImageURL:      v.ImageURL,
			Price:         v.Price,
			DiscountPrice: v.DiscountPrice,
			Color:         v.Color,
			Size:          v.Size,
			Stock:         v.Stock,
		})
	}
}

func (s *Server) adminCreateProduct(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg := s.validateProduct(in); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	p := &productRecord{ID: s.nextID("prd"), CreatedAt: time.Now()}
	applyProductInput(p, in)
	s.linkVariants(p)
	s.products = append(s.products, p)
	ok(c, http.StatusCreated, "Product created", p)
}

func (s *Server) adminUpdateProduct(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(c.Param("id"))
	if p == nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	if msg := s.validateProduct(in); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	applyProductInput(p, in)
	s.linkVariants(p)
	ok(c, http.StatusOK, "Product updated", p)
}

func (s *Server) adminDeleteProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i:i], s.products[i+1:]...)
			ok(c, http.StatusOK, "Product deleted", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "Product not found")
}

type categoryInput struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId"`
}

func (s *Server) adminCreateCategory(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		fail(c, http.StatusBadRequest, "Category name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ParentID != nil && !s.categoryExists(*in.ParentID) {
		fail(c, http.StatusBadRequest, "Parent category not found")
		return
	}
	cat := &categoryRecord{ID: s.nextID("cat"), Name: strings.TrimSpace(in.Name), Slug: in.Slug, ParentID: in.ParentID}
	if cat.Slug == "" {
		cat.Slug = utils.Slugify(cat.Name)
	}
	s.categories = append(s.categories, cat)
	ok(c, http.StatusCreated, "Category created", cat)
}

func (s *Server) adminDeleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	for _, p := range s.products {
		if p.CategoryID == id {
			fail(c, http.StatusConflict, "Category still has products")
			return
		}
	}
	for i, cat := range s.categories {
		if cat.ID == id {
			s.categories = append(s.categories[:i:i], s.categories[i+1:]...)
			ok(c, http.StatusOK, "Category deleted", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) adminListUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]gin.H, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, userView(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i]["email"].(string) < out[j]["email"].(string) })
	ok(c, http.StatusOK, "", out)
}

func (s *Server) adminSetRole(c *gin.Context) {
	var in struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	role := strings.ToUpper(in.Role)
	if role != "ADMIN" && role != "CUSTOMER" {
		fail(c, http.StatusBadRequest, "Unknown role")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, found := s.users[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	u.Role = role
	u.RoleShape = "role"
	ok(c, http.StatusOK, "Role updated", userView(u))
}

func (s *Server) adminSetLocked(c *gin.Context) {
	var in struct {
		Locked bool `json:"locked"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, found := s.users[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if u.ID == c.GetString(ctxUserID) && in.Locked {
		fail(c, http.StatusBadRequest, "You cannot lock your own account")
		return
	}
	u.Locked = in.Locked
	if u.Locked {
		for token, sess := range s.refresh {
			if sess.UserID == u.ID {
				delete(s.refresh, token)
			}
		}
	}
	ok(c, http.StatusOK, "User updated", userView(u))
}

func (s *Server) adminListOrders(c *gin.Context) {
	status := strings.ToUpper(c.Query("status"))
	if status != "" && !orderStatuses[status] {
		fail(c, http.StatusBadRequest, "Unknown order status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, http.StatusOK, "", s.ordersFor("", status))
}

func (s *Server) adminSetOrderStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || !orderStatuses[strings.ToUpper(in.Status)] {
		fail(c, http.StatusBadRequest, "Unknown order status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.findOrder(c.Param("id"))
	if o == nil {
		fail(c, http.StatusNotFound, "Order not found")
		return
	}
	if o.Status == "CANCELLED" || o.Status == "DELIVERED" {
		fail(c, http.StatusBadRequest, "Order is already "+strings.ToLower(o.Status))
		return
	}
	s.setOrderStatus(o, strings.ToUpper(in.Status))
	ok(c, http.StatusOK, "Order updated", o)
}

func (s *Server) adminListCoupons(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, http.StatusOK, "", s.coupons)
}

func (s *Server) adminCreateCoupon(c *gin.Context) {
	var in couponRecord
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	switch {
	case in.Code == "":
		fail(c, http.StatusBadRequest, "Voucher code is required")
		return
	case in.Type != "SHIPPING" && in.Type != "PRODUCT":
		fail(c, http.StatusBadRequest, "Unknown voucher type")
		return
	case in.DiscountType != "PERCENT" && in.DiscountType != "FIXED":
		fail(c, http.StatusBadRequest, "Unknown discount type")
		return
	case in.DiscountValue <= 0 || (in.DiscountType == "PERCENT" && in.DiscountValue > 100):
		fail(c, http.StatusBadRequest, "Invalid discount value")
		return
	case in.MinOrderValue < 0:
		fail(c, http.StatusBadRequest, "Minimum order value must not be negative")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cp := range s.coupons {
		if cp.Code == in.Code {
			fail(c, http.StatusConflict, "Voucher code already exists")
			return
		}
	}
	in.ID = s.nextID("cpn")
	s.coupons = append(s.coupons, &in)
	ok(c, http.StatusCreated, "Voucher created", in)
}

func (s *Server) adminDeleteCoupon(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	for i, cp := range s.coupons {
		if cp.ID == id {
			s.coupons = append(s.coupons[:i:i], s.coupons[i+1:]...)
			ok(c, http.StatusOK, "Voucher deleted", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "Voucher not found")
}
