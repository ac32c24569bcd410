package fakeapi

import (
	"time"

	"warimas-storefront/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// Demo accounts created by Options.Seed.
const (
	CustomerEmail    = "budi@warimas.id"
	CustomerPassword = "password123"
	AdminEmail       = "admin@warimas.id"
	AdminPassword    = "admin123"
)

func int64Ptr(v int64) *int64 { return &v }

func (s *Server) seed() {
	now := time.Now()

	s.addUser("Budi Santoso", CustomerEmail, CustomerPassword, "081234567890", "CUSTOMER", "roles")
	s.addUser("Admin Warimas", AdminEmail, AdminPassword, "", "ADMIN", "authorities")

	s.categories = []*categoryRecord{
		{ID: "cat-1", Name: "Pakaian", Slug: "pakaian"},
		{ID: "cat-2", Name: "Aksesoris", Slug: "aksesoris"},
		{ID: "cat-3", Name: "Batik", Slug: "batik", ParentID: utils.StrPtr("cat-1")},
	}

	s.products = []*productRecord{
		{
			ID: "prd-1", Name: "Kemeja Batik", Slug: "kemeja-batik", CategoryID: "cat-3",
			Description: "Kemeja batik tulis lengan panjang",
			Thumbnail:   "https://img.warimas.id/kemeja-batik.jpg",
			CreatedAt:   now.Add(-72 * time.Hour),
			Variants: []variantRecord{
				{ID: "var-1", Price: 100000, DiscountPrice: int64Ptr(80000), Color: utils.StrPtr("Biru"), Size: utils.StrPtr("M"), Stock: 10},
				{ID: "var-2", Price: 100000, Color: utils.StrPtr("Merah"), Size: utils.StrPtr("L"), Stock: 5},
			},
		},
		{
			ID: "prd-2", Name: "Topi Rajut", Slug: "topi-rajut", CategoryID: "cat-2",
			Description: "Topi rajut hangat",
			CreatedAt:   now.Add(-48 * time.Hour),
			Variants: []variantRecord{
				{ID: "var-3", Price: 50000, Color: utils.StrPtr("Hitam"), Stock: 3},
			},
		},
		{
			ID: "prd-3", Name: "Celana Chino", Slug: "celana-chino", CategoryID: "cat-1",
			CreatedAt: now.Add(-24 * time.Hour),
			Variants: []variantRecord{
				{ID: "var-4", Price: 250000, DiscountPrice: int64Ptr(300000), Size: utils.StrPtr("32"), Stock: 0},
				{ID: "var-5", Price: 250000, Size: utils.StrPtr("34"), Stock: 7},
			},
		},
	}
	for _, p := range s.products {
		s.linkVariants(p)
	}

	s.coupons = []*couponRecord{
		{ID: "cpn-1", Code: "SHIP20", Type: "SHIPPING", Description: "Potongan ongkir 20rb", DiscountType: "FIXED", DiscountValue: 20000, MinOrderValue: 100000, Active: true},
		{ID: "cpn-2", Code: "ONGKIR50", Type: "SHIPPING", Description: "Ongkir 50%", DiscountType: "PERCENT", DiscountValue: 50, MaxDiscount: int64Ptr(15000), MinOrderValue: 0, Active: true},
		{ID: "cpn-3", Code: "DISC5", Type: "PRODUCT", Description: "Diskon 5rb", DiscountType: "FIXED", DiscountValue: 5000, MinOrderValue: 150000, Active: true},
		{ID: "cpn-4", Code: "BIG10", Type: "PRODUCT", Description: "Diskon 10% min 200rb", DiscountType: "PERCENT", DiscountValue: 10, MaxDiscount: int64Ptr(50000), MinOrderValue: 200000, Active: true},
		{ID: "cpn-5", Code: "OLD", Type: "PRODUCT", DiscountType: "FIXED", DiscountValue: 1000, Active: false},
	}
}

// addUser must be called with mu held or before the server is shared.
func (s *Server) addUser(name, email, password, phone, role, shape string) *userRecord {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &userRecord{
		ID:           s.nextID("usr"),
		Email:        email,
		FullName:     name,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		RoleShape:    shape,
	}
	s.users[u.ID] = u
	return u
}

// AddUser registers an account, e.g. for tests that need a locked user.
func (s *Server) AddUser(name, email, password, role string, locked bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUser(name, email, password, "", role, "role")
	u.Locked = locked
	return u.ID
}

func (s *Server) linkVariants(p *productRecord) {
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = s.nextID("var")
		}
		p.Variants[i].ProductID = p.ID
		p.Variants[i].ProductName = p.Name
		if p.Variants[i].ImageURL == "" {
			p.Variants[i].ImageURL = p.Thumbnail
		}
	}
	p.refreshMinPrice()
}
