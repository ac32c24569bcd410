package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 12

func (s *Server) findProduct(id string) *productRecord {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) findVariant(id string) (*productRecord, *variantRecord) {
	for _, p := range s.products {
		for i := range p.Variants {
			if p.Variants[i].ID == id {
				return p, &p.Variants[i]
			}
		}
	}
	return nil, nil
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func queryAmount(c *gin.Context, key string) (int64, bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, false, false
	}
	return int64(f), true, true
}

func (s *Server) listProducts(c *gin.Context) {
	page, pageOK := queryInt(c, "page", 1)
	size, sizeOK := queryInt(c, "size", defaultPageSize)
	minPrice, hasMin, minOK := queryAmount(c, "minPrice")
	maxPrice, hasMax, maxOK := queryAmount(c, "maxPrice")
	if !pageOK || !sizeOK || !minOK || !maxOK {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	keyword := strings.ToLower(strings.TrimSpace(c.Query("keyword")))
	categoryID := c.Query("categoryId")

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]productRecord, 0, len(s.products))
	for _, p := range s.products {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(p.Name), keyword) &&
			!strings.Contains(strings.ToLower(p.Description), keyword) {
			continue
		}
		if categoryID != "" && p.CategoryID != categoryID && !s.isDescendant(p.CategoryID, categoryID) {
			continue
		}
		if hasMin && p.MinPrice < minPrice {
			continue
		}
		if hasMax && p.MinPrice > maxPrice {
			continue
		}
		matched = append(matched, *p)
	}

	switch c.Query("sort") {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].MinPrice < matched[j].MinPrice })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].MinPrice > matched[j].MinPrice })
	case "name":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	case "", "newest":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	default:
		fail(c, http.StatusBadRequest, "Unknown sort order")
		return
	}

	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	ok(c, http.StatusOK, "", gin.H{
		"items": matched[start:end],
		"page":  page,
		"size":  size,
		"total": total,
	})
}

// isDescendant must be called with mu held.
func (s *Server) isDescendant(categoryID, ancestorID string) bool {
	for depth := 0; depth < 10; depth++ {
		var parent *string
		for _, cat := range s.categories {
			if cat.ID == categoryID {
				parent = cat.ParentID
				break
			}
		}
		if parent == nil {
			return false
		}
		if *parent == ancestorID {
			return true
		}
		categoryID = *parent
	}
	return false
}

func (s *Server) getProduct(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(c.Param("id"))
	if p == nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	ok(c, http.StatusOK, "", p)
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, http.StatusOK, "", s.categories)
}

func (s *Server) listFavorites(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*productRecord, 0)
	for _, id := range s.favorites[c.GetString(ctxUserID)] {
		if p := s.findProduct(id); p != nil {
			out = append(out, p)
		}
	}
	ok(c, http.StatusOK, "", out)
}

func (s *Server) addFavorite(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	productID := c.Param("productId")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findProduct(productID) == nil {
		fail(c, http.StatusNotFound, "Product not found")
		return
	}
	for _, id := range s.favorites[userID] {
		if id == productID {
			ok(c, http.StatusOK, "Already in favorites", nil)
			return
		}
	}
	s.favorites[userID] = append(s.favorites[userID], productID)
	ok(c, http.StatusCreated, "Added to favorites", nil)
}

func (s *Server) removeFavorite(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	productID := c.Param("productId")

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.favorites[userID]
	for i, id := range ids {
		if id == productID {
			s.favorites[userID] = append(ids[:i:i], ids[i+1:]...)
			ok(c, http.StatusOK, "Removed from favorites", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "Product is not in favorites")
}
