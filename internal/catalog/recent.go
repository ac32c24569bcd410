package catalog

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultRecentlyViewedSize = 20

// RecentlyViewed keeps the last N products the user opened.
type RecentlyViewed struct {
	cache *lru.Cache[string, Product]
}

func NewRecentlyViewed(size int) *RecentlyViewed {
	if size <= 0 {
		size = DefaultRecentlyViewedSize
	}
	// only errors on a non-positive size
	cache, _ := lru.New[string, Product](size)
	return &RecentlyViewed{cache: cache}
}

// Add records p as the most recent view. Variants are dropped to keep entries small.
func (r *RecentlyViewed) Add(p Product) {
	p.MinPrice = p.LowestPrice()
	p.Variants = nil
	p.Description = ""
	r.cache.Add(p.ID, p)
}

// List returns products most recent first.
func (r *RecentlyViewed) List() []Product {
	keys := r.cache.Keys()
	out := make([]Product, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if p, ok := r.cache.Peek(keys[i]); ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *RecentlyViewed) Remove(id string) {
	r.cache.Remove(id)
}

func (r *RecentlyViewed) Purge() {
	r.cache.Purge()
}

func (r *RecentlyViewed) Len() int {
	return r.cache.Len()
}

// Restore loads products given most recent first, e.g. from List of a previous run.
func (r *RecentlyViewed) Restore(products []Product) {
	for i := len(products) - 1; i >= 0; i-- {
		r.Add(products[i])
	}
}
