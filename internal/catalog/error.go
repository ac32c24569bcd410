package catalog

import "errors"

var (
	// -- Query --
	ErrInvalidSort       = errors.New("unknown sort order")
	ErrInvalidPriceRange = errors.New("minimum price is above maximum price")
	ErrInvalidPage       = errors.New("page and size must not be negative")

	// -- Lookup --
	ErrProductIDRequired = errors.New("product id is required")
)
