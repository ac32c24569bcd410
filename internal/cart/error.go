package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrVariantIDRequired  = errors.New("variant id is required")
	ErrCartItemIDRequired = errors.New("cart item id is required")
	ErrNothingSelected    = errors.New("select at least one cart item")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
)
