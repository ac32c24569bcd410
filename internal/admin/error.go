package admin

import "errors"

var (
	ErrIDRequired = errors.New("id is required")

	// -- Product --
	ErrProductNameRequired  = errors.New("product name is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrNoVariants           = errors.New("at least one variant is required")
	ErrInvalidPrice         = errors.New("variant price must be positive")
	ErrDiscountAbovePrice   = errors.New("discount price must not exceed price")
	ErrNegativeStock        = errors.New("stock must not be negative")
	ErrCategoryNameRequired = errors.New("category name is required")

	// -- User --
	ErrInvalidRole = errors.New("role must be ADMIN or CUSTOMER")

	// -- Coupon --
	ErrCouponCodeRequired   = errors.New("voucher code is required")
	ErrInvalidCouponType    = errors.New("voucher type must be SHIPPING or PRODUCT")
	ErrInvalidDiscountType  = errors.New("discount type must be PERCENT or FIXED")
	ErrInvalidDiscountValue = errors.New("discount value must be positive")
	ErrPercentAbove100      = errors.New("percent discount must not exceed 100")
	ErrNegativeMinOrder     = errors.New("minimum order value must not be negative")

	// -- Export --
	ErrEmptySheet = errors.New("sheet is empty or missing header row")
)
