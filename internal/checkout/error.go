package checkout

import "errors"

var (
	ErrAddressRequired = errors.New("address is required")
	ErrPhoneRequired   = errors.New("phone is required")
	ErrInvalidPhone    = errors.New("phone number is not valid")
	ErrNoItemsSelected = errors.New("select at least one item to check out")
)
