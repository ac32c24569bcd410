package favorite

import "errors"

var ErrProductIDRequired = errors.New("product id is required")
