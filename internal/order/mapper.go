package order

import "strings"

// ParseStatus maps a status label to an OrderStatus. The single-L spelling
// older endpoints still send is accepted.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if s == "CANCELED" {
		s = StatusCancelled
	}
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func normalize(o *Order) {
	if st, err := ParseStatus(string(o.Status)); err == nil {
		o.Status = st
	}
}

func normalizeAll(orders []Order) {
	for i := range orders {
		normalize(&orders[i])
	}
}
