package voucher

import "sync"

// Picker holds two independent single-select groups, one per Class.
type Picker struct {
	mu       sync.Mutex
	offers   map[Class][]Coupon
	selected map[Class]string
}

func NewPicker() *Picker {
	return &Picker{
		offers:   make(map[Class][]Coupon),
		selected: make(map[Class]string),
	}
}

// SetOffers replaces the coupons offered for class. A selected code no
// longer offered is dropped.
func (p *Picker) SetOffers(class Class, coupons []Coupon) error {
	if !class.Valid() {
		return ErrInvalidClass
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.offers[class] = append([]Coupon(nil), coupons...)
	if code := p.selected[class]; code != "" {
		if _, ok := p.findLocked(class, code); !ok {
			p.selected[class] = ""
		}
	}
	return nil
}

// Options lists the offers for class. An option is disabled exactly when
// subtotal is below its minimum order value.
func (p *Picker) Options(class Class, subtotal Money) []Option {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Option, 0, len(p.offers[class]))
	for _, c := range p.offers[class] {
		out = append(out, Option{
			Coupon:   c,
			Disabled: !c.Eligible(subtotal),
			Selected: c.Code == p.selected[class],
		})
	}
	return out
}

// Select picks code for class. A disabled or unknown code leaves the
// selection as it was.
func (p *Picker) Select(class Class, code string, subtotal Money) error {
	if !class.Valid() {
		return ErrInvalidClass
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.findLocked(class, code)
	if !ok {
		return ErrUnknownVoucher
	}
	if !c.Eligible(subtotal) {
		return ErrBelowMinOrderValue
	}
	p.selected[class] = c.Code
	return nil
}

func (p *Picker) Clear(class Class) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected[class] = ""
}

func (p *Picker) Selection() Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Selection{
		Shipping: p.selected[ClassShipping],
		Product:  p.selected[ClassProduct],
	}
}

func (p *Picker) findLocked(class Class, code string) (Coupon, bool) {
	for _, c := range p.offers[class] {
		if c.Code == code {
			return c, true
		}
	}
	return Coupon{}, false
}
