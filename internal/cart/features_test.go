package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/voucher"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
)

// stubRepository is a scripted server: lines get sequential ids and the
// pre-checkout reply is whatever the scenario configured.
type stubRepository struct {
	mu       sync.Mutex
	variants map[string]catalog.Variant
	seq      int
	preview  *PreCheckout
	lastReq  PreviewRequest
}

func (r *stubRepository) List(ctx context.Context) ([]CartItem, error) { return nil, nil }

func (r *stubRepository) Add(ctx context.Context, variantID string, quantity int) (*CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[variantID]
	if !ok {
		return nil, errors.New("Variant not found")
	}
	r.seq++
	return &CartItem{ID: "cart-" + strconv.Itoa(r.seq), Variant: v, Quantity: quantity}, nil
}

func (r *stubRepository) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) (*CartItem, error) {
	return &CartItem{ID: cartItemID, Quantity: quantity}, nil
}

func (r *stubRepository) Remove(ctx context.Context, cartItemID string) error { return nil }

func (r *stubRepository) PreviewCheckout(ctx context.Context, req PreviewRequest) (*PreCheckout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastReq = req
	if r.preview == nil {
		return nil, errors.New("no pricing configured")
	}
	p := *r.preview
	return &p, nil
}

type cartTestContext struct {
	repo   *stubRepository
	store  *Store
	picker *voucher.Picker
	err    error
}

func (c *cartTestContext) reset() {
	c.repo = &stubRepository{variants: make(map[string]catalog.Variant)}
	c.store = NewStore(c.repo, nil)
	c.picker = voucher.NewPicker()
	c.err = nil
}

func (c *cartTestContext) aVariantPriced(id string, price int) error {
	c.repo.variants[id] = catalog.Variant{ID: id, Price: decimal.NewFromInt(int64(price)), Stock: 100}
	return nil
}

func (c *cartTestContext) aVariantPricedWithDiscount(id string, price, discount int) error {
	d := decimal.NewFromInt(int64(discount))
	c.repo.variants[id] = catalog.Variant{ID: id, Price: decimal.NewFromInt(int64(price)), DiscountPrice: &d, Stock: 100}
	return nil
}

func (c *cartTestContext) iAddOfVariant(qty int, id string) error {
	_, err := c.store.AddToCart(context.Background(), id, qty)
	return err
}

func (c *cartTestContext) theServerPricesTheCheckout(fee, shipDisc, prodDisc, total int) error {
	c.repo.preview = &PreCheckout{
		ShippingFee:      decimal.NewFromInt(int64(fee)),
		ShippingDiscount: decimal.NewFromInt(int64(shipDisc)),
		ProductDiscount:  decimal.NewFromInt(int64(prodDisc)),
		Total:            decimal.NewFromInt(int64(total)),
	}
	return nil
}

func (c *cartTestContext) iRequestThePreCheckout(shipping, product string) error {
	c.store.SelectAll()
	_, err := c.store.FetchPreCheckout(context.Background(), c.store.SelectedIDs(), shipping, product)
	if err != nil {
		return err
	}
	if c.repo.lastReq.ShippingVoucher != shipping || c.repo.lastReq.ProductVoucher != product {
		return fmt.Errorf("vouchers not forwarded: %+v", c.repo.lastReq)
	}
	return nil
}

func (c *cartTestContext) aProductVoucherWithMinimum(code string, min int) error {
	return c.picker.SetOffers(voucher.ClassProduct, []voucher.Coupon{{
		Code:          code,
		Type:          voucher.ClassProduct,
		DiscountType:  voucher.DiscountPercent,
		DiscountValue: decimal.NewFromInt(10),
		MinOrderValue: decimal.NewFromInt(int64(min)),
		Active:        true,
	}})
}

func (c *cartTestContext) theProductVoucherIsDisabled(code string) error {
	for _, o := range c.picker.Options(voucher.ClassProduct, c.store.Summary().Subtotal) {
		if o.Code == code {
			if !o.Disabled {
				return fmt.Errorf("expected %s to be disabled at subtotal %s", code, c.store.Summary().Subtotal)
			}
			return nil
		}
	}
	return fmt.Errorf("voucher %s not offered", code)
}

func (c *cartTestContext) iPickTheProductVoucher(code string) error {
	c.err = c.picker.Select(voucher.ClassProduct, code, c.store.Summary().Subtotal)
	return nil
}

func (c *cartTestContext) noProductVoucherIsSelected() error {
	if got := c.picker.Selection().Product; got != "" {
		return fmt.Errorf("expected no product voucher, got %q", got)
	}
	if !errors.Is(c.err, voucher.ErrBelowMinOrderValue) {
		return fmt.Errorf("expected ErrBelowMinOrderValue, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfTheLastLine(qty int) error {
	items := c.store.Items()
	if len(items) == 0 {
		return errors.New("cart is empty")
	}
	return c.store.UpdateQuantity(context.Background(), items[len(items)-1].ID, qty)
}

func (c *cartTestContext) theCartIsEmpty() error {
	if n := c.store.Len(); n != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", n)
	}
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := c.store.Len(); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theSubtotalIs(v int) error {
	if got := c.store.Summary().Subtotal; !got.Equal(decimal.NewFromInt(int64(v))) {
		return fmt.Errorf("expected subtotal %d, got %s", v, got)
	}
	return nil
}

func (c *cartTestContext) theTotalIs(v int) error {
	if got := c.store.Summary().Total; !got.Equal(decimal.NewFromInt(int64(v))) {
		return fmt.Errorf("expected total %d, got %s", v, got)
	}
	return nil
}

func (c *cartTestContext) theSummaryComesFromTheServer() error {
	if !c.store.Summary().FromServer {
		return errors.New("expected server pricing")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a variant "([^"]*)" priced (\d+)$`, tc.aVariantPriced)
	ctx.Step(`^a variant "([^"]*)" priced (\d+) with discount price (\d+)$`, tc.aVariantPricedWithDiscount)
	ctx.Step(`^the server prices the checkout with shipping fee (\d+), shipping discount (\d+), product discount (\d+) and total (\d+)$`, tc.theServerPricesTheCheckout)
	ctx.Step(`^a product voucher "([^"]*)" with minimum order value (\d+)$`, tc.aProductVoucherWithMinimum)

	// When steps
	ctx.Step(`^I add (\d+) of variant "([^"]*)" to the cart$`, tc.iAddOfVariant)
	ctx.Step(`^I request the pre-checkout for all items with vouchers "([^"]*)" and "([^"]*)"$`, tc.iRequestThePreCheckout)
	ctx.Step(`^I pick the product voucher "([^"]*)"$`, tc.iPickTheProductVoucher)
	ctx.Step(`^I set the quantity of the last line to (-?\d+)$`, tc.iSetTheQuantityOfTheLastLine)

	// Then steps
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
	ctx.Step(`^the summary comes from the server$`, tc.theSummaryComesFromTheServer)
	ctx.Step(`^the product voucher "([^"]*)" is disabled$`, tc.theProductVoucherIsDisabled)
	ctx.Step(`^no product voucher is selected$`, tc.noProductVoucherIsSelected)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart has (\d+) lines$`, tc.theCartHasLines)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
