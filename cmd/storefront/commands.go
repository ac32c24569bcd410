package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"warimas-storefront/internal/apiclient"
	"warimas-storefront/internal/cart"
	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/chat"
	"warimas-storefront/internal/checkout"
	"warimas-storefront/internal/order"
	"warimas-storefront/internal/utils"
	"warimas-storefront/internal/voucher"

	"github.com/shopspring/decimal"
)

func flags(c *cli, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func idr(m decimal.Decimal) string { return utils.FormatIDR(m) }

// moneyFlag parses an optional rupiah amount.
type moneyFlag struct{ v *decimal.Decimal }

func (m *moneyFlag) String() string {
	if m.v == nil {
		return ""
	}
	return m.v.String()
}

func (m *moneyFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.v = &d
	return nil
}

// -- Auth --

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	u, err := c.app.Auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "logged in as %s (%s)\n", u.FullName, u.Role)
	return nil
}

func cmdLogout(ctx context.Context, c *cli, args []string) error {
	c.app.Cart.Clear()
	err := c.app.Auth.Logout(ctx)
	fmt.Fprintln(c.out, "logged out")
	return err
}

func cmdWhoami(ctx context.Context, c *cli, args []string) error {
	u, err := c.app.Auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s <%s> %s\n", u.FullName, u.Email, u.Role)
	return nil
}

// -- Catalog --

func printProducts(w io.Writer, products []catalog.Product) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tFROM")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, idr(p.LowestPrice()))
	}
	tw.Flush()
}

func cmdProducts(ctx context.Context, c *cli, args []string) error {
	var (
		q                  catalog.Query
		minPrice, maxPrice moneyFlag
	)
	fs := flags(c, "products")
	fs.StringVar(&q.Keyword, "q", "", "keyword")
	fs.StringVar(&q.CategoryID, "category", "", "category id")
	fs.Var(&minPrice, "min", "minimum price")
	fs.Var(&maxPrice, "max", "maximum price")
	fs.StringVar(&q.Sort, "sort", "", "newest, price_asc, price_desc or name")
	fs.IntVar(&q.Page, "page", 0, "page number")
	fs.IntVar(&q.Size, "size", 0, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	q.MinPrice, q.MaxPrice = minPrice.v, maxPrice.v

	page, err := c.app.Catalog.Search(ctx, q)
	if err != nil {
		return err
	}
	printProducts(c.out, page.Items)
	fmt.Fprintf(c.out, "page %d/%d, %d products\n", page.Page, page.TotalPages(), page.Total)
	return nil
}

func cmdProduct(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := c.app.Catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s (%s)\n", p.Name, p.ID)
	if p.Description != "" {
		fmt.Fprintln(c.out, p.Description)
	}
	tw := table(c.out)
	fmt.Fprintln(tw, "VARIANT\tOPTION\tPRICE\tSTOCK")
	for _, v := range p.Variants {
		price := idr(v.EffectivePrice())
		if v.OnSale() {
			price += " (was " + idr(v.Price) + ")"
		}
		stock := strconv.Itoa(v.Stock)
		if !v.InStock() {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Label(), price, stock)
	}
	return tw.Flush()
}

func cmdCategories(ctx context.Context, c *cli, args []string) error {
	cats, err := c.app.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	tw := table(c.out)
	fmt.Fprintln(tw, "ID\tNAME\tPARENT")
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cat.ID, cat.Name, utils.PtrString(cat.ParentID))
	}
	return tw.Flush()
}

func cmdRecent(ctx context.Context, c *cli, args []string) error {
	recent := c.app.Catalog.Recent().List()
	if len(recent) == 0 {
		fmt.Fprintln(c.out, "nothing viewed yet")
		return nil
	}
	printProducts(c.out, recent)
	return nil
}

// -- Favorites --

func cmdFavorites(ctx context.Context, c *cli, args []string) error {
	products, err := c.app.Favorites.List(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(c.out, "no favorites")
		return nil
	}
	printProducts(c.out, products)
	return nil
}

func cmdFavAdd(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.app.Favorites.Add(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "added to favorites")
	return nil
}

func cmdFavRemove(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.app.Favorites.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "removed from favorites")
	return nil
}

// -- Cart --

func printCart(w io.Writer, s *cart.Store) {
	items := s.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}

	tw := table(w)
	fmt.Fprintln(tw, "\tID\tPRODUCT\tOPTION\tQTY\tPRICE\tLINE")
	for _, it := range items {
		mark := " "
		if s.IsSelected(it.ID) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			mark, it.ID, it.Variant.ProductName, it.Variant.Label(), it.Quantity,
			idr(it.Variant.EffectivePrice()), idr(it.LineTotal()))
	}
	tw.Flush()
	printSummary(w, s.Summary())
}

func printSummary(w io.Writer, sum cart.PriceSummary) {
	tw := table(w)
	fmt.Fprintf(tw, "Subtotal\t%s\n", idr(sum.Subtotal))
	if sum.FromServer {
		fmt.Fprintf(tw, "Shipping\t%s\n", idr(sum.ShippingFee))
		fmt.Fprintf(tw, "Shipping discount\t-%s\n", idr(sum.ShippingDiscount))
		fmt.Fprintf(tw, "Product discount\t-%s\n", idr(sum.ProductDiscount))
	}
	fmt.Fprintf(tw, "Total\t%s\n", idr(sum.Total))
	tw.Flush()
}

// ensureCart loads the server cart once per process.
func ensureCart(ctx context.Context, c *cli) error {
	if c.app.Cart.Len() > 0 {
		return nil
	}
	return c.app.Cart.FetchCart(ctx)
}

func cmdCart(ctx context.Context, c *cli, args []string) error {
	if err := c.app.Cart.FetchCart(ctx); err != nil {
		return err
	}
	printCart(c.out, c.app.Cart)
	return nil
}

func cmdCartAdd(ctx context.Context, c *cli, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errUsage
		}
		qty = n
	}
	if err := ensureCart(ctx, c); err != nil {
		return err
	}
	item, err := c.app.Cart.AddToCart(ctx, args[0], qty)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "added %d x %s as %s\n", item.Quantity, item.Variant.ProductName, item.ID)
	return nil
}

func cmdCartQty(ctx context.Context, c *cli, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	if err := ensureCart(ctx, c); err != nil {
		return err
	}
	if err := c.app.Cart.UpdateQuantity(ctx, args[0], qty); err != nil {
		return err
	}
	printCart(c.out, c.app.Cart)
	return nil
}

func cmdCartRemove(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := ensureCart(ctx, c); err != nil {
		return err
	}
	if err := c.app.Cart.RemoveFromCart(ctx, args[0]); err != nil {
		return err
	}
	printCart(c.out, c.app.Cart)
	return nil
}

// -- Vouchers and pricing --

func loadOffers(ctx context.Context, c *cli, class voucher.Class) error {
	coupons, err := c.app.Vouchers.MyCoupons(ctx, class)
	if err != nil {
		return err
	}
	return c.app.Picker.SetOffers(class, coupons)
}

func cmdCoupons(ctx context.Context, c *cli, args []string) error {
	fs := flags(c, "coupons")
	only := fs.String("type", "", "SHIPPING or PRODUCT")
	if err := parse(fs, args); err != nil {
		return err
	}

	classes := []voucher.Class{voucher.ClassShipping, voucher.ClassProduct}
	if *only != "" {
		classes = []voucher.Class{voucher.Class(strings.ToUpper(*only))}
	}
	if err := ensureCart(ctx, c); err != nil {
		return err
	}
	subtotal := c.app.Cart.Summary().Subtotal

	tw := table(c.out)
	fmt.Fprintln(tw, "\tTYPE\tCODE\tMIN ORDER\tESTIMATE\tNOTE")
	for _, class := range classes {
		if err := loadOffers(ctx, c, class); err != nil {
			return err
		}
		for _, opt := range c.app.Picker.Options(class, subtotal) {
			mark := " "
			if opt.Selected {
				mark = "*"
			}
			note := opt.Description
			if opt.Disabled {
				note = "spend " + idr(opt.MinOrderValue) + " to use"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				mark, class, opt.Code, idr(opt.MinOrderValue), idr(opt.EstimateDiscount(subtotal)), note)
		}
	}
	return tw.Flush()
}

// pickVouchers selects the requested codes, checking the minimum order
// value against the cart subtotal.
func pickVouchers(ctx context.Context, c *cli, ship, product string) (voucher.Selection, error) {
	subtotal := c.app.Cart.Summary().Subtotal
	for class, code := range map[voucher.Class]string{voucher.ClassShipping: ship, voucher.ClassProduct: product} {
		if code == "" {
			continue
		}
		if err := loadOffers(ctx, c, class); err != nil {
			return voucher.Selection{}, err
		}
		if err := c.app.Picker.Select(class, strings.ToUpper(code), subtotal); err != nil {
			return voucher.Selection{}, fmt.Errorf("%s voucher %s: %w", strings.ToLower(string(class)), code, err)
		}
	}
	return c.app.Picker.Selection(), nil
}

// selectLines selects ids, or every line when ids is empty.
func selectLines(c *cli, ids []string) {
	if len(ids) == 0 {
		c.app.Cart.SelectAll()
		return
	}
	c.app.Cart.ClearSelection()
	c.app.Cart.Select(ids...)
}

func cmdPreview(ctx context.Context, c *cli, args []string) error {
	fs := flags(c, "preview")
	ship := fs.String("ship", "", "shipping voucher code")
	product := fs.String("product", "", "product voucher code")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := ensureCart(ctx, c); err != nil {
		return err
	}
	selectLines(c, fs.Args())

	sel, err := pickVouchers(ctx, c, *ship, *product)
	if err != nil {
		return err
	}
	sum, err := c.app.Cart.FetchPreCheckout(ctx, c.app.Cart.SelectedIDs(), sel.Shipping, sel.Product)
	if err != nil {
		return err
	}
	printSummary(c.out, *sum)
	return nil
}

func cmdCheckout(ctx context.Context, c *cli, args []string) error {
	fs := flags(c, "checkout")
	address := fs.String("address", "", "delivery address")
	phone := fs.String("phone", "", "contact phone")
	ship := fs.String("ship", "", "shipping voucher code")
	product := fs.String("product", "", "product voucher code")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := ensureCart(ctx, c); err != nil {
		return err
	}
	if len(fs.Args()) > 0 || len(c.app.Cart.SelectedIDs()) == 0 {
		selectLines(c, fs.Args())
	}

	sel, err := pickVouchers(ctx, c, *ship, *product)
	if err != nil {
		return err
	}
	o, err := c.app.Checkout.Submit(ctx, checkout.Request{
		Address:         *address,
		Phone:           *phone,
		CartItemIDs:     c.app.Cart.SelectedIDs(),
		ShippingVoucher: sel.Shipping,
		ProductVoucher:  sel.Product,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %s placed, total %s\n", o.Code, idr(o.Total))

	// the order is placed either way, a failed listing only skips the view
	orders, err := c.app.Orders.List(ctx, "")
	if err != nil {
		fmt.Fprintf(c.out, "orders unavailable: %s\n", apiclient.Message(err))
		return nil
	}
	printOrders(c.out, orders)
	return nil
}

// -- Orders --

func printOrders(w io.Writer, orders []order.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "no orders")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tCODE\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			o.ID, o.Code, o.Status, o.ItemCount(), idr(o.Total), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func printOrder(w io.Writer, o *order.Order) {
	fmt.Fprintf(w, "%s %s\n", o.Code, o.Status)
	fmt.Fprintf(w, "ship to %s (%s)\n", o.Address, o.Phone)
	tw := table(w)
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%d x\t%s\t%s\n", it.Quantity, it.ProductName, idr(it.UnitPrice))
	}
	tw.Flush()
	printSummary(w, cart.PriceSummary{
		Subtotal:         o.Subtotal,
		ShippingFee:      o.ShippingFee,
		ShippingDiscount: o.ShippingDiscount,
		ProductDiscount:  o.ProductDiscount,
		Total:            o.Total,
		FromServer:       true,
	})
}

func parseStatus(raw string) (order.OrderStatus, error) {
	if raw == "" {
		return "", nil
	}
	return order.ParseStatus(raw)
}

func cmdOrders(ctx context.Context, c *cli, args []string) error {
	fs := flags(c, "orders")
	rawStatus := fs.String("status", "", "filter by status")
	if err := parse(fs, args); err != nil {
		return err
	}
	status, err := parseStatus(*rawStatus)
	if err != nil {
		return err
	}

	orders, err := c.app.Orders.List(ctx, status)
	if err != nil {
		return err
	}
	printOrders(c.out, orders)
	return nil
}

func cmdOrder(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	o, err := c.app.Orders.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printOrder(c.out, o)
	return nil
}

func cmdOrderCancel(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	o, err := c.app.Orders.Cancel(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %s is now %s\n", o.Code, o.Status)
	return nil
}

// -- Chat --

// cmdChat prints incoming messages and sends each input line until the
// input ends or the context is cancelled.
func cmdChat(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	conversationID := args[0]

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.app.Chat.Run(ctx, func(m chat.Message) {
			if m.Kind == chat.KindNotification {
				fmt.Fprintf(c.out, "[notice] %s\n", m.Content)
				return
			}
			if m.ConversationID == conversationID {
				fmt.Fprintf(c.out, "[%s] %s\n", m.SenderID, m.Content)
			}
		})
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok {
				cancel()
				<-done
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			waitConnected(ctx, c.app.Chat)
			if err := c.app.Chat.Send(ctx, conversationID, line); err != nil {
				fmt.Fprintln(c.out, "error:", err)
			}
		}
	}
}

const connectWait = 5 * time.Second

func waitConnected(ctx context.Context, client *chat.Client) {
	deadline := time.Now().Add(connectWait)
	for !client.Connected() && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}
