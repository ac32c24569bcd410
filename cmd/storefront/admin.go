package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"warimas-storefront/internal/admin"
	"warimas-storefront/internal/catalog"
	"warimas-storefront/internal/order"
	"warimas-storefront/internal/user"
	"warimas-storefront/internal/utils"
	"warimas-storefront/internal/voucher"

	"github.com/shopspring/decimal"
)

var adminCommands map[string]command

func init() {
	adminCommands = map[string]command{
		"products":        {"admin products [-q keyword] [-page n]", cmdAdminProducts},
		"product-create":  {"admin product-create -name n -category id -price p [-discount d] [-stock n] [-color c] [-size s]", cmdAdminProductCreate},
		"product-import":  {"admin product-import <file.xlsx>", cmdAdminProductImport},
		"product-delete":  {"admin product-delete <id>", cmdAdminProductDelete},
		"categories":      {"admin categories", cmdCategories},
		"category-create": {"admin category-create -name n [-parent id]", cmdAdminCategoryCreate},
		"users":           {"admin users", cmdAdminUsers},
		"user-role":       {"admin user-role <userId> ADMIN|CUSTOMER", cmdAdminUserRole},
		"user-lock":       {"admin user-lock <userId> true|false", cmdAdminUserLock},
		"orders":          {"admin orders [-status s]", cmdAdminOrders},
		"order-status":    {"admin order-status <orderId> <status>", cmdAdminOrderStatus},
		"orders-export":   {"admin orders-export [-status s] <file.xlsx>", cmdAdminOrdersExport},
		"coupons":         {"admin coupons", cmdAdminCoupons},
		"coupon-create":   {"admin coupon-create -code c -type SHIPPING|PRODUCT -discount-type PERCENT|FIXED -value v [-max m] [-min m] [-expires 2006-01-02]", cmdAdminCouponCreate},
		"coupon-delete":   {"admin coupon-delete <id>", cmdAdminCouponDelete},
	}
}

func cmdAdmin(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		names := make([]string, 0, len(adminCommands))
		for name := range adminCommands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(c.out, "  "+adminCommands[name].usage)
		}
		return errUsage
	}

	cmd, ok := adminCommands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown admin command %q", errUsage, args[0])
	}
	err := cmd.run(ctx, c, args[1:])
	if err == errUsage {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return err
}

// -- Products --

func cmdAdminProducts(ctx context.Context, c *cli, args []string) error {
	var q catalog.Query
	fs := flags(c, "admin products")
	fs.StringVar(&q.Keyword, "q", "", "keyword")
	fs.IntVar(&q.Page, "page", 0, "page number")
	if err := parse(fs, args); err != nil {
		return err
	}

	page, err := c.app.Admin.ListProducts(ctx, q)
	if err != nil {
		return err
	}
	tw := table(c.out)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tVARIANTS\tSTOCK")
	for _, p := range page.Items {
		stock := 0
		for _, v := range p.Variants {
			stock += v.Stock
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", p.ID, p.Name, p.CategoryID, len(p.Variants), stock)
	}
	return tw.Flush()
}

func cmdAdminProductCreate(ctx context.Context, c *cli, args []string) error {
	var (
		in              admin.ProductInput
		price, discount moneyFlag
		v               admin.VariantInput
		color, size     string
	)
	fs := flags(c, "admin product-create")
	fs.StringVar(&in.Name, "name", "", "product name")
	fs.StringVar(&in.CategoryID, "category", "", "category id")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.Var(&price, "price", "variant price")
	fs.Var(&discount, "discount", "variant discount price")
	fs.IntVar(&v.Stock, "stock", 0, "variant stock")
	fs.StringVar(&color, "color", "", "variant color")
	fs.StringVar(&size, "size", "", "variant size")
	if err := parse(fs, args); err != nil {
		return err
	}
	if price.v != nil {
		v.Price = *price.v
	}
	v.DiscountPrice = discount.v
	if color != "" {
		v.Color = utils.StrPtr(color)
	}
	if size != "" {
		v.Size = utils.StrPtr(size)
	}
	in.Variants = []admin.VariantInput{v}

	p, err := c.app.Admin.CreateProduct(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created product %s (%s)\n", p.Name, p.ID)
	return nil
}

func cmdAdminProductImport(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	inputs, err := admin.ParseProductSheet(f, info.Size())
	if err != nil {
		return err
	}

	created := 0
	for _, in := range inputs {
		p, err := c.app.Admin.CreateProduct(ctx, in)
		if err != nil {
			fmt.Fprintf(c.out, "skipped %s: %s\n", in.Name, err)
			continue
		}
		created++
		fmt.Fprintf(c.out, "created %s (%s)\n", p.Name, p.ID)
	}
	fmt.Fprintf(c.out, "%d of %d products imported\n", created, len(inputs))
	return nil
}

func cmdAdminProductDelete(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.app.Admin.DeleteProduct(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "product deleted")
	return nil
}

// -- Categories --

func cmdAdminCategoryCreate(ctx context.Context, c *cli, args []string) error {
	var (
		in     admin.CategoryInput
		parent string
	)
	fs := flags(c, "admin category-create")
	fs.StringVar(&in.Name, "name", "", "category name")
	fs.StringVar(&in.Slug, "slug", "", "slug, derived from the name when empty")
	fs.StringVar(&parent, "parent", "", "parent category id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if parent != "" {
		in.ParentID = &parent
	}

	cat, err := c.app.Admin.CreateCategory(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created category %s (%s)\n", cat.Name, cat.ID)
	return nil
}

// -- Users --

func cmdAdminUsers(ctx context.Context, c *cli, args []string) error {
	users, err := c.app.Admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	tw := table(c.out)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tLOCKED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Email, u.FullName, u.Role, u.Locked)
	}
	return tw.Flush()
}

func cmdAdminUserRole(ctx context.Context, c *cli, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	u, err := c.app.Admin.SetUserRole(ctx, args[0], user.Role(strings.ToUpper(args[1])))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is now %s\n", u.Email, u.Role)
	return nil
}

func cmdAdminUserLock(ctx context.Context, c *cli, args []string) error {
	if len(args) != 2 || (args[1] != "true" && args[1] != "false") {
		return errUsage
	}
	u, err := c.app.Admin.SetUserLocked(ctx, args[0], args[1] == "true")
	if err != nil {
		return err
	}
	state := "unlocked"
	if u.Locked {
		state = "locked"
	}
	fmt.Fprintf(c.out, "%s is %s\n", u.Email, state)
	return nil
}

// -- Orders --

func adminOrders(ctx context.Context, c *cli, name string, args []string) ([]order.Order, []string, error) {
	fs := flags(c, name)
	rawStatus := fs.String("status", "", "filter by status")
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	status, err := parseStatus(*rawStatus)
	if err != nil {
		return nil, nil, err
	}
	orders, err := c.app.Admin.ListOrders(ctx, status)
	return orders, fs.Args(), err
}

func cmdAdminOrders(ctx context.Context, c *cli, args []string) error {
	orders, _, err := adminOrders(ctx, c, "admin orders", args)
	if err != nil {
		return err
	}
	printOrders(c.out, orders)
	return nil
}

func cmdAdminOrderStatus(ctx context.Context, c *cli, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	status, err := order.ParseStatus(args[1])
	if err != nil {
		return err
	}
	o, err := c.app.Admin.UpdateOrderStatus(ctx, args[0], status)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %s is now %s\n", o.Code, o.Status)
	return nil
}

func cmdAdminOrdersExport(ctx context.Context, c *cli, args []string) error {
	orders, rest, err := adminOrders(ctx, c, "admin orders-export", args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errUsage
	}

	f, err := os.Create(rest[0])
	if err != nil {
		return err
	}
	if err := admin.ExportOrders(f, orders); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "exported %d orders to %s\n", len(orders), rest[0])
	return nil
}

// -- Coupons --

func cmdAdminCoupons(ctx context.Context, c *cli, args []string) error {
	coupons, err := c.app.Admin.ListCoupons(ctx)
	if err != nil {
		return err
	}
	tw := table(c.out)
	fmt.Fprintln(tw, "ID\tCODE\tTYPE\tDISCOUNT\tMIN ORDER\tACTIVE")
	for _, cp := range coupons {
		discount := idr(cp.DiscountValue)
		if cp.DiscountType == voucher.DiscountPercent {
			discount = cp.DiscountValue.String() + "%"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", cp.ID, cp.Code, cp.Type, discount, idr(cp.MinOrderValue), cp.Active)
	}
	return tw.Flush()
}

func cmdAdminCouponCreate(ctx context.Context, c *cli, args []string) error {
	var (
		in                        admin.CouponInput
		class, discountType       string
		value, maxDiscount, minOV moneyFlag
		expires                   string
		inactive                  bool
	)
	fs := flags(c, "admin coupon-create")
	fs.StringVar(&in.Code, "code", "", "voucher code")
	fs.StringVar(&class, "type", "", "SHIPPING or PRODUCT")
	fs.StringVar(&discountType, "discount-type", "", "PERCENT or FIXED")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.Var(&value, "value", "discount value")
	fs.Var(&maxDiscount, "max", "discount cap")
	fs.Var(&minOV, "min", "minimum order value")
	fs.StringVar(&expires, "expires", "", "expiry date, 2006-01-02")
	fs.BoolVar(&inactive, "inactive", false, "create the voucher switched off")
	if err := parse(fs, args); err != nil {
		return err
	}

	in.Type = voucher.Class(strings.ToUpper(class))
	in.DiscountType = voucher.DiscountType(strings.ToUpper(discountType))
	in.DiscountValue = decimal.Zero
	if value.v != nil {
		in.DiscountValue = *value.v
	}
	in.MaxDiscount = maxDiscount.v
	if minOV.v != nil {
		in.MinOrderValue = *minOV.v
	}
	if expires != "" {
		t, err := time.Parse("2006-01-02", expires)
		if err != nil {
			return fmt.Errorf("%w: -expires: %v", errUsage, err)
		}
		in.ExpiresAt = &t
	}
	in.Active = !inactive

	cp, err := c.app.Admin.CreateCoupon(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created voucher %s (%s)\n", cp.Code, cp.ID)
	return nil
}

func cmdAdminCouponDelete(ctx context.Context, c *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.app.Admin.DeleteCoupon(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "voucher deleted")
	return nil
}
