package admin

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"warimas-storefront/internal/order"
	"warimas-storefront/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

var orderHeaders = []string{
	"Code", "Status", "Created At", "Address", "Phone", "Items",
	"Subtotal", "Shipping Fee", "Shipping Discount", "Product Discount", "Total",
}

// ExportOrders writes orders as a single "Orders" sheet. Amounts are whole rupiah.
func ExportOrders(w io.Writer, orders []order.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range orderHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(o.Code)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(o.CreatedAt.Format(time.RFC3339))
		row.AddCell().SetString(o.Address)
		row.AddCell().SetString(o.Phone)
		row.AddCell().SetInt(o.ItemCount())
		for _, amount := range []Money{o.Subtotal, o.ShippingFee, o.ShippingDiscount, o.ProductDiscount, o.Total} {
			row.AddCell().SetInt64(amount.IntPart())
		}
	}

	return file.Write(w)
}

// Product sheet columns, one row per variant. Rows sharing a name form one product.
const (
	colName = iota
	colSlug
	colDescription
	colCategoryID
	colThumbnail
	colVariantID
	colImageURL
	colPrice
	colDiscountPrice
	colColor
	colSize
	colStock
)

var productHeaders = []string{
	"Name", "Slug", "Description", "Category ID", "Thumbnail", "Variant ID",
	"Image URL", "Price", "Discount Price", "Color", "Size", "Stock",
}

// WriteProductSheet writes products in the layout ParseProductSheet reads.
func WriteProductSheet(w io.Writer, products []ProductInput) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range productHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		for _, v := range p.Variants {
			row := sheet.AddRow()
			row.AddCell().SetString(p.Name)
			row.AddCell().SetString(p.Slug)
			row.AddCell().SetString(p.Description)
			row.AddCell().SetString(p.CategoryID)
			row.AddCell().SetString(p.Thumbnail)
			row.AddCell().SetString(v.ID)
			row.AddCell().SetString(v.ImageURL)
			row.AddCell().SetString(v.Price.String())
			if v.DiscountPrice != nil {
				row.AddCell().SetString(v.DiscountPrice.String())
			} else {
				row.AddCell().SetString("")
			}
			row.AddCell().SetString(utils.PtrString(v.Color))
			row.AddCell().SetString(utils.PtrString(v.Size))
			row.AddCell().SetInt(v.Stock)
		}
	}

	return file.Write(w)
}

// ParseProductSheet reads the first sheet of an xlsx workbook into product
// inputs. The first row is a header and is skipped.
func ParseProductSheet(r io.ReaderAt, size int64) ([]ProductInput, error) {
	xlFile, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, err
	}
	if len(xlFile.Sheets) == 0 || len(xlFile.Sheets[0].Rows) < 2 {
		return nil, ErrEmptySheet
	}
	sheet := xlFile.Sheets[0]

	var out []ProductInput
	index := map[string]int{}

	for i := 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		get := func(col int) string {
			if col < len(row.Cells) {
				return strings.TrimSpace(row.Cells[col].String())
			}
			return ""
		}

		name := get(colName)
		if name == "" {
			continue
		}

		v, err := parseVariant(get)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		if at, ok := index[name]; ok {
			out[at].Variants = append(out[at].Variants, v)
			continue
		}
		index[name] = len(out)
		out = append(out, ProductInput{
			Name:        name,
			Slug:        get(colSlug),
			Description: get(colDescription),
			CategoryID:  get(colCategoryID),
			Thumbnail:   get(colThumbnail),
			Variants:    []VariantInput{v},
		})
	}

	if len(out) == 0 {
		return nil, ErrEmptySheet
	}
	return out, nil
}

func parseVariant(get func(int) string) (VariantInput, error) {
	price, err := decimal.NewFromString(get(colPrice))
	if err != nil {
		return VariantInput{}, fmt.Errorf("price: %w", ErrInvalidPrice)
	}

	v := VariantInput{
		ID:       get(colVariantID),
		ImageURL: get(colImageURL),
		Price:    price,
	}
	if s := get(colDiscountPrice); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return VariantInput{}, fmt.Errorf("discount price: %w", ErrInvalidPrice)
		}
		v.DiscountPrice = &d
	}
	if s := get(colColor); s != "" {
		v.Color = utils.StrPtr(s)
	}
	if s := get(colSize); s != "" {
		v.Size = utils.StrPtr(s)
	}
	if s := get(colStock); s != "" {
		stock, err := strconv.Atoi(s)
		if err != nil {
			return VariantInput{}, fmt.Errorf("stock %q: %w", s, err)
		}
		v.Stock = stock
	}
	return v, nil
}
