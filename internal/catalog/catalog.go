// Package catalog imports product seed files into the product store. A seed
// file is a gzipped CSV with the header
//
//	sku,name,category,price,sale_price,stock_quantity,status
//
// sale_price and status may be empty; status defaults to ACTIVE.
package catalog

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/shopspring/decimal"
)

// Loader reads one seed file.
type Loader interface {
	// Load reads a gzipped seed file and returns its products.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Columns is the header every seed file starts with.
var Columns = []string{"sku", "name", "category", "price", "sale_price", "stock_quantity", "status"}

// ErrInvalidHeader is returned when a seed file does not start with Columns.
var ErrInvalidHeader = errors.New("invalid seed file header")

const cancelCheckInterval = 10_000

// parseSeed decompresses r and decodes its CSV rows into products.
func parseSeed(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = len(Columns)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", source, err)
	}
	for i, col := range Columns {
		if strings.ToLower(strings.TrimSpace(header[i])) != col {
			return nil, fmt.Errorf("%s: %w: column %d is %q, want %q", source, ErrInvalidHeader, i+1, header[i], col)
		}
	}

	var products []model.Product
	for line := 2; ; line++ {
		if line%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", source, err)
		}

		product, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		products = append(products, product)
	}

	return products, nil
}

func parseRecord(record []string) (model.Product, error) {
	field := func(i int) string { return strings.TrimSpace(record[i]) }

	p := model.Product{
		SKU:      field(0),
		Name:     field(1),
		Category: field(2),
		Status:   model.ProductActive,
	}
	if p.SKU == "" {
		return p, errors.New("sku is required")
	}
	if p.Name == "" {
		return p, errors.New("name is required")
	}

	price, err := decimal.NewFromString(field(3))
	if err != nil || price.IsNegative() {
		return p, fmt.Errorf("invalid price %q", field(3))
	}
	p.Price = price.Round(2)

	if s := field(4); s != "" {
		sale, err := decimal.NewFromString(s)
		if err != nil || sale.IsNegative() {
			return p, fmt.Errorf("invalid sale_price %q", s)
		}
		p.SalePrice = decimal.NewNullDecimal(sale.Round(2))
	}

	stock, err := strconv.Atoi(field(5))
	if err != nil || stock < 0 {
		return p, fmt.Errorf("invalid stock_quantity %q", field(5))
	}
	p.StockQuantity = stock

	if s := field(6); s != "" {
		status := model.ProductStatus(strings.ToUpper(s))
		if !status.Valid() {
			return p, fmt.Errorf("invalid status %q", s)
		}
		p.Status = status
	}

	return p, nil
}
