package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow fila del CSV de catálogo: sku,name,category,uom,reorder_level,initial_stock
type catalogRow struct {
	SKU          string
	Name         string
	Category     string
	UOM          string
	ReorderLevel decimal.Decimal
	InitialStock decimal.Decimal
}

var catalogHeader = []string{"sku", "name", "category", "uom", "reorder_level", "initial_stock"}

// readCatalog lee el CSV. Las hojas de cálculo exportadas en Windows suelen venir en
// ISO-8859-1 o Windows-1252; charset "" o "utf-8" no convierte.
func readCatalog(r io.Reader, charset string) ([]catalogRow, error) {
	switch strings.ToLower(charset) {
	case "", "utf-8", "utf8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("charset no soportado: %q", charset)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range catalogHeader[:2] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var rows []catalogRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row := catalogRow{
			SKU:      field("sku"),
			Name:     field("name"),
			Category: field("category"),
			UOM:      field("uom"),
		}
		if row.SKU == "" {
			continue
		}
		if row.ReorderLevel, err = parseQty(field("reorder_level")); err != nil {
			return nil, fmt.Errorf("línea %d: reorder_level: %w", line, err)
		}
		if row.InitialStock, err = parseQty(field("initial_stock")); err != nil {
			return nil, fmt.Errorf("línea %d: initial_stock: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseQty acepta vacío (cero) y coma decimal ("12,5").
func parseQty(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}
