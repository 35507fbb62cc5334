package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo. El stock se maneja por ubicación en StockLevel.
type Product struct {
	ID           string
	SKU          string // único; no se cambia una vez hay stock
	Name         string
	Category     string
	UOM          string // unidad de medida: kg, pcs, box...
	ReorderLevel decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
