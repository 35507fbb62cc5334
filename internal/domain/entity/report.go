package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockItem producto cuyo stock total está por debajo del nivel de reorden.
type LowStockItem struct {
	ProductID    string
	SKU          string
	Name         string
	Category     string
	UOM          string
	CurrentStock decimal.Decimal
	ReorderLevel decimal.Decimal
}

// DailyMovement suma diaria de entradas y salidas.
type DailyMovement struct {
	Day time.Time
	In  decimal.Decimal
	Out decimal.Decimal
}

// CategoryCount número de productos por categoría.
type CategoryCount struct {
	Category string
	Count    int
}

// StockSummary totales para los KPIs del dashboard.
type StockSummary struct {
	TotalProducts     int
	TotalStock        decimal.Decimal
	PendingReceipts   int
	PendingDeliveries int
	FailedOperations  int
}

// StockReportRow fila del reporte de existencias (producto x ubicación).
type StockReportRow struct {
	SKU          string
	ProductName  string
	Category     string
	UOM          string
	LocationName string
	Quantity     decimal.Decimal
	ReorderLevel decimal.Decimal
}
