package dto

import "github.com/shopspring/decimal"

// KPIResponse respuesta de GET /api/dashboard/kpis.
type KPIResponse struct {
	TotalProducts     int               `json:"totalProducts"`
	TotalStock        decimal.Decimal   `json:"totalStock"`
	PendingReceipts   int               `json:"pendingReceipts"`
	PendingDeliveries int               `json:"pendingDeliveries"`
	FailedOperations  int               `json:"failedOperations"`
	LowStockProducts  []LowStockProduct `json:"lowStockProducts"`
}

// LowStockProduct producto bajo su nivel de reorden.
type LowStockProduct struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
}

// ChartsResponse respuesta de GET /api/dashboard/charts.
type ChartsResponse struct {
	StockTrends  []StockTrendPoint `json:"stockTrends"`
	CategoryData []CategorySlice   `json:"categoryData"`
}

// StockTrendPoint entradas y salidas de un día (name = YYYY-MM-DD).
type StockTrendPoint struct {
	Name string          `json:"name"`
	In   decimal.Decimal `json:"in"`
	Out  decimal.Decimal `json:"out"`
}

// CategorySlice número de productos por categoría.
type CategorySlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
