package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialStock + LocationID registran una recepción inicial.
type CreateProductRequest struct {
	SKU          string           `json:"sku" validate:"required,min=1,max=100"`
	Name         string           `json:"name" validate:"required,min=1,max=200"`
	Category     string           `json:"category" validate:"max=100"`
	UOM          string           `json:"uom" validate:"max=20"`
	ReorderLevel decimal.Decimal  `json:"reorderLevel"`
	InitialStock *decimal.Decimal `json:"initialStock"`
	LocationID   string           `json:"locationId"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	SKU          *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category     *string          `json:"category" validate:"omitempty,max=100"`
	UOM          *string          `json:"uom" validate:"omitempty,max=20"`
	ReorderLevel *decimal.Decimal `json:"reorderLevel"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UOM          string          `json:"uom"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductStockResponse stock de un producto por ubicación.
type ProductStockResponse struct {
	ProductID string               `json:"productId"`
	Total     decimal.Decimal      `json:"total"`
	Levels    []StockLevelResponse `json:"levels"`
}
