package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Las cantidades aceptan número JSON o string numérico ("500").

// LineItemRequest ítem de recepción o entrega.
type LineItemRequest struct {
	ProductID  string          `json:"productId" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	LocationID string          `json:"locationId" validate:"required"`
}

// TransferItemRequest ítem de traslado.
type TransferItemRequest struct {
	ProductID      string          `json:"productId" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromLocationID string          `json:"fromLocationId" validate:"required"`
	ToLocationID   string          `json:"toLocationId" validate:"required"`
}

// CreateReceiptRequest body para POST /api/ops/receipts.
type CreateReceiptRequest struct {
	Supplier string            `json:"supplier" validate:"max=200"`
	Items    []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateDeliveryRequest body para POST /api/ops/deliveries.
type CreateDeliveryRequest struct {
	Customer string            `json:"customer" validate:"max=200"`
	Items    []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateTransferRequest body para POST /api/ops/transfers.
type CreateTransferRequest struct {
	Items []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateAdjustmentRequest body para POST /api/ops/adjustments.
type CreateAdjustmentRequest struct {
	ProductID       string          `json:"productId" validate:"required"`
	LocationID      string          `json:"locationId" validate:"required"`
	CountedQuantity *decimal.Decimal `json:"countedQuantity" validate:"required"` // ausente != 0
	Reason          string          `json:"reason" validate:"max=500"`
}

// OperationItemResponse ítem de una operación.
type OperationItemResponse struct {
	ProductID      string          `json:"productId"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromLocationID *string         `json:"fromLocationId"`
	ToLocationID   *string         `json:"toLocationId"`
}

// OperationResponse operación (recepción, entrega, traslado o ajuste).
type OperationResponse struct {
	ID            string                  `json:"id"`
	Type          string                  `json:"type"`
	Supplier      string                  `json:"supplier,omitempty"`
	Customer      string                  `json:"customer,omitempty"`
	Reason        string                  `json:"reason,omitempty"`
	Status        string                  `json:"status"`
	CreatedBy     string                  `json:"createdBy"`
	FailureReason string                  `json:"failureReason,omitempty"`
	Items         []OperationItemResponse `json:"items"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// StockLevelResponse saldo de un producto en una ubicación.
type StockLevelResponse struct {
	ProductID    string          `json:"productId"`
	LocationID   string          `json:"locationId"`
	LocationName string          `json:"locationName,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// AdjustmentResponse respuesta de POST /api/ops/adjustments.
type AdjustmentResponse struct {
	Adjustment OperationResponse  `json:"adjustment"`
	Stock      StockLevelResponse `json:"stock"`
}

// LedgerEntryResponse asiento del historial de movimientos.
type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	RefID          string          `json:"refId"`
	ProductID      string          `json:"productId"`
	FromLocationID *string         `json:"fromLocationId"`
	ToLocationID   *string         `json:"toLocationId"`
	Quantity       decimal.Decimal `json:"quantity"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo su nivel de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"productId"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"productName"`
	Category          string          `json:"category,omitempty"`
	UOM               string          `json:"uom,omitempty"`
	CurrentStock      decimal.Decimal `json:"currentStock"`
	ReorderLevel      decimal.Decimal `json:"reorderLevel"`
	IdealStock        decimal.Decimal `json:"idealStock"`        // ReorderLevel * 1.5
	SuggestedOrderQty decimal.Decimal `json:"suggestedOrderQty"` // IdealStock - CurrentStock
	ShortageRatio     decimal.Decimal `json:"shortageRatio"`     // 0..1
	Priority          int             `json:"priority"`          // 1 = más urgente
}
