package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind tipo cerrado de operación de stock.
type OperationKind string

const (
	OperationReceipt    OperationKind = "receipt"
	OperationDelivery   OperationKind = "delivery"
	OperationTransfer   OperationKind = "transfer"
	OperationAdjustment OperationKind = "adjustment"
)

var validOperationKinds = []OperationKind{
	OperationReceipt,
	OperationDelivery,
	OperationTransfer,
	OperationAdjustment,
}

// IsValid indica si el valor es uno de los tipos de operación conocidos.
func (k OperationKind) IsValid() bool {
	for _, candidate := range validOperationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOperationKind convierte el string crudo en OperationKind.
func ParseOperationKind(value string) (OperationKind, error) {
	for _, candidate := range validOperationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("tipo de operación inválido %q", value)
}

// OperationStatus estado del ciclo de vida de una operación.
// pending -> validating -> applying -> done | failed
type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusValidating OperationStatus = "validating"
	StatusApplying   OperationStatus = "applying"
	StatusDone       OperationStatus = "done"
	StatusFailed     OperationStatus = "failed"
)

// Terminal indica si el estado ya no cambia.
func (s OperationStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Operation cabecera de una recepción, entrega, traslado o ajuste.
type Operation struct {
	ID            string
	Kind          OperationKind
	Supplier      string // receipt
	Customer      string // delivery
	Reason        string // adjustment
	Status        OperationStatus
	CreatedBy     string
	FailureReason string
	Items         []OperationItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OperationItem línea de una operación. En ajustes Quantity es la cantidad contada.
type OperationItem struct {
	ProductID      string
	Quantity       decimal.Decimal
	FromLocationID string
	ToLocationID   string
}
