package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry asiento inmutable del libro de movimientos; uno por ítem aplicado.
// Receipt/Delivery/Transfer guardan magnitud positiva; Adjustment guarda la diferencia con signo.
type LedgerEntry struct {
	ID             string
	Type           OperationKind
	RefID          string
	ProductID      string
	FromLocationID *string
	ToLocationID   *string
	Quantity       decimal.Decimal
	CreatedAt      time.Time
}
