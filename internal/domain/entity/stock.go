package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel cantidad disponible de un producto en una ubicación. Nunca negativa.
type StockLevel struct {
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}

// Key devuelve la clave (producto, ubicación) del registro.
func (s *StockLevel) Key() StockKey {
	return StockKey{ProductID: s.ProductID, LocationID: s.LocationID}
}

// StockKey identifica un StockLevel.
type StockKey struct {
	ProductID  string
	LocationID string
}

// Less ordena claves por producto y luego ubicación (orden de bloqueo).
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.LocationID < o.LocationID
}
