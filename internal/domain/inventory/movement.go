package inventory

import "github.com/shopspring/decimal"

// Aritmética de movimientos (servicio de dominio, sin I/O).

var idealStockFactor = decimal.NewFromFloat(1.5)

// QuantityScale decimales que admite el almacenamiento (NUMERIC(18,4)).
const QuantityScale = 4

// maxQuantity primer valor que no cabe en NUMERIC(18,4).
var maxQuantity = decimal.New(1, 14)

// Representable indica si q se guarda sin redondeo: como mucho 4 decimales y |q| < 1e14.
func Representable(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale)) && q.Abs().LessThan(maxQuantity)
}

// PositiveQuantity indica si q es una cantidad de movimiento válida (> 0).
func PositiveQuantity(q decimal.Decimal) bool {
	return q.IsPositive()
}

// ValidCount indica si q es un conteo físico válido (>= 0).
func ValidCount(q decimal.Decimal) bool {
	return !q.IsNegative()
}

// Credit suma qty al stock actual. ok=false si el saldo resultante no es representable.
func Credit(current, qty decimal.Decimal) (decimal.Decimal, bool) {
	next := current.Add(qty)
	if !Representable(next) {
		return current, false
	}
	return next, true
}

// Debit resta qty del stock actual. ok=false si qty > current; en ese caso current no cambia.
func Debit(current, qty decimal.Decimal) (decimal.Decimal, bool) {
	if qty.GreaterThan(current) {
		return current, false
	}
	return current.Sub(qty), true
}

// CountDiff diferencia con signo de un ajuste: contado - actual.
func CountDiff(current, counted decimal.Decimal) decimal.Decimal {
	return counted.Sub(current)
}

// IdealStock stock objetivo al reponer: ReorderLevel * 1.5.
func IdealStock(reorderLevel decimal.Decimal) decimal.Decimal {
	return reorderLevel.Mul(idealStockFactor)
}

// SuggestedOrder cantidad a pedir para llegar al stock ideal (nunca negativa).
func SuggestedOrder(current, reorderLevel decimal.Decimal) decimal.Decimal {
	s := IdealStock(reorderLevel).Sub(current)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}

// ShortageRatio qué tan por debajo del reorden está un producto (0 = en el umbral, 1 = sin stock).
func ShortageRatio(current, reorderLevel decimal.Decimal) decimal.Decimal {
	if !reorderLevel.IsPositive() {
		return decimal.Zero
	}
	r := reorderLevel.Sub(current).Div(reorderLevel)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
