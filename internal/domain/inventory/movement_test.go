package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stockmaster-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDebit(t *testing.T) {
	got, ok := inventory.Debit(d("500"), d("50"))
	assert.True(t, ok)
	assert.True(t, got.Equal(d("450")))

	got, ok = inventory.Debit(d("450"), d("600"))
	assert.False(t, ok, "no se puede debitar más de lo disponible")
	assert.True(t, got.Equal(d("450")), "el saldo no cambia si falla")

	got, ok = inventory.Debit(d("1.5"), d("1.5"))
	assert.True(t, ok, "debitar exactamente el saldo deja cero")
	assert.True(t, got.IsZero())
}

func TestCreditYCountDiff(t *testing.T) {
	got, ok := inventory.Credit(decimal.Zero, d("500"))
	assert.True(t, ok)
	assert.True(t, got.Equal(d("500")))

	got, ok = inventory.Credit(d("99999999999999"), d("1"))
	assert.False(t, ok, "el saldo no cabe en NUMERIC(18,4)")
	assert.True(t, got.Equal(d("99999999999999")))

	assert.True(t, inventory.CountDiff(d("450"), d("430")).Equal(d("-20")))
	assert.True(t, inventory.CountDiff(d("10"), d("10")).IsZero())
	assert.True(t, inventory.CountDiff(d("0"), d("7.25")).Equal(d("7.25")))
}

func TestValidaciones(t *testing.T) {
	assert.True(t, inventory.PositiveQuantity(d("0.001")))
	assert.False(t, inventory.PositiveQuantity(decimal.Zero))
	assert.False(t, inventory.PositiveQuantity(d("-1")))

	assert.True(t, inventory.ValidCount(decimal.Zero))
	assert.False(t, inventory.ValidCount(d("-0.5")))
}

func TestRepresentable(t *testing.T) {
	assert.True(t, inventory.Representable(d("430.0001")))
	assert.True(t, inventory.Representable(d("430.00000")), "ceros a la derecha no cuentan")
	assert.True(t, inventory.Representable(d("99999999999999.9999")))
	assert.True(t, inventory.Representable(d("-20.5")))

	assert.False(t, inventory.Representable(d("0.00001")))
	assert.False(t, inventory.Representable(d("430.00005")))
	assert.False(t, inventory.Representable(d("100000000000000")))
	assert.False(t, inventory.Representable(d("-100000000000000")))
}

func TestReposicion(t *testing.T) {
	assert.True(t, inventory.IdealStock(d("100")).Equal(d("150")))
	assert.True(t, inventory.SuggestedOrder(d("40"), d("100")).Equal(d("110")))
	assert.True(t, inventory.SuggestedOrder(d("200"), d("100")).IsZero())

	assert.True(t, inventory.ShortageRatio(d("25"), d("100")).Equal(d("0.75")))
	assert.True(t, inventory.ShortageRatio(d("5"), decimal.Zero).IsZero())
}
