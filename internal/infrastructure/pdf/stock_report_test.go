package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

func TestGenerateStockReport_DevuelvePDF(t *testing.T) {
	g := NewStockReportGenerator(language.English)
	rows := []entity.StockReportRow{
		{SKU: "STL-001", ProductName: "Steel Rod", Category: "Raw", UOM: "kg", LocationName: "Main Warehouse",
			Quantity: decimal.NewFromInt(1500), ReorderLevel: decimal.NewFromInt(100)},
		{SKU: "BLT-001", ProductName: "Bolt", UOM: "pcs", LocationName: "Rack A1",
			Quantity: decimal.NewFromInt(3), ReorderLevel: decimal.NewFromInt(10)},
	}

	out, err := g.GenerateStockReport(context.Background(), rows, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatQty_SeparadorDeMiles(t *testing.T) {
	g := NewStockReportGenerator(language.English)
	assert.Equal(t, "1,500", g.formatQty(decimal.NewFromInt(1500)))
	assert.Equal(t, "2.50", g.formatQty(decimal.RequireFromString("2.5")))
}
