// Package pdf genera el reporte de existencias en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Categoría | Ubicación | Cant | UdM  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: filas, productos bajo reorden                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/stockmaster-api/internal/application/analytics"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

var _ analytics.StockReportGenerator = (*StockReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// StockReportGenerator implementa analytics.StockReportGenerator usando Maroto v2.
type StockReportGenerator struct {
	printer *message.Printer
}

// NewStockReportGenerator construye el generador. Las cantidades se formatean con separador de
// miles según tag (por defecto inglés).
func NewStockReportGenerator(tag language.Tag) *StockReportGenerator {
	if tag == language.Und {
		tag = language.English
	}
	return &StockReportGenerator{printer: message.NewPrinter(tag)}
}

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *StockReportGenerator) GenerateStockReport(
	_ context.Context,
	rows []entity.StockReportRow,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Stock Report", true).
		WithAuthor("StockMaster", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.tableRows(rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("STOCK REPORT", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(4).Add(
			text.New("Generated: "+generatedAt.UTC().Format("2006-01-02 15:04 UTC"), props.Text{
				Size: 8, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Product", 3, align.Left),
		h("Category", 2, align.Left),
		h("Location", 2, align.Left),
		h("Qty", 2, align.Right),
		h("UoM", 1, align.Center),
	)
}

// tableRows una fila por (producto, ubicación). Bajo reorden se marca en rojo.
func (g *StockReportGenerator) tableRows(rows []entity.StockReportRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		qtyProps := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if r.Quantity.LessThan(r.ReorderLevel) {
			qtyProps.Color = colorAlert
			qtyProps.Style = fontstyle.Bold
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(r.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(r.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(r.Category, "-"), props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(r.LocationName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.formatQty(r.Quantity), qtyProps)),
			col.New(1).Add(text.New(r.UOM, props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

func (g *StockReportGenerator) totalsRow(rows []entity.StockReportRow) core.Row {
	skus := make(map[string]bool)
	below := 0
	for _, r := range rows {
		skus[r.SKU] = true
		if r.Quantity.LessThan(r.ReorderLevel) {
			below++
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(4).Add(
			label("Rows:"),
			label("Products:"),
			label("Below reorder level:"),
		),
		col.New(2).Add(
			value(g.printer.Sprintf("%d", len(rows))),
			value(g.printer.Sprintf("%d", len(skus))),
			value(g.printer.Sprintf("%d", below)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (g *StockReportGenerator) formatQty(q decimal.Decimal) string {
	if q.IsInteger() {
		return g.printer.Sprintf("%d", q.IntPart())
	}
	return g.printer.Sprintf("%.2f", q.InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
