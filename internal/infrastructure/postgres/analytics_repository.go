package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para dashboard, reposición y reportes.
// Se ejecutan fuera de transacción (read committed).
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

type summaryRow struct {
	TotalProducts     int             `db:"total_products"`
	TotalStock        decimal.Decimal `db:"total_stock"`
	PendingReceipts   int             `db:"pending_receipts"`
	PendingDeliveries int             `db:"pending_deliveries"`
	FailedOperations  int             `db:"failed_operations"`
}

// Summary totales del dashboard en una sola ida a la base.
func (r *AnalyticsRepo) Summary(ctx context.Context) (*entity.StockSummary, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products)                                                    AS total_products,
	    (SELECT COALESCE(SUM(quantity), 0) FROM stock_levels)                              AS total_stock,
	    (SELECT COUNT(*) FROM operations
	      WHERE kind = 'receipt'  AND status NOT IN ('done', 'failed'))                    AS pending_receipts,
	    (SELECT COUNT(*) FROM operations
	      WHERE kind = 'delivery' AND status NOT IN ('done', 'failed'))                    AS pending_deliveries,
	    (SELECT COUNT(*) FROM operations WHERE status = 'failed')                          AS failed_operations`

	var row summaryRow
	if err := pgxscan.Get(ctx, r.q, &row, query); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &entity.StockSummary{
		TotalProducts:     row.TotalProducts,
		TotalStock:        row.TotalStock,
		PendingReceipts:   row.PendingReceipts,
		PendingDeliveries: row.PendingDeliveries,
		FailedOperations:  row.FailedOperations,
	}, nil
}

type lowStockRow struct {
	ProductID    string          `db:"product_id"`
	SKU          string          `db:"sku"`
	Name         string          `db:"name"`
	Category     string          `db:"category"`
	UOM          string          `db:"uom"`
	CurrentStock decimal.Decimal `db:"current_stock"`
	ReorderLevel decimal.Decimal `db:"reorder_level"`
}

// LowStock productos cuyo stock sumado en todas las ubicaciones es menor al nivel de reorden.
func (r *AnalyticsRepo) LowStock(ctx context.Context) ([]entity.LowStockItem, error) {
	sql, args, err := psql.
		Select(
			"p.id AS product_id",
			"p.sku",
			"p.name",
			"COALESCE(p.category, '') AS category",
			"p.uom",
			"COALESCE(SUM(s.quantity), 0) AS current_stock",
			"p.reorder_level",
		).
		From("products p").
		LeftJoin("stock_levels s ON s.product_id = p.id").
		GroupBy("p.id", "p.sku", "p.name", "p.category", "p.uom", "p.reorder_level").
		Having("COALESCE(SUM(s.quantity), 0) < p.reorder_level").
		OrderBy("p.sku").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build low stock: %w", err)
	}

	var rows []lowStockRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	out := make([]entity.LowStockItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.LowStockItem(row))
	}
	return out, nil
}

type dailyRow struct {
	Day time.Time       `db:"day"`
	In  decimal.Decimal `db:"qty_in"`
	Out decimal.Decimal `db:"qty_out"`
}

// DailyMovements recepciones (in) y entregas (out) por día UTC.
func (r *AnalyticsRepo) DailyMovements(ctx context.Context, since time.Time) ([]entity.DailyMovement, error) {
	sql, args, err := psql.
		Select(
			"date_trunc('day', created_at AT TIME ZONE 'UTC') AS day",
			"COALESCE(SUM(quantity) FILTER (WHERE type = 'receipt'), 0) AS qty_in",
			"COALESCE(SUM(quantity) FILTER (WHERE type = 'delivery'), 0) AS qty_out",
		).
		From("ledger_entries").
		Where(squirrel.GtOrEq{"created_at": since}).
		Where(squirrel.Eq{"type": []string{string(entity.OperationReceipt), string(entity.OperationDelivery)}}).
		GroupBy("day").
		OrderBy("day").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily movements: %w", err)
	}

	var rows []dailyRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("daily movements: %w", err)
	}
	out := make([]entity.DailyMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.DailyMovement{
			Day: time.Date(row.Day.Year(), row.Day.Month(), row.Day.Day(), 0, 0, 0, 0, time.UTC),
			In:  row.In,
			Out: row.Out,
		})
	}
	return out, nil
}

type categoryRow struct {
	Category string `db:"category"`
	Count    int    `db:"count"`
}

// CategoryDistribution productos por categoría; sin categoría se devuelve "".
func (r *AnalyticsRepo) CategoryDistribution(ctx context.Context) ([]entity.CategoryCount, error) {
	sql, args, err := psql.
		Select("COALESCE(category, '') AS category", "COUNT(*) AS count").
		From("products").
		GroupBy("1").
		OrderBy("1").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build categories: %w", err)
	}

	var rows []categoryRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	out := make([]entity.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.CategoryCount(row))
	}
	return out, nil
}

type stockReportRow struct {
	SKU          string          `db:"sku"`
	ProductName  string          `db:"product_name"`
	Category     string          `db:"category"`
	UOM          string          `db:"uom"`
	LocationName string          `db:"location_name"`
	Quantity     decimal.Decimal `db:"quantity"`
	ReorderLevel decimal.Decimal `db:"reorder_level"`
}

// StockReport una fila por (producto, ubicación) con saldo registrado.
func (r *AnalyticsRepo) StockReport(ctx context.Context) ([]entity.StockReportRow, error) {
	sql, args, err := psql.
		Select(
			"p.sku",
			"p.name AS product_name",
			"COALESCE(p.category, '') AS category",
			"p.uom",
			"l.name AS location_name",
			"s.quantity",
			"p.reorder_level",
		).
		From("stock_levels s").
		Join("products p ON p.id = s.product_id").
		Join("locations l ON l.id = s.location_id").
		OrderBy("p.sku", "l.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock report: %w", err)
	}

	var rows []stockReportRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}
	out := make([]entity.StockReportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.StockReportRow(row))
	}
	return out, nil
}
