package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregaciones de lectura sobre el estado publicado.
type AnalyticsRepo struct{ v *view }

func (r *AnalyticsRepo) Summary(_ context.Context) (*entity.StockSummary, error) {
	out := &entity.StockSummary{TotalStock: decimal.Zero}
	err := r.v.read(func(st *state) error {
		out.TotalProducts = len(st.products)
		for _, lvl := range st.stock {
			out.TotalStock = out.TotalStock.Add(lvl.Quantity)
		}
		for _, op := range st.operations {
			if op.Status == entity.StatusFailed {
				out.FailedOperations++
			}
			if op.Status.Terminal() {
				continue
			}
			switch op.Kind {
			case entity.OperationReceipt:
				out.PendingReceipts++
			case entity.OperationDelivery:
				out.PendingDeliveries++
			}
		}
		return nil
	})
	return out, err
}

func (r *AnalyticsRepo) LowStock(_ context.Context) ([]entity.LowStockItem, error) {
	var out []entity.LowStockItem
	err := r.v.read(func(st *state) error {
		totals := make(map[string]decimal.Decimal, len(st.products))
		for k, lvl := range st.stock {
			totals[k.ProductID] = totals[k.ProductID].Add(lvl.Quantity)
		}
		for _, p := range st.products {
			current := totals[p.ID]
			if !current.LessThan(p.ReorderLevel) {
				continue
			}
			out = append(out, entity.LowStockItem{
				ProductID:    p.ID,
				SKU:          p.SKU,
				Name:         p.Name,
				Category:     p.Category,
				UOM:          p.UOM,
				CurrentStock: current,
				ReorderLevel: p.ReorderLevel,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, err
}

// DailyMovements suma recepciones (in) y entregas (out) por día UTC desde since.
func (r *AnalyticsRepo) DailyMovements(_ context.Context, since time.Time) ([]entity.DailyMovement, error) {
	byDay := make(map[time.Time]*entity.DailyMovement)
	err := r.v.read(func(st *state) error {
		for _, e := range st.ledger {
			if e.CreatedAt.Before(since) {
				continue
			}
			if e.Type != entity.OperationReceipt && e.Type != entity.OperationDelivery {
				continue
			}
			day := e.CreatedAt.UTC().Truncate(24 * time.Hour)
			dm, ok := byDay[day]
			if !ok {
				dm = &entity.DailyMovement{Day: day, In: decimal.Zero, Out: decimal.Zero}
				byDay[day] = dm
			}
			if e.Type == entity.OperationReceipt {
				dm.In = dm.In.Add(e.Quantity)
			} else {
				dm.Out = dm.Out.Add(e.Quantity)
			}
		}
		return nil
	})
	out := make([]entity.DailyMovement, 0, len(byDay))
	for _, dm := range byDay {
		out = append(out, *dm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, err
}

func (r *AnalyticsRepo) CategoryDistribution(_ context.Context) ([]entity.CategoryCount, error) {
	counts := make(map[string]int)
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			counts[p.Category]++
		}
		return nil
	})
	out := make([]entity.CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, entity.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, err
}

func (r *AnalyticsRepo) StockReport(_ context.Context) ([]entity.StockReportRow, error) {
	var out []entity.StockReportRow
	err := r.v.read(func(st *state) error {
		for k, lvl := range st.stock {
			p, ok := st.products[k.ProductID]
			if !ok {
				continue
			}
			row := entity.StockReportRow{
				SKU:          p.SKU,
				ProductName:  p.Name,
				Category:     p.Category,
				UOM:          p.UOM,
				Quantity:     lvl.Quantity,
				ReorderLevel: p.ReorderLevel,
			}
			if l, ok := st.locations[k.LocationID]; ok {
				row.LocationName = l.Name
			}
			out = append(out, row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SKU != out[j].SKU {
			return out[i].SKU < out[j].SKU
		}
		return out[i].LocationName < out[j].LocationName
	})
	return out, err
}
