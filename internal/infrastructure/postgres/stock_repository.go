package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetOrCreate asegura la fila (producto, ubicación) con cantidad 0 y la bloquea (SELECT FOR UPDATE).
// El INSERT previo hace que dos transacciones sobre una clave nueva también se serialicen.
func (r *StockRepo) GetOrCreate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}

	var s entity.StockLevel
	err = r.q.QueryRow(ctx, `
		SELECT product_id, location_id, quantity, updated_at
		FROM stock_levels WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`, productID, locationID).Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Write guarda la cantidad de una fila ya bloqueada.
func (r *StockRepo) Write(ctx context.Context, level *entity.StockLevel) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock_levels SET quantity = $3, updated_at = $4
		WHERE product_id = $1 AND location_id = $2`,
		level.ProductID, level.LocationID, level.Quantity, level.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("write stock: %w", err)
	}
	return nil
}

// ListByProduct saldos de un producto en todas sus ubicaciones.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location_id, quantity, updated_at
		FROM stock_levels WHERE product_id = $1 ORDER BY location_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
