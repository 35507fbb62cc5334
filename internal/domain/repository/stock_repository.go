package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por (producto, ubicación).
// Dentro de una transacción GetOrCreate bloquea la fila hasta el Commit/Rollback.
type StockRepository interface {
	// GetOrCreate devuelve la fila existente o una fila con cantidad cero.
	GetOrCreate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error)
	Write(ctx context.Context, level *entity.StockLevel) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLevel, error)
}
