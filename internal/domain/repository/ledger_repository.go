package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// LedgerRepository libro de movimientos de solo inserción.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// History devuelve los limit asientos más recientes, del más nuevo al más viejo.
	History(ctx context.Context, limit int) ([]*entity.LedgerEntry, error)
	ListByRef(ctx context.Context, refID string) ([]*entity.LedgerEntry, error)
}
