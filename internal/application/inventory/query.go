package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// Límites de History.
const (
	DefaultHistoryLimit = 200
	MaxHistoryLimit     = 1000
)

// History devuelve los asientos más recientes primero. limit <= 0 usa DefaultHistoryLimit.
func (e *MovementEngine) History(ctx context.Context, limit int) ([]*entity.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	entries, err := e.ledger.History(ctx, limit)
	if err != nil {
		return nil, domain.StoreUnavailable(fmt.Errorf("historial: %w", err))
	}
	return entries, nil
}

// Get devuelve una operación con sus ítems, o domain.ErrNotFound.
func (e *MovementEngine) Get(ctx context.Context, id string) (*entity.Operation, error) {
	op, err := e.operations.GetByID(ctx, id)
	if err != nil {
		return nil, domain.StoreUnavailable(fmt.Errorf("obtener operación: %w", err))
	}
	if op == nil {
		return nil, domain.ErrNotFound
	}
	return op, nil
}

// Entries devuelve los asientos generados por una operación.
func (e *MovementEngine) Entries(ctx context.Context, operationID string) ([]*entity.LedgerEntry, error) {
	entries, err := e.ledger.ListByRef(ctx, operationID)
	if err != nil {
		return nil, domain.StoreUnavailable(fmt.Errorf("asientos de operación: %w", err))
	}
	return entries, nil
}
