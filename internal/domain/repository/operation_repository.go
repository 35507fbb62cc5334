package repository

import (
	"context"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// OperationRepository persiste cabeceras de operación con sus ítems.
type OperationRepository interface {
	Create(ctx context.Context, op *entity.Operation) error
	GetByID(ctx context.Context, id string) (*entity.Operation, error)
}
