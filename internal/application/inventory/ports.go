package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en cualquier otro caso. fn puede reintentarse ante
// conflictos de serialización, por lo que no debe tener efectos fuera de los repositorios.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		operationRepo repository.OperationRepository,
	) error) error
}

// Observer recibe el resultado de cada operación finalizada (métricas).
type Observer interface {
	OperationFinished(kind, status string, d time.Duration, ledgerEntries int)
}

// MovementPublisher publica las operaciones confirmadas a consumidores externos.
type MovementPublisher interface {
	PublishOperation(ctx context.Context, op *entity.Operation, entries []*entity.LedgerEntry) error
}

type nopObserver struct{}

func (nopObserver) OperationFinished(string, string, time.Duration, int) {}

type nopPublisher struct{}

func (nopPublisher) PublishOperation(context.Context, *entity.Operation, []*entity.LedgerEntry) error {
	return nil
}
