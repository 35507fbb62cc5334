package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.OperationRepository = (*OperationRepo)(nil)

// OperationRepo cabeceras e ítems de operaciones.
type OperationRepo struct {
	q Querier
}

// NewOperationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOperationRepository(q Querier) *OperationRepo {
	return &OperationRepo{q: q}
}

// Create guarda cabecera e ítems.
func (r *OperationRepo) Create(ctx context.Context, op *entity.Operation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO operations (id, kind, supplier, customer, reason, status, created_by, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)`,
		op.ID, string(op.Kind), op.Supplier, op.Customer, op.Reason, string(op.Status),
		op.CreatedBy, op.FailureReason, op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert operation: %w", err)
	}

	for i, it := range op.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO operation_items (operation_id, line_no, product_id, quantity, from_location_id, to_location_id)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`,
			op.ID, i+1, it.ProductID, it.Quantity, it.FromLocationID, it.ToLocationID,
		)
		if err != nil {
			return fmt.Errorf("insert operation item %d: %w", i+1, err)
		}
	}
	return nil
}

// GetByID obtiene una operación con sus ítems. (nil, nil) si no existe.
func (r *OperationRepo) GetByID(ctx context.Context, id string) (*entity.Operation, error) {
	var (
		op           entity.Operation
		kind, status string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, kind, supplier, customer, reason, status, COALESCE(created_by, ''), failure_reason, created_at, updated_at
		FROM operations WHERE id = $1`, id).Scan(
		&op.ID, &kind, &op.Supplier, &op.Customer, &op.Reason, &status,
		&op.CreatedBy, &op.FailureReason, &op.CreatedAt, &op.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operation: %w", err)
	}
	op.Kind = entity.OperationKind(kind)
	op.Status = entity.OperationStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT product_id, quantity, COALESCE(from_location_id, ''), COALESCE(to_location_id, '')
		FROM operation_items WHERE operation_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list operation items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OperationItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.FromLocationID, &it.ToLocationID); err != nil {
			return nil, fmt.Errorf("scan operation item: %w", err)
		}
		op.Items = append(op.Items, it)
	}
	return &op, rows.Err()
}
