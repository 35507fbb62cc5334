package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos. La tabla es append-only (trigger en la migración).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

type ledgerRow struct {
	ID             string          `db:"id"`
	Type           string          `db:"type"`
	RefID          string          `db:"ref_id"`
	ProductID      string          `db:"product_id"`
	FromLocationID *string         `db:"from_location_id"`
	ToLocationID   *string         `db:"to_location_id"`
	Quantity       decimal.Decimal `db:"quantity"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r ledgerRow) toEntity() *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:             r.ID,
		Type:           entity.OperationKind(r.Type),
		RefID:          r.RefID,
		ProductID:      r.ProductID,
		FromLocationID: r.FromLocationID,
		ToLocationID:   r.ToLocationID,
		Quantity:       r.Quantity,
		CreatedAt:      r.CreatedAt,
	}
}

var ledgerSelect = psql.
	Select("id", "type", "ref_id", "product_id", "from_location_id", "to_location_id", "quantity", "created_at").
	From("ledger_entries")

// Append inserta un asiento.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	sql, args, err := psql.Insert("ledger_entries").
		Columns("id", "type", "ref_id", "product_id", "from_location_id", "to_location_id", "quantity", "created_at").
		Values(e.ID, string(e.Type), e.RefID, e.ProductID, e.FromLocationID, e.ToLocationID, e.Quantity, e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert ledger: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// History asientos más recientes primero (orden de inserción).
func (r *LedgerRepo) History(ctx context.Context, limit int) ([]*entity.LedgerEntry, error) {
	sql, args, err := ledgerSelect.OrderBy("seq DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger history: %w", err)
	}
	return r.selectEntries(ctx, sql, args)
}

// ListByRef asientos de una operación en orden de inserción.
func (r *LedgerRepo) ListByRef(ctx context.Context, refID string) ([]*entity.LedgerEntry, error) {
	sql, args, err := ledgerSelect.Where("ref_id = ?", refID).OrderBy("seq").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger by ref: %w", err)
	}
	return r.selectEntries(ctx, sql, args)
}

func (r *LedgerRepo) selectEntries(ctx context.Context, sql string, args []any) ([]*entity.LedgerEntry, error) {
	var rows []ledgerRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	out := make([]*entity.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
