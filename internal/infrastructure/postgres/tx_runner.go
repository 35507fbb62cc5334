package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

var tracer = otel.Tracer("stockmaster/postgres")

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxOptions parámetros de cada transacción del motor.
type TxOptions struct {
	IsolationLevel   pgx.TxIsoLevel
	StatementTimeout time.Duration
	// MaxAttempts intentos totales ante 40001/40P01.
	MaxAttempts int
}

// DefaultTxOptions READ COMMITTED + bloqueos de fila, 3 intentos.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		StatementTimeout: 3 * time.Second,
		MaxAttempts:      3,
	}
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	opts TxOptions
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions, log *logger.Logger) *TxRunner {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, opts: opts, log: log.Named("tx_runner")}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los conflictos de serialización y deadlocks se reintentan hasta MaxAttempts.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	operationRepo repository.OperationRepository,
) error) error {
	ctx, span := tracer.Start(ctx, "transaction", trace.WithAttributes(
		attribute.String("tx.isolation", string(r.opts.IsolationLevel)),
	))
	defer span.End()

	var err error
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			break
		}
		span.AddEvent("retry", trace.WithAttributes(attribute.Int("tx.attempt", attempt)))
		r.log.Debug().Err(err).Int("attempt", attempt).Msg("reintentando transacción")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction")
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	operationRepo repository.OperationRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: r.opts.IsolationLevel})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if r.opts.StatementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.opts.StatementTimeout.Milliseconds())); err != nil {
			_ = tx.Rollback(context.Background())
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(NewStockRepository(tx), NewLedgerRepository(tx), NewOperationRepository(tx)); err != nil {
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Error().Err(rbErr).AnErr("original_error", err).Msg("rollback falló")
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
