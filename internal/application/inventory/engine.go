package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

var tracer = otel.Tracer("stockmaster/inventory")

const defaultOperationTimeout = 5 * time.Second

// EngineConfig parámetros del motor.
type EngineConfig struct {
	// OperationTimeout acota cada operación completa (validación + transacción).
	OperationTimeout time.Duration
}

// MovementEngine aplica recepciones, entregas, traslados y ajustes.
// Cada operación valida todo el lote antes de tocar el stock y luego, en una sola transacción,
// bloquea las filas afectadas (SELECT FOR UPDATE, en orden fijo), escribe saldos, cabecera y un
// asiento por ítem. Si algo falla no queda ningún efecto y la operación se registra como failed.
type MovementEngine struct {
	txRunner   TxRunner
	products   repository.ProductRepository
	locations  repository.LocationRepository
	operations repository.OperationRepository
	ledger     repository.LedgerRepository
	cfg        EngineConfig
	log        *logger.Logger
	observer   Observer
	publisher  MovementPublisher
	now        func() time.Time
}

// NewMovementEngine construye el motor. operations y ledger son los repositorios fuera de
// transacción (registro de operaciones fallidas y consultas).
func NewMovementEngine(
	txRunner TxRunner,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	operations repository.OperationRepository,
	ledger repository.LedgerRepository,
	cfg EngineConfig,
	log *logger.Logger,
) *MovementEngine {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaultOperationTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MovementEngine{
		txRunner:   txRunner,
		products:   products,
		locations:  locations,
		operations: operations,
		ledger:     ledger,
		cfg:        cfg,
		log:        log.Named("movement_engine"),
		observer:   nopObserver{},
		publisher:  nopPublisher{},
		now:        time.Now,
	}
}

// WithObserver registra el observador de métricas.
func (e *MovementEngine) WithObserver(o Observer) *MovementEngine {
	if o != nil {
		e.observer = o
	}
	return e
}

// WithPublisher registra el publicador de eventos post-commit.
func (e *MovementEngine) WithPublisher(p MovementPublisher) *MovementEngine {
	if p != nil {
		e.publisher = p
	}
	return e
}

// LineItem ítem de recepción o entrega.
type LineItem struct {
	ProductID  string
	Quantity   decimal.Decimal
	LocationID string
}

// TransferItem ítem de traslado.
type TransferItem struct {
	ProductID      string
	Quantity       decimal.Decimal
	FromLocationID string
	ToLocationID   string
}

// ReceiptInput entrada de stock desde un proveedor.
type ReceiptInput struct {
	Supplier  string
	CreatedBy string
	Items     []LineItem
}

// DeliveryInput salida de stock hacia un cliente.
type DeliveryInput struct {
	Customer  string
	CreatedBy string
	Items     []LineItem
}

// TransferInput traslado entre ubicaciones.
type TransferInput struct {
	CreatedBy string
	Items     []TransferItem
}

// AdjustmentInput conteo físico de un producto en una ubicación.
type AdjustmentInput struct {
	ProductID       string
	LocationID      string
	CountedQuantity decimal.Decimal
	Reason          string
	CreatedBy       string
}

// AdjustmentResult operación de ajuste y el saldo resultante.
type AdjustmentResult struct {
	Operation *entity.Operation
	Stock     *entity.StockLevel
}

// Receipt suma cada cantidad al stock de (producto, ubicación).
func (e *MovementEngine) Receipt(ctx context.Context, in ReceiptInput) (*entity.Operation, error) {
	op := e.newOperation(entity.OperationReceipt, in.CreatedBy)
	op.Supplier = in.Supplier
	for _, it := range in.Items {
		op.Items = append(op.Items, entity.OperationItem{
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			ToLocationID: it.LocationID,
		})
	}
	op, _, err := e.execute(ctx, op)
	return op, err
}

// Delivery resta cada cantidad; falla con InsufficientStock si alguna supera lo disponible.
func (e *MovementEngine) Delivery(ctx context.Context, in DeliveryInput) (*entity.Operation, error) {
	op := e.newOperation(entity.OperationDelivery, in.CreatedBy)
	op.Customer = in.Customer
	for _, it := range in.Items {
		op.Items = append(op.Items, entity.OperationItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			FromLocationID: it.LocationID,
		})
	}
	op, _, err := e.execute(ctx, op)
	return op, err
}

// Transfer debita el origen y acredita el destino de cada ítem.
func (e *MovementEngine) Transfer(ctx context.Context, in TransferInput) (*entity.Operation, error) {
	op := e.newOperation(entity.OperationTransfer, in.CreatedBy)
	for _, it := range in.Items {
		op.Items = append(op.Items, entity.OperationItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			FromLocationID: it.FromLocationID,
			ToLocationID:   it.ToLocationID,
		})
	}
	op, _, err := e.execute(ctx, op)
	return op, err
}

// Adjustment fija el stock en la cantidad contada y registra la diferencia con signo.
func (e *MovementEngine) Adjustment(ctx context.Context, in AdjustmentInput) (*AdjustmentResult, error) {
	op := e.newOperation(entity.OperationAdjustment, in.CreatedBy)
	op.Reason = in.Reason
	op.Items = []entity.OperationItem{{
		ProductID:    in.ProductID,
		Quantity:     in.CountedQuantity,
		ToLocationID: in.LocationID,
	}}
	op, levels, err := e.execute(ctx, op)
	if err != nil {
		return &AdjustmentResult{Operation: op}, err
	}
	stock := *levels[entity.StockKey{ProductID: in.ProductID, LocationID: in.LocationID}]
	return &AdjustmentResult{Operation: op, Stock: &stock}, nil
}

func (e *MovementEngine) newOperation(kind entity.OperationKind, createdBy string) *entity.Operation {
	now := e.now()
	return &entity.Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    entity.StatusPending,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// execute corre el ciclo pending -> validating -> applying -> done | failed.
// La operación no se cancela con el contexto del llamador; se acota con OperationTimeout.
func (e *MovementEngine) execute(parent context.Context, op *entity.Operation) (*entity.Operation, map[entity.StockKey]*entity.StockLevel, error) {
	start := e.now()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), e.cfg.OperationTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "inventory."+string(op.Kind), trace.WithAttributes(
		attribute.String("operation.id", op.ID),
		attribute.Int("operation.items", len(op.Items)),
	))
	defer span.End()

	op.Status = entity.StatusValidating
	if err := e.validate(ctx, op); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation")
		return e.fail(ctx, op, err, start), nil, err
	}

	var (
		entries []*entity.LedgerEntry
		levels  map[entity.StockKey]*entity.StockLevel
	)
	err := e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		operationRepo repository.OperationRepository,
	) error {
		var err error
		entries, levels, err = e.apply(ctx, op, stockRepo, ledgerRepo, operationRepo)
		return err
	})
	if err != nil {
		err = classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply")
		return e.fail(ctx, op, err, start), nil, err
	}

	e.observer.OperationFinished(string(op.Kind), string(op.Status), e.now().Sub(start), len(entries))
	if err := e.publisher.PublishOperation(ctx, op, entries); err != nil {
		e.log.Warn().Err(err).Str("operation_id", op.ID).Msg("no se pudo publicar el evento de movimiento")
	}
	e.log.Info().
		Str("operation_id", op.ID).
		Str("kind", string(op.Kind)).
		Int("items", len(op.Items)).
		Msg("operación aplicada")
	return op, levels, nil
}

// validate revisa cantidades, traslados y referencias antes de cualquier mutación.
func (e *MovementEngine) validate(ctx context.Context, op *entity.Operation) error {
	if len(op.Items) == 0 {
		return fmt.Errorf("%w: la operación no tiene ítems", domain.ErrValidationFailed)
	}
	if op.Kind == entity.OperationAdjustment && len(op.Items) != 1 {
		return fmt.Errorf("%w: un ajuste tiene exactamente un ítem", domain.ErrValidationFailed)
	}
	seenProducts := make(map[string]bool)
	seenLocations := make(map[string]bool)
	for i, it := range op.Items {
		if err := e.validateItem(ctx, op.Kind, it, seenProducts, seenLocations); err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				return err
			}
			return &domain.ItemError{Index: i, ProductID: it.ProductID, Err: err}
		}
	}
	return nil
}

func (e *MovementEngine) validateItem(
	ctx context.Context,
	kind entity.OperationKind,
	it entity.OperationItem,
	seenProducts, seenLocations map[string]bool,
) error {
	switch kind {
	case entity.OperationReceipt, entity.OperationDelivery, entity.OperationTransfer:
		if !inventory.PositiveQuantity(it.Quantity) {
			return fmt.Errorf("%w: debe ser mayor que cero, recibido %s", domain.ErrInvalidQuantity, it.Quantity.String())
		}
	case entity.OperationAdjustment:
		if !inventory.ValidCount(it.Quantity) {
			return fmt.Errorf("%w: la cantidad contada no puede ser negativa, recibido %s", domain.ErrInvalidQuantity, it.Quantity.String())
		}
	default:
		return fmt.Errorf("%w: tipo de operación %q", domain.ErrValidationFailed, kind)
	}
	if !inventory.Representable(it.Quantity) {
		return fmt.Errorf("%w: máximo %d decimales y menor que 1e14, recibido %s",
			domain.ErrInvalidQuantity, inventory.QuantityScale, it.Quantity.String())
	}
	if kind == entity.OperationTransfer && it.FromLocationID != "" && it.FromLocationID == it.ToLocationID {
		return domain.ErrInvalidTransfer
	}

	if err := e.checkProduct(ctx, it.ProductID, seenProducts); err != nil {
		return err
	}
	for _, locID := range itemLocations(kind, it) {
		if err := e.checkLocation(ctx, locID, seenLocations); err != nil {
			return err
		}
	}
	return nil
}

func (e *MovementEngine) checkProduct(ctx context.Context, id string, seen map[string]bool) error {
	if id == "" {
		return &domain.UnknownReferenceError{Kind: domain.RefProduct}
	}
	if seen[id] {
		return nil
	}
	p, err := e.products.GetByID(ctx, id)
	if err != nil {
		return domain.StoreUnavailable(fmt.Errorf("consultar producto %s: %w", id, err))
	}
	if p == nil {
		return &domain.UnknownReferenceError{Kind: domain.RefProduct, ID: id}
	}
	seen[id] = true
	return nil
}

func (e *MovementEngine) checkLocation(ctx context.Context, id string, seen map[string]bool) error {
	if id == "" {
		return &domain.UnknownReferenceError{Kind: domain.RefLocation}
	}
	if seen[id] {
		return nil
	}
	l, err := e.locations.GetByID(ctx, id)
	if err != nil {
		return domain.StoreUnavailable(fmt.Errorf("consultar ubicación %s: %w", id, err))
	}
	if l == nil {
		return &domain.UnknownReferenceError{Kind: domain.RefLocation, ID: id}
	}
	seen[id] = true
	return nil
}

// apply se ejecuta dentro de la transacción. Puede reintentarse: no conserva estado entre intentos.
func (e *MovementEngine) apply(
	ctx context.Context,
	op *entity.Operation,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	operationRepo repository.OperationRepository,
) ([]*entity.LedgerEntry, map[entity.StockKey]*entity.StockLevel, error) {
	op.Status = entity.StatusApplying

	// Bloqueo en orden fijo: dos operaciones sobre las mismas claves no se interbloquean.
	keys := lockKeys(op)
	levels := make(map[entity.StockKey]*entity.StockLevel, len(keys))
	for _, k := range keys {
		lvl, err := stockRepo.GetOrCreate(ctx, k.ProductID, k.LocationID)
		if err != nil {
			return nil, nil, fmt.Errorf("bloquear stock %s/%s: %w", k.ProductID, k.LocationID, err)
		}
		levels[k] = lvl
	}

	now := e.now()
	entries := make([]*entity.LedgerEntry, 0, len(op.Items))
	for i, it := range op.Items {
		entry, err := applyItem(op.Kind, it, levels)
		if err != nil {
			return nil, nil, &domain.ItemError{Index: i, ProductID: it.ProductID, Err: err}
		}
		entry.ID = uuid.New().String()
		entry.RefID = op.ID
		entry.CreatedAt = now
		entries = append(entries, entry)
	}

	for _, k := range keys {
		lvl := levels[k]
		lvl.UpdatedAt = now
		if err := stockRepo.Write(ctx, lvl); err != nil {
			return nil, nil, fmt.Errorf("escribir stock %s/%s: %w", k.ProductID, k.LocationID, err)
		}
	}

	op.Status = entity.StatusDone
	op.FailureReason = ""
	op.UpdatedAt = now
	if err := operationRepo.Create(ctx, op); err != nil {
		return nil, nil, fmt.Errorf("guardar operación: %w", err)
	}
	for _, entry := range entries {
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return nil, nil, fmt.Errorf("registrar asiento: %w", err)
		}
	}
	return entries, levels, nil
}

// applyItem actualiza los saldos en memoria y devuelve el asiento del ítem.
// Los saldos se acumulan entre ítems que comparten clave.
func applyItem(kind entity.OperationKind, it entity.OperationItem, levels map[entity.StockKey]*entity.StockLevel) (*entity.LedgerEntry, error) {
	entry := &entity.LedgerEntry{Type: kind, ProductID: it.ProductID, Quantity: it.Quantity}
	switch kind {
	case entity.OperationReceipt:
		to := levels[entity.StockKey{ProductID: it.ProductID, LocationID: it.ToLocationID}]
		if err := credit(to, it.Quantity); err != nil {
			return nil, err
		}
		entry.ToLocationID = strPtr(it.ToLocationID)
	case entity.OperationDelivery:
		from := levels[entity.StockKey{ProductID: it.ProductID, LocationID: it.FromLocationID}]
		if err := debit(from, it.Quantity); err != nil {
			return nil, err
		}
		entry.FromLocationID = strPtr(it.FromLocationID)
	case entity.OperationTransfer:
		from := levels[entity.StockKey{ProductID: it.ProductID, LocationID: it.FromLocationID}]
		to := levels[entity.StockKey{ProductID: it.ProductID, LocationID: it.ToLocationID}]
		if err := debit(from, it.Quantity); err != nil {
			return nil, err
		}
		if err := credit(to, it.Quantity); err != nil {
			return nil, err
		}
		entry.FromLocationID = strPtr(it.FromLocationID)
		entry.ToLocationID = strPtr(it.ToLocationID)
	case entity.OperationAdjustment:
		lvl := levels[entity.StockKey{ProductID: it.ProductID, LocationID: it.ToLocationID}]
		entry.Quantity = inventory.CountDiff(lvl.Quantity, it.Quantity)
		lvl.Quantity = it.Quantity
		entry.ToLocationID = strPtr(it.ToLocationID)
	default:
		return nil, fmt.Errorf("%w: tipo de operación %q", domain.ErrValidationFailed, kind)
	}
	return entry, nil
}

func credit(lvl *entity.StockLevel, qty decimal.Decimal) error {
	next, ok := inventory.Credit(lvl.Quantity, qty)
	if !ok {
		return fmt.Errorf("%w: el saldo de %s/%s superaría el máximo admitido", domain.ErrInvalidQuantity, lvl.ProductID, lvl.LocationID)
	}
	lvl.Quantity = next
	return nil
}

func debit(lvl *entity.StockLevel, qty decimal.Decimal) error {
	next, ok := inventory.Debit(lvl.Quantity, qty)
	if !ok {
		return &domain.InsufficientStockError{
			ProductID:  lvl.ProductID,
			LocationID: lvl.LocationID,
			Available:  lvl.Quantity,
			Requested:  qty,
		}
	}
	lvl.Quantity = next
	return nil
}

// fail registra la operación como failed (fuera de la transacción, best effort).
func (e *MovementEngine) fail(ctx context.Context, op *entity.Operation, cause error, start time.Time) *entity.Operation {
	op.Status = entity.StatusFailed
	op.FailureReason = cause.Error()
	op.UpdatedAt = e.now()

	persistCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.Background(), e.cfg.OperationTimeout)
		defer cancel()
	}
	if err := e.operations.Create(persistCtx, op); err != nil {
		e.log.Warn().Err(err).Str("operation_id", op.ID).Msg("no se pudo registrar la operación fallida")
	}

	e.observer.OperationFinished(string(op.Kind), string(op.Status), e.now().Sub(start), 0)
	e.log.Warn().
		Str("operation_id", op.ID).
		Str("kind", string(op.Kind)).
		Str("reason", op.FailureReason).
		Msg("operación rechazada")
	return op
}

// classify conserva los errores de dominio; el resto es un fallo de infraestructura.
func classify(err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	return domain.StoreUnavailable(err)
}

func itemLocations(kind entity.OperationKind, it entity.OperationItem) []string {
	switch kind {
	case entity.OperationDelivery:
		return []string{it.FromLocationID}
	case entity.OperationTransfer:
		return []string{it.FromLocationID, it.ToLocationID}
	default:
		return []string{it.ToLocationID}
	}
}

func lockKeys(op *entity.Operation) []entity.StockKey {
	seen := make(map[entity.StockKey]bool)
	keys := make([]entity.StockKey, 0, len(op.Items)*2)
	for _, it := range op.Items {
		for _, locID := range itemLocations(op.Kind, it) {
			k := entity.StockKey{ProductID: it.ProductID, LocationID: locID}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
