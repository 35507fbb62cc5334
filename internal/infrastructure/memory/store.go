// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa en tests y con STORE_DRIVER=memory (una sola réplica, sin durabilidad).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Operaciones de escritura que pueden fallar a propósito vía SetFault.
const (
	FaultStockWrite      = "stock.write"
	FaultLedgerAppend    = "ledger.append"
	FaultOperationCreate = "operation.create"
	FaultCommit          = "commit"
)

type state struct {
	products   map[string]*entity.Product
	locations  map[string]*entity.Location
	stock      map[entity.StockKey]*entity.StockLevel
	ledger     []*entity.LedgerEntry
	operations map[string]*entity.Operation
	users      map[string]*entity.User
	resets     []*entity.PasswordReset
}

func newState() *state {
	return &state{
		products:   make(map[string]*entity.Product),
		locations:  make(map[string]*entity.Location),
		stock:      make(map[entity.StockKey]*entity.StockLevel),
		operations: make(map[string]*entity.Operation),
		users:      make(map[string]*entity.User),
	}
}

// clone copia lo que una transacción puede modificar. Los asientos y operaciones ya
// guardados son inmutables, por eso se comparten.
func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]*entity.Product, len(s.products)),
		locations:  make(map[string]*entity.Location, len(s.locations)),
		stock:      make(map[entity.StockKey]*entity.StockLevel, len(s.stock)),
		ledger:     append([]*entity.LedgerEntry(nil), s.ledger...),
		operations: make(map[string]*entity.Operation, len(s.operations)),
		users:      make(map[string]*entity.User, len(s.users)),
		resets:     append([]*entity.PasswordReset(nil), s.resets...),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.stock {
		lvl := *v
		c.stock[k] = &lvl
	}
	for k, v := range s.operations {
		c.operations[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store almacén en memoria. Las transacciones trabajan sobre una copia del estado bajo un
// mutex exclusivo y la publican sólo si fn termina sin error.
type Store struct {
	mu    sync.RWMutex
	st    *state
	fault func(op string) error
	now   func() time.Time
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetFault instala una función que puede hacer fallar escrituras (tests de atomicidad).
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) injected(op string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op)
}

// Run ejecuta fn con repositorios atados a una copia del estado.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	operationRepo repository.OperationRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	v := &view{store: s, tx: snap}
	if err := fn(&StockRepo{v}, &LedgerRepo{v}, &OperationRepo{v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.injected(FaultCommit); err != nil {
		return err
	}
	s.st = snap
	return nil
}

// view resuelve el estado sobre el que opera un repositorio: la copia de la transacción
// activa o el estado publicado bajo el lock del Store.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (s *Store) base() *view { return &view{store: s} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s.base()} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s.base()} }

// Stock repositorio de saldos (lecturas fuera de transacción).
func (s *Store) Stock() *StockRepo { return &StockRepo{s.base()} }

// Ledger repositorio del libro de movimientos.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s.base()} }

// Operations repositorio de operaciones.
func (s *Store) Operations() *OperationRepo { return &OperationRepo{s.base()} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s.base()} }

// PasswordResets repositorio de OTP.
func (s *Store) PasswordResets() *PasswordResetRepo { return &PasswordResetRepo{s.base()} }

// Analytics consultas de lectura.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s.base()} }
