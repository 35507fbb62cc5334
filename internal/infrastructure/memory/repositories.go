package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.LocationRepository      = (*LocationRepo)(nil)
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.LedgerRepository        = (*LedgerRepo)(nil)
	_ repository.OperationRepository     = (*OperationRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ v *view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				cp := *p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, existing := range st.products {
			if existing.ID != p.ID && existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(st *state) error {
		all := make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			cp := *p
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].Name != all[j].Name {
				return all[i].Name < all[j].Name
			}
			return all[i].ID < all[j].ID
		})
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ v *view }

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.locations[l.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *l
		st.locations[l.ID] = &cp
		return nil
	})
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.v.read(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			cp := *l
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) Update(_ context.Context, l *entity.Location) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.locations[l.ID]; !ok {
			return domain.ErrNotFound
		}
		cp := *l
		st.locations[l.ID] = &cp
		return nil
	})
}

func (r *LocationRepo) List(_ context.Context) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.v.read(func(st *state) error {
		out = make([]*entity.Location, 0, len(st.locations))
		for _, l := range st.locations {
			cp := *l
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

// StockRepo saldos en memoria. Dentro de Run el lock del Store ya serializa el acceso.
type StockRepo struct{ v *view }

func (r *StockRepo) GetOrCreate(ctx context.Context, productID, locationID string) (*entity.StockLevel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *entity.StockLevel
	err := r.v.read(func(st *state) error {
		if lvl, ok := st.stock[entity.StockKey{ProductID: productID, LocationID: locationID}]; ok {
			cp := *lvl
			out = &cp
			return nil
		}
		out = &entity.StockLevel{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}
		return nil
	})
	return out, err
}

func (r *StockRepo) Write(ctx context.Context, level *entity.StockLevel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if err := r.v.store.injected(FaultStockWrite); err != nil {
			return err
		}
		if level.Quantity.IsNegative() {
			return domain.ErrInsufficientStock
		}
		cp := *level
		st.stock[level.Key()] = &cp
		return nil
	})
}

func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	err := r.v.read(func(st *state) error {
		for k, lvl := range st.stock {
			if k.ProductID == productID {
				cp := *lvl
				out = append(out, &cp)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
		return nil
	})
	return out, err
}

// LedgerRepo libro de movimientos en memoria (solo inserción).
type LedgerRepo struct{ v *view }

func (r *LedgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if err := r.v.store.injected(FaultLedgerAppend); err != nil {
			return err
		}
		cp := *entry
		st.ledger = append(st.ledger, &cp)
		return nil
	})
}

func (r *LedgerRepo) History(_ context.Context, limit int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.v.read(func(st *state) error {
		n := len(st.ledger)
		if limit <= 0 || limit > n {
			limit = n
		}
		out = make([]*entity.LedgerEntry, 0, limit)
		for i := n - 1; i >= n-limit; i-- {
			cp := *st.ledger[i]
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepo) ListByRef(_ context.Context, refID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.v.read(func(st *state) error {
		for _, e := range st.ledger {
			if e.RefID == refID {
				cp := *e
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// OperationRepo operaciones en memoria.
type OperationRepo struct{ v *view }

func (r *OperationRepo) Create(ctx context.Context, op *entity.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.v.write(func(st *state) error {
		if err := r.v.store.injected(FaultOperationCreate); err != nil {
			return err
		}
		if _, ok := st.operations[op.ID]; ok {
			return domain.ErrDuplicate
		}
		st.operations[op.ID] = copyOperation(op)
		return nil
	})
}

func (r *OperationRepo) GetByID(_ context.Context, id string) (*entity.Operation, error) {
	var out *entity.Operation
	err := r.v.read(func(st *state) error {
		if op, ok := st.operations[id]; ok {
			out = copyOperation(op)
		}
		return nil
	})
	return out, err
}

func copyOperation(op *entity.Operation) *entity.Operation {
	cp := *op
	cp.Items = append([]entity.OperationItem(nil), op.Items...)
	return &cp
}

// UserRepo usuarios en memoria.
type UserRepo struct{ v *view }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(st *state) error {
		if u, ok := st.users[id]; ok {
			cp := *u
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				cp := *u
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, existing := range st.users {
			if existing.ID != u.ID && strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

// PasswordResetRepo OTP en memoria.
type PasswordResetRepo struct{ v *view }

func (r *PasswordResetRepo) Create(_ context.Context, pr *entity.PasswordReset) error {
	return r.v.write(func(st *state) error {
		cp := *pr
		st.resets = append(st.resets, &cp)
		return nil
	})
}

func (r *PasswordResetRepo) LatestActive(_ context.Context, email string) (*entity.PasswordReset, error) {
	var out *entity.PasswordReset
	err := r.v.read(func(st *state) error {
		for i := len(st.resets) - 1; i >= 0; i-- {
			pr := st.resets[i]
			if !pr.Used && strings.EqualFold(pr.Email, email) {
				cp := *pr
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *PasswordResetRepo) MarkUsed(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		for i, pr := range st.resets {
			if pr.ID == id {
				cp := *pr
				cp.Used = true
				st.resets[i] = &cp
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
