package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stockmaster-api/internal/domain/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// InitialStockSupplier proveedor con el que se registra el stock inicial de un producto.
const InitialStockSupplier = "initial stock"

// StockReceiver aplica recepciones (lo implementa inventory.MovementEngine).
type StockReceiver interface {
	Receipt(ctx context.Context, in inventory.ReceiptInput) (*entity.Operation, error)
}

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía operaciones.
type ProductUseCase struct {
	repo      repository.ProductRepository
	locations repository.LocationRepository
	stock     repository.StockRepository
	receiver  StockReceiver
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	locations repository.LocationRepository,
	stock repository.StockRepository,
	receiver StockReceiver,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, locations: locations, stock: stock, receiver: receiver}
}

// Create crea un producto. Si trae initialStock > 0 se registra como recepción en locationId,
// de modo que el libro de movimientos explica también el saldo inicial.
func (uc *ProductUseCase) Create(ctx context.Context, createdBy string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ReorderLevel.IsNegative() || !domaininv.Representable(in.ReorderLevel) {
		return nil, fmt.Errorf("%w: reorderLevel fuera de rango", domain.ErrInvalidInput)
	}

	withStock := in.InitialStock != nil && !in.InitialStock.IsZero()
	if withStock {
		if in.InitialStock.IsNegative() {
			return nil, fmt.Errorf("%w: initialStock debe ser mayor que cero", domain.ErrInvalidQuantity)
		}
		loc, err := uc.locations.GetByID(ctx, in.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, &domain.UnknownReferenceError{Kind: domain.RefLocation, ID: in.LocationID}
		}
	}

	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	if in.UOM == "" {
		in.UOM = "pcs"
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         strings.TrimSpace(in.Name),
		Category:     strings.TrimSpace(in.Category),
		UOM:          in.UOM,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	if withStock {
		_, err := uc.receiver.Receipt(ctx, inventory.ReceiptInput{
			Supplier:  InitialStockSupplier,
			CreatedBy: createdBy,
			Items: []inventory.LineItem{{
				ProductID:  product.ID,
				Quantity:   *in.InitialStock,
				LocationID: in.LocationID,
			}},
		})
		if err != nil {
			return toProductResponse(product), fmt.Errorf("stock inicial: %w", err)
		}
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos presentes. No toca stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.SKU != nil && strings.TrimSpace(*in.SKU) != product.SKU {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, domain.ErrInvalidInput
		}
		// el SKU queda fijo en cuanto el producto tiene saldos
		levels, err := uc.stock.ListByProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(levels) > 0 {
			return nil, fmt.Errorf("%w: sku no se puede cambiar con stock registrado", domain.ErrInvalidInput)
		}
		other, err := uc.repo.GetBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrDuplicate
		}
		product.SKU = sku
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.UOM != nil {
		product.UOM = *in.UOM
	}
	if in.ReorderLevel != nil {
		if in.ReorderLevel.IsNegative() || !domaininv.Representable(*in.ReorderLevel) {
			return nil, fmt.Errorf("%w: reorderLevel fuera de rango", domain.ErrInvalidInput)
		}
		product.ReorderLevel = *in.ReorderLevel
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Stock saldos del producto por ubicación con el nombre de cada ubicación.
func (uc *ProductUseCase) Stock(ctx context.Context, productID string) (*dto.ProductStockResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	levels, err := uc.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	out := &dto.ProductStockResponse{
		ProductID: productID,
		Total:     decimal.Zero,
		Levels:    make([]dto.StockLevelResponse, 0, len(levels)),
	}
	names := make(map[string]string)
	for _, lvl := range levels {
		row := inventory.ToStockLevelResponse(lvl)
		name, ok := names[lvl.LocationID]
		if !ok {
			loc, err := uc.locations.GetByID(ctx, lvl.LocationID)
			if err != nil {
				return nil, err
			}
			if loc != nil {
				name = loc.Name
			}
			names[lvl.LocationID] = name
		}
		row.LocationName = name
		out.Levels = append(out.Levels, row)
		out.Total = out.Total.Add(lvl.Quantity)
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Category:     p.Category,
		UOM:          p.UOM,
		ReorderLevel: p.ReorderLevel,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
