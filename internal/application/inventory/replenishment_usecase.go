package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos cuyo stock total
// (suma de todas las ubicaciones) está por debajo del nivel de reorden.
type ReplenishmentUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(analyticsRepo repository.AnalyticsRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{analyticsRepo: analyticsRepo}
}

// GenerateReplenishmentList devuelve los productos bajo el nivel de reorden con la cantidad
// sugerida de pedido (hasta ReorderLevel * 1.5), ordenados por déficit relativo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.analyticsRepo.LowStock(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(items))
	for _, item := range items {
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         item.ProductID,
			SKU:               item.SKU,
			ProductName:       item.Name,
			Category:          item.Category,
			UOM:               item.UOM,
			CurrentStock:      item.CurrentStock,
			ReorderLevel:      item.ReorderLevel,
			IdealStock:        inventory.IdealStock(item.ReorderLevel),
			SuggestedOrderQty: inventory.SuggestedOrder(item.CurrentStock, item.ReorderLevel),
			ShortageRatio:     inventory.ShortageRatio(item.CurrentStock, item.ReorderLevel).Round(4),
		})
	}

	// Mayor déficit relativo primero; empate: mayor cantidad sugerida, luego SKU.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.ShortageRatio.Equal(b.ShortageRatio) {
			return a.ShortageRatio.GreaterThan(b.ShortageRatio)
		}
		if !a.SuggestedOrderQty.Equal(b.SuggestedOrderQty) {
			return a.SuggestedOrderQty.GreaterThan(b.SuggestedOrderQty)
		}
		return a.SKU < b.SKU
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
