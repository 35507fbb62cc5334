package inventory

import (
	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// ToOperationResponse mapea una operación a su DTO.
func ToOperationResponse(op *entity.Operation) dto.OperationResponse {
	out := dto.OperationResponse{
		ID:            op.ID,
		Type:          string(op.Kind),
		Supplier:      op.Supplier,
		Customer:      op.Customer,
		Reason:        op.Reason,
		Status:        string(op.Status),
		CreatedBy:     op.CreatedBy,
		FailureReason: op.FailureReason,
		Items:         make([]dto.OperationItemResponse, 0, len(op.Items)),
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	}
	for _, it := range op.Items {
		out.Items = append(out.Items, dto.OperationItemResponse{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			FromLocationID: strPtr(it.FromLocationID),
			ToLocationID:   strPtr(it.ToLocationID),
		})
	}
	return out
}

// ToStockLevelResponse mapea un saldo a su DTO.
func ToStockLevelResponse(s *entity.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:  s.ProductID,
		LocationID: s.LocationID,
		Quantity:   s.Quantity,
		UpdatedAt:  s.UpdatedAt,
	}
}

// ToLedgerEntryResponses mapea asientos a DTOs conservando el orden.
func ToLedgerEntryResponses(entries []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:             e.ID,
			Type:           string(e.Type),
			RefID:          e.RefID,
			ProductID:      e.ProductID,
			FromLocationID: e.FromLocationID,
			ToLocationID:   e.ToLocationID,
			Quantity:       e.Quantity,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}
