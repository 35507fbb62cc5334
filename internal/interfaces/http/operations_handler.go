package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// OperationsHandler recepciones, entregas, traslados, ajustes e historial (protegido).
type OperationsHandler struct {
	engine *inventory.MovementEngine
}

// NewOperationsHandler construye el handler.
func NewOperationsHandler(engine *inventory.MovementEngine) *OperationsHandler {
	return &OperationsHandler{engine: engine}
}

// CreateReceipt godoc
// @Summary      Registrar recepción
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "supplier, items[productId, quantity, locationId]"
// @Success      201   {object}  dto.OperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/ops/receipts [post]
func (h *OperationsHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := decode(c, &in); err != nil {
		return writeError(c, err)
	}
	op, err := h.engine.Receipt(c.UserContext(), inventory.ReceiptInput{
		Supplier:  in.Supplier,
		CreatedBy: GetUserID(c),
		Items:     lineItems(in.Items),
	})
	return respondOperation(c, op, err)
}

// CreateDelivery godoc
// @Summary      Registrar entrega
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "customer, items[productId, quantity, locationId]"
// @Success      201   {object}  dto.OperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ops/deliveries [post]
func (h *OperationsHandler) CreateDelivery(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
	if err := decode(c, &in); err != nil {
		return writeError(c, err)
	}
	op, err := h.engine.Delivery(c.UserContext(), inventory.DeliveryInput{
		Customer:  in.Customer,
		CreatedBy: GetUserID(c),
		Items:     lineItems(in.Items),
	})
	return respondOperation(c, op, err)
}

// CreateTransfer godoc
// @Summary      Registrar traslado entre ubicaciones
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "items[productId, quantity, fromLocationId, toLocationId]"
// @Success      201   {object}  dto.OperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ops/transfers [post]
func (h *OperationsHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := decode(c, &in); err != nil {
		return writeError(c, err)
	}
	items := make([]inventory.TransferItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.TransferItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			FromLocationID: it.FromLocationID,
			ToLocationID:   it.ToLocationID,
		})
	}
	op, err := h.engine.Transfer(c.UserContext(), inventory.TransferInput{CreatedBy: GetUserID(c), Items: items})
	return respondOperation(c, op, err)
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste por conteo físico
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "productId, locationId, countedQuantity, reason"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/ops/adjustments [post]
func (h *OperationsHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := decode(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.engine.Adjustment(c.UserContext(), inventory.AdjustmentInput{
		ProductID:       in.ProductID,
		LocationID:      in.LocationID,
		CountedQuantity: *in.CountedQuantity,
		Reason:          in.Reason,
		CreatedBy:       GetUserID(c),
	})
	if err != nil {
		var op *entity.Operation
		if res != nil {
			op = res.Operation
		}
		return writeOperationError(c, operationID(op), err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustmentResponse{
		Adjustment: inventory.ToOperationResponse(res.Operation),
		Stock:      inventory.ToStockLevelResponse(res.Stock),
	})
}

// History godoc
// @Summary      Historial de movimientos
// @Description  Asientos del libro, más recientes primero.
// @Tags         operations
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite (máx 1000)"  default(200)
// @Success      200    {array}   dto.LedgerEntryResponse
// @Failure      503    {object}  dto.ErrorResponse
// @Router       /api/ops/history [get]
func (h *OperationsHandler) History(c *fiber.Ctx) error {
	entries, err := h.engine.History(c.UserContext(), c.QueryInt("limit", inventory.DefaultHistoryLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToLedgerEntryResponses(entries))
}

// GetOperation godoc
// @Summary      Obtener operación
// @Tags         operations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la operación"
// @Success      200  {object}  dto.OperationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ops/operations/{id} [get]
func (h *OperationsHandler) GetOperation(c *fiber.Ctx) error {
	op, err := h.engine.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToOperationResponse(op))
}

func lineItems(in []dto.LineItemRequest) []inventory.LineItem {
	out := make([]inventory.LineItem, 0, len(in))
	for _, it := range in {
		out = append(out, inventory.LineItem{ProductID: it.ProductID, Quantity: it.Quantity, LocationID: it.LocationID})
	}
	return out
}

func respondOperation(c *fiber.Ctx, op *entity.Operation, err error) error {
	if err != nil {
		return writeOperationError(c, operationID(op), err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToOperationResponse(op))
}

func operationID(op *entity.Operation) string {
	if op == nil {
		return ""
	}
	return op.ID
}
