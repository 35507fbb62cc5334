package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/domain"
)

// requestError error de entrada detectado en la capa HTTP (body o validación).
type requestError struct {
	status int
	body   dto.ErrorResponse
}

func (e *requestError) Error() string { return e.body.Message }

// errorResponse traduce un error de aplicación a status HTTP y cuerpo.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status, reqErr.body
	}

	var details map[string]any
	var itemErr *domain.ItemError
	if errors.As(err, &itemErr) {
		details = map[string]any{"item": itemErr.Index, "productId": itemErr.ProductID}
	}

	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		details = withDetails(details, map[string]any{
			"productId":  stockErr.ProductID,
			"locationId": stockErr.LocationID,
			"available":  stockErr.Available.String(),
			"requested":  stockErr.Requested.String(),
		})
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error(), Details: details}
	case errors.Is(err, domain.ErrUnknownReference):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "UNKNOWN_REFERENCE", Message: err.Error(), Details: details}
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error(), Details: details}
	case errors.Is(err, domain.ErrInvalidTransfer):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_TRANSFER", Message: err.Error(), Details: details}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "almacén de stock no disponible, reintente"}
	case errors.Is(err, domain.ErrValidationFailed):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION_FAILED", Message: err.Error(), Details: details}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: "usuario no encontrado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrInvalidOTP):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_OTP", Message: "código inválido"}
	case errors.Is(err, domain.ErrOTPExpired):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "OTP_EXPIRED", Message: "código expirado"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	}
}

// writeError responde con el mapeo estándar de errores.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

// writeOperationError igual que writeError, con el id de la operación registrada como failed.
func writeOperationError(c *fiber.Ctx, operationID string, err error) error {
	status, body := errorResponse(err)
	body.OperationID = operationID
	return c.Status(status).JSON(body)
}

func withDetails(base, extra map[string]any) map[string]any {
	if base == nil {
		return extra
	}
	for k, v := range extra {
		base[k] = v
	}
	return base
}
