package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInvalidOTP         = errors.New("código OTP inválido")
	ErrOTPExpired         = errors.New("código OTP expirado")

	// Motor de movimientos.
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrUnknownReference  = errors.New("referencia desconocida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransfer   = errors.New("traslado inválido: origen y destino deben ser distintos")
	ErrStoreUnavailable  = errors.New("almacén de stock no disponible")
	ErrValidationFailed  = errors.New("la operación no superó la validación")
)

// InsufficientStockError detalla una salida que dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID  string
	LocationID string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en ubicación %s: disponible %s, solicitado %s",
		e.ProductID, e.LocationID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Tipos de referencia para UnknownReferenceError.
const (
	RefProduct  = "product"
	RefLocation = "location"
)

// UnknownReferenceError producto o ubicación inexistente (o vacío).
type UnknownReferenceError struct {
	Kind string
	ID   string
}

func (e *UnknownReferenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("referencia desconocida: %s vacío", e.Kind)
	}
	return fmt.Sprintf("referencia desconocida: %s %s", e.Kind, e.ID)
}

func (e *UnknownReferenceError) Unwrap() error { return ErrUnknownReference }

// ItemError identifica el primer ítem que hizo fallar un lote.
// Coincide con ErrValidationFailed y con la causa envuelta.
type ItemError struct {
	Index     int
	ProductID string
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("ítem %d (producto %s): %v", e.Index+1, e.ProductID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

func (e *ItemError) Is(target error) bool { return target == ErrValidationFailed }

// StoreUnavailable envuelve un error de infraestructura como ErrStoreUnavailable.
func StoreUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// IsDomainError indica si err pertenece a la taxonomía del motor.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidQuantity, ErrUnknownReference, ErrInsufficientStock,
		ErrInvalidTransfer, ErrStoreUnavailable, ErrValidationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
