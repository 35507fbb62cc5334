package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// los detalles usan los nombres del JSON (camelCase)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode parsea el body JSON en out y lo valida con las etiquetas validate.
func decode(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{
			status: fiber.StatusBadRequest,
			body:   dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"},
		}
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fieldPath(fe)] = fe.Tag()
		}
		return &requestError{
			status: fiber.StatusBadRequest,
			body:   dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details},
		}
	}
	return nil
}

// fieldPath quita el nombre del struct raíz: "CreateReceiptRequest.items[0].productId" -> "items[0].productId".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// page lee limit/offset con los límites habituales (20 por defecto, máximo 100).
func page(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
