package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/manufactura-api/internal/application/dto"
	"github.com/tallerpro/manufactura-api/internal/domain"
)

// respondDomainError mapea errores de dominio a respuestas HTTP. Los errores
// de stock insuficiente devuelven TODAS las líneas en falta en el cuerpo.
func respondDomainError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		lines := make([]dto.ShortageLineDTO, 0, len(insufficient.Lines))
		for _, l := range insufficient.Lines {
			lines = append(lines, dto.ShortageLineDTO{
				ItemID:    l.ItemID,
				Code:      l.Code,
				Required:  l.Required,
				Available: l.Available,
				Shortage:  l.Shortage,
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":      "INSUFFICIENT_STOCK",
			"message":   "stock insuficiente",
			"shortages": lines,
		})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrBOMCycle):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BOM_CYCLE", Message: err.Error()})
	case errors.Is(err, domain.ErrPlanCompleted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PLAN_COMPLETED", Message: err.Error()})
	case errors.Is(err, domain.ErrLogVoided):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOG_VOIDED", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
