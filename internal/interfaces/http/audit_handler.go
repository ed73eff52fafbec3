package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/manufactura-api/internal/application/audit"
	"github.com/tallerpro/manufactura-api/internal/application/dto"
	"github.com/tallerpro/manufactura-api/internal/domain"
)

// AuditHandler expone el auditor de consistencia por HTTP (solo manager).
// El barrido completo corre como proceso aparte (cmd/audit).
type AuditHandler struct {
	uc *audit.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// AuditItem reproduce la historia del ítem y reporta la deriva sin tocar nada.
func (h *AuditHandler) AuditItem(c *fiber.Ctx) error {
	if GetRole(c) != domain.RoleManager {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo manager audita"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	report, err := h.uc.AuditItem(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toAuditResponse(report))
}

// RepairItem audita y, si hay deriva, publica el asiento correctivo.
func (h *AuditHandler) RepairItem(c *fiber.Ctx) error {
	if GetRole(c) != domain.RoleManager {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo manager repara"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.RollbackRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	reason := in.Reason
	if reason == "" {
		reason = "reparación manual"
	}
	report, err := h.uc.RepairItem(c.Context(), id, reason)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toAuditResponse(report))
}

func toAuditResponse(rep *audit.ItemReport) fiber.Map {
	return fiber.Map{
		"item_id":          rep.ItemID,
		"code":             rep.Code,
		"stored":           rep.Stored,
		"replayed":         rep.Replayed,
		"drift":            rep.Drift,
		"drifted":          rep.Drifted,
		"repaired":         rep.Repaired,
		"chain_violations": len(rep.ChainViolations),
	}
}
