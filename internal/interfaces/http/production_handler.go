package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/manufactura-api/internal/application/dto"
	"github.com/tallerpro/manufactura-api/internal/application/production"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// ProductionHandler maneja planes de producción, publicaciones y reversas (protegido).
type ProductionHandler struct {
	createPlan   *production.CreatePlanUseCase
	postOutput   *production.PostOutputUseCase
	rollback     *production.RollbackUseCase
	cancelPlan   *production.CancelPlanUseCase
	completePlan *production.CompletePlanUseCase
	query        *production.PlanQueryUseCase
}

// NewProductionHandler construye el handler.
func NewProductionHandler(
	createPlan *production.CreatePlanUseCase,
	postOutput *production.PostOutputUseCase,
	rollback *production.RollbackUseCase,
	cancelPlan *production.CancelPlanUseCase,
	completePlan *production.CompletePlanUseCase,
	query *production.PlanQueryUseCase,
) *ProductionHandler {
	return &ProductionHandler{
		createPlan:   createPlan,
		postOutput:   postOutput,
		rollback:     rollback,
		cancelPlan:   cancelPlan,
		completePlan: completePlan,
		query:        query,
	}
}

// CreatePlan crea un plan: resuelve el BOM, congela el snapshot y reserva materiales.
func (h *ProductionHandler) CreatePlan(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if !domain.CanManagePlans(GetRole(c)) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo manager/planner crean planes"})
	}
	var in dto.CreatePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	plan, err := h.createPlan.Execute(c.Context(), production.CreatePlanInput{
		ItemID:    in.ItemID,
		Tier:      in.Tier,
		Reference: in.Reference,
		Quantity:  in.Quantity,
		ActorID:   actorID,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPlanResponse(plan))
}

// GetPlan devuelve el plan con su snapshot congelado y reportes vivos.
func (h *ProductionHandler) GetPlan(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	detail, err := h.query.Get(c.Context(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	snapshot := make([]dto.BOMLineResponse, 0, len(detail.Snapshot))
	for _, l := range detail.Snapshot {
		snapshot = append(snapshot, dto.BOMLineResponse{
			MaterialID:      l.MaterialID,
			MaterialTier:    l.MaterialTier,
			QuantityPerUnit: l.QuantityPerUnit,
			QuantityNeeded:  l.QuantityNeeded,
		})
	}
	return c.JSON(fiber.Map{
		"plan":     toPlanResponse(detail.Plan),
		"snapshot": snapshot,
		"logs":     detail.Logs,
	})
}

// ListPlans lista planes (?status=PENDING|IN_PROGRESS|COMPLETED|CANCELLED).
func (h *ProductionHandler) ListPlans(c *fiber.Ctx) error {
	status := c.Query("status")
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	plans, err := h.query.List(c.Context(), status, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "plans": out})
}

// PostOutput publica un delta producido contra el plan (motor de consumo).
func (h *ProductionHandler) PostOutput(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	planID := c.Params("id")
	if planID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.PostOutputRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.postOutput.Execute(c.Context(), planID, in.Quantity, actorID)
	if err != nil {
		return respondDomainError(c, err)
	}
	movements := make([]dto.MovementResponse, 0, len(result.Entries))
	for _, e := range result.Entries {
		movements = append(movements, toMovementResponse(e))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PostOutputResponse{
		ProductionLogID: result.ProductionLogID,
		CorrelationID:   result.CorrelationID,
		Movements:       movements,
	})
}

// Rollback revierte un reporte de producción con asientos de compensación.
func (h *ProductionHandler) Rollback(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	logID := c.Params("id")
	if logID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.RollbackRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.rollback.Execute(c.Context(), logID, actorID, GetRole(c), in.Reason); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reporte revertido"})
}

// CancelPlan cancela un plan revirtiendo todos sus reportes vivos.
func (h *ProductionHandler) CancelPlan(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	planID := c.Params("id")
	if planID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.RollbackRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.cancelPlan.Execute(c.Context(), planID, actorID, GetRole(c), in.Reason); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "plan cancelado"})
}

// CompletePlan sella un plan: libera reservas y lo marca completado.
func (h *ProductionHandler) CompletePlan(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	planID := c.Params("id")
	if planID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.completePlan.Execute(c.Context(), planID, actorID, GetRole(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "plan completado"})
}

func toPlanResponse(p *entity.ProductionPlan) *dto.PlanResponse {
	return &dto.PlanResponse{
		ID:               p.ID,
		ItemID:           p.ItemID,
		ItemTier:         p.ItemTier,
		Reference:        p.Reference,
		PlannedQuantity:  p.PlannedQuantity,
		ProducedQuantity: p.ProducedQuantity,
		Status:           p.Status,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt,
	}
}
