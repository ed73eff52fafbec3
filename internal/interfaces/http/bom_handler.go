package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/bom"
	"github.com/tallerpro/manufactura-api/internal/application/dto"
	"github.com/tallerpro/manufactura-api/internal/domain"
)

// BOMHandler maneja el grafo de lista de materiales (protegido).
// Editar el grafo es de manager/planner; resolver es de cualquier rol.
type BOMHandler struct {
	edges    *bom.EdgeUseCase
	resolver *bom.ResolverUseCase
}

// NewBOMHandler construye el handler.
func NewBOMHandler(edges *bom.EdgeUseCase, resolver *bom.ResolverUseCase) *BOMHandler {
	return &BOMHandler{edges: edges, resolver: resolver}
}

// CreateEdge registra una arista padre -> hijo. Rechaza ciclos.
func (h *BOMHandler) CreateEdge(c *fiber.Ctx) error {
	if !domain.CanManagePlans(GetRole(c)) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo manager/planner editan el BOM"})
	}
	var in dto.BOMEdgeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	edge, err := h.edges.CreateEdge(c.Context(), bom.EdgeInput{
		ParentItemID:    in.ParentItemID,
		ChildItemID:     in.ChildItemID,
		QuantityPerUnit: in.QuantityPerUnit,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":                edge.ID,
		"parent_item_id":    edge.ParentItemID,
		"child_item_id":     edge.ChildItemID,
		"quantity_per_unit": edge.QuantityPerUnit,
	})
}

// DeleteEdge elimina una arista del grafo vivo. Los snapshots congelados no cambian.
func (h *BOMHandler) DeleteEdge(c *fiber.Ctx) error {
	if !domain.CanManagePlans(GetRole(c)) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo manager/planner editan el BOM"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.edges.DeleteEdge(c.Context(), id); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "arista eliminada"})
}

// Resolve expande el BOM de un producto para una cantidad objetivo
// (?tier=SEMI|FINISHED&quantity=N).
func (h *BOMHandler) Resolve(c *fiber.Ctx) error {
	itemID := c.Params("id")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	tier := c.Query("tier")
	quantity, err := decimal.NewFromString(c.Query("quantity", "1"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity inválida"})
	}
	lines, err := h.resolver.Resolve(c.Context(), itemID, tier, quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.BOMLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.BOMLineResponse{
			MaterialID:      l.MaterialID,
			MaterialTier:    l.MaterialTier,
			QuantityPerUnit: l.QuantityPerUnit,
			QuantityNeeded:  l.QuantityNeeded,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "lines": out})
}
