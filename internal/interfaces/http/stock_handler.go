package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tallerpro/manufactura-api/internal/application/dto"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// StockHandler maneja movimientos manuales, traslados, reservas y la historia
// del libro (protegido).
type StockHandler struct {
	register    *stock.RegisterMovementUseCase
	transfer    *stock.TransferUseCase
	reservation *stock.ReservationUseCase
	history     *stock.HistoryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(register *stock.RegisterMovementUseCase, transfer *stock.TransferUseCase, reservation *stock.ReservationUseCase, history *stock.HistoryUseCase) *StockHandler {
	return &StockHandler{register: register, transfer: transfer, reservation: reservation, history: history}
}

// RegisterMovement registra un movimiento manual (INFLOW/OUTFLOW).
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.register.Execute(c.Context(), stock.MovementInput{
		ItemID:      in.ItemID,
		Tier:        in.Tier,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Source:      in.Source,
		ActorID:     actorID,
		Description: in.Description,
		UnitCost:    in.UnitCost,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(entry))
}

// Transfer traslada existencia entre dos ítems (dos asientos TRANSFER con el
// mismo correlation_id).
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries, err := h.transfer.Execute(c.Context(), stock.TransferInput{
		FromItemID:  in.FromItemID,
		ToItemID:    in.ToItemID,
		Quantity:    in.Quantity,
		ActorID:     actorID,
		Description: in.Description,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMovementResponse(e))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movements": out})
}

// Reserve compromete cantidad de un ítem a favor de una orden o plan.
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.reservation.Reserve(c.Context(), in.ItemID, in.OwnerReference, in.Quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":                 res.ID,
		"item_id":            res.ItemID,
		"owner_reference":    res.OwnerReference,
		"quantity_reserved":  res.QuantityReserved,
		"quantity_remaining": res.QuantityRemaining,
	})
}

// ReleaseOwner libera todas las reservas vigentes de un plan u orden.
func (h *StockHandler) ReleaseOwner(c *fiber.Ctx) error {
	owner := c.Params("owner")
	if owner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "owner es requerido"})
	}
	if err := h.reservation.ReleaseOwner(c.Context(), owner); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reservas liberadas"})
}

// ListMovements devuelve la historia del ítem (?from=&to=&limit=&offset=, RFC3339).
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	itemID := c.Params("id")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}
	entries, err := h.history.ListByItem(c.Context(), itemID, from, to, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMovementResponse(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

func toMovementResponse(e *entity.MovementEntry) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             e.ID,
		ItemID:         e.ItemID,
		ItemTier:       e.ItemTier,
		Type:           e.Type,
		Quantity:       e.Quantity,
		BeforeQuantity: e.BeforeQuantity,
		AfterQuantity:  e.AfterQuantity,
		Source:         e.Source,
		ActorID:        e.ActorID,
		CorrelationID:  e.CorrelationID,
		Description:    e.Description,
		CreatedAt:      e.CreatedAt,
	}
}
