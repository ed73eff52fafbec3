package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest entrada para un movimiento manual de inventario.
// Quantity siempre positiva; el signo lo determina Type (INFLOW/OUTFLOW).
type RegisterMovementRequest struct {
	ItemID      string           `json:"item_id" validate:"required"`
	Tier        string           `json:"tier"`
	Type        string           `json:"type" validate:"required,oneof=INFLOW OUTFLOW"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Source      string           `json:"source" validate:"required,oneof=MANUAL PURCHASE"`
	Description string           `json:"description"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
}

// MovementResponse salida de un asiento del libro de movimientos.
type MovementResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id"`
	ItemTier       string          `json:"item_tier"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	BeforeQuantity decimal.Decimal `json:"before_quantity"`
	AfterQuantity  decimal.Decimal `json:"after_quantity"`
	Source         string          `json:"source"`
	ActorID        string          `json:"actor_id"`
	CorrelationID  string          `json:"correlation_id"`
	Description    string          `json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransferRequest entrada para trasladar existencia entre dos ítems.
type TransferRequest struct {
	FromItemID  string          `json:"from_item_id" validate:"required"`
	ToItemID    string          `json:"to_item_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description"`
}

// ReserveRequest entrada para comprometer cantidad a favor de una orden/plan.
type ReserveRequest struct {
	ItemID         string          `json:"item_id" validate:"required"`
	OwnerReference string          `json:"owner_reference" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// ShortageLineDTO línea en falta de un InsufficientStockError.
type ShortageLineDTO struct {
	ItemID    string          `json:"item_id"`
	Code      string          `json:"code"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Shortage  decimal.Decimal `json:"shortage"`
}
