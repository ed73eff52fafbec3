package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para dar de alta un ítem de inventario.
// La existencia inicia en 0: todo stock inicial entra como movimiento.
type CreateItemRequest struct {
	Tier          string          `json:"tier" validate:"required,oneof=RAW SEMI FINISHED"`
	Code          string          `json:"code" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Unit          string          `json:"unit" validate:"required"`
	CriticalLevel decimal.Decimal `json:"critical_level"`
}

// UpdateItemRequest entrada para actualizar un ítem (sin Quantity ni Reserved:
// se manejan vía movimientos y reservas).
type UpdateItemRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit          *string          `json:"unit"`
	CriticalLevel *decimal.Decimal `json:"critical_level"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID               string          `json:"id"`
	Tier             string          `json:"tier"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available"`
	CriticalLevel    decimal.Decimal `json:"critical_level"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
