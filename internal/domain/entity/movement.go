package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementInflow        = "INFLOW"         // entrada (compra, ajuste positivo, reversa de salida)
	MovementOutflow       = "OUTFLOW"        // salida (consumo, ajuste negativo)
	MovementProductionIn  = "PRODUCTION_IN"  // entrada por producción (producto del plan)
	MovementProductionOut = "PRODUCTION_OUT" // reversa de una entrada por producción
	MovementTransfer      = "TRANSFER"       // traslado entre niveles
)

// Orígenes de un movimiento.
const (
	SourceManual     = "MANUAL"
	SourcePurchase   = "PURCHASE"
	SourceProduction = "PRODUCTION"
	SourceTransfer   = "TRANSFER"
	SourceSystem     = "SYSTEM" // reversas y correcciones del auditor
)

// MovementEntry es un asiento inmutable del libro de movimientos (append-only).
// Toda mutación de Item.Quantity pasa por un asiento; las correcciones son
// asientos de reversa nuevos que comparten el CorrelationID original, nunca
// ediciones de la historia.
//
// Invariante de cadena: AfterQuantity = BeforeQuantity + Quantity (delta con signo).
type MovementEntry struct {
	ID             string
	ItemID         string
	ItemTier       string
	Type           string          // INFLOW | OUTFLOW | PRODUCTION_IN | PRODUCTION_OUT | TRANSFER
	Quantity       decimal.Decimal // delta con signo: negativo para salidas
	BeforeQuantity decimal.Decimal
	AfterQuantity  decimal.Decimal
	Source         string // MANUAL | PURCHASE | PRODUCTION | TRANSFER | SYSTEM
	ActorID        string
	CorrelationID  string // agrupa todos los asientos de un mismo evento lógico
	Description    string
	CreatedAt      time.Time
}

// ReversalType devuelve el tipo de asiento que compensa a uno del tipo dado.
func ReversalType(movementType string) string {
	switch movementType {
	case MovementInflow:
		return MovementOutflow
	case MovementOutflow:
		return MovementInflow
	case MovementProductionIn:
		return MovementProductionOut
	case MovementProductionOut:
		return MovementProductionIn
	}
	return movementType
}
