package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Niveles (tiers) de inventario: materia prima, semielaborado y producto terminado.
const (
	TierRaw      = "RAW"      // materia prima
	TierSemi     = "SEMI"     // semielaborado
	TierFinished = "FINISHED" // producto terminado
)

// ValidTier indica si el tier es uno de los tres niveles soportados.
func ValidTier(tier string) bool {
	switch tier {
	case TierRaw, TierSemi, TierFinished:
		return true
	}
	return false
}

// Item representa un artículo con existencias en cualquiera de los tres niveles.
// Quantity y ReservedQuantity solo se mutan a través de asientos del libro de
// movimientos (MovementEntry); nunca con un SET directo.
type Item struct {
	ID               string
	Tier             string // RAW | SEMI | FINISHED
	Code             string // único por tier
	Name             string
	Unit             string // kg, m, und...
	Quantity         decimal.Decimal // existencia actual
	ReservedQuantity decimal.Decimal // comprometido en planes/órdenes abiertas
	CriticalLevel    decimal.Decimal // umbral de alerta de stock crítico
	UnitCost         decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available devuelve la existencia disponible: Quantity - ReservedQuantity.
// Es la cifra que valida el motor de consumo, no la existencia bruta.
func (i *Item) Available() decimal.Decimal {
	return i.Quantity.Sub(i.ReservedQuantity)
}

// BelowCritical indica si la existencia está en o por debajo del umbral crítico.
func (i *Item) BelowCritical() bool {
	return i.Quantity.LessThanOrEqual(i.CriticalLevel)
}
