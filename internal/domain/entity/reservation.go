package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation es cantidad comprometida de un ítem a favor de un plan u orden:
// se suma a Item.ReservedQuantity sin restar de la existencia. Se libera al
// consumirse en producción, al completar el plan o al cancelarlo.
type Reservation struct {
	ID                string
	ItemID            string
	OwnerReference    string          // id del plan u orden dueño de la reserva
	QuantityReserved  decimal.Decimal // cantidad original comprometida
	QuantityRemaining decimal.Decimal // pendiente de consumir/liberar
	CreatedAt         time.Time
	ReleasedAt        *time.Time // nil mientras la reserva siga activa
}

// Active indica si la reserva sigue vigente.
func (r *Reservation) Active() bool {
	return r.ReleasedAt == nil
}
