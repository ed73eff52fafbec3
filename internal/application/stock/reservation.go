package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// ReservationUseCase compromete cantidad a favor de órdenes/planes pendientes
// sin restarla de la existencia. El motor de consumo valida contra
// quantity - reserved_quantity, no contra la existencia bruta.
type ReservationUseCase struct {
	txRunner ports.TxRunner
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner ports.TxRunner) *ReservationUseCase {
	return &ReservationUseCase{txRunner: txRunner}
}

// Reserve compromete cantidad de un ítem a favor de ownerReference.
func (uc *ReservationUseCase) Reserve(ctx context.Context, itemID, ownerReference string, quantity decimal.Decimal) (*entity.Reservation, error) {
	if itemID == "" || ownerReference == "" || !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var created *entity.Reservation
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		item, err := r.Items.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Available().LessThan(quantity) {
			return &domain.InsufficientStockError{Lines: []domain.ShortageLine{{
				ItemID:    item.ID,
				Code:      item.Code,
				Required:  quantity,
				Available: item.Available(),
				Shortage:  quantity.Sub(item.Available()),
			}}}
		}
		res := &entity.Reservation{
			ID:                uuid.New().String(),
			ItemID:            itemID,
			OwnerReference:    ownerReference,
			QuantityReserved:  quantity,
			QuantityRemaining: quantity,
			CreatedAt:         time.Now(),
		}
		if err := r.Reservations.Create(res); err != nil {
			return err
		}
		if err := r.Items.UpdateReserved(itemID, item.ReservedQuantity.Add(quantity)); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReleaseOwner libera todas las reservas vigentes de un plan u orden
// (cumplimiento o cancelación) devolviendo el remanente a la disponibilidad.
func (uc *ReservationUseCase) ReleaseOwner(ctx context.Context, ownerReference string) error {
	if ownerReference == "" {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		return ReleaseOwnerReservations(r, ownerReference, time.Now())
	})
}

// ReleaseOwnerReservations libera en la transacción actual las reservas vigentes
// de ownerReference. Lo comparten este caso de uso, completar plan y cancelar plan.
func ReleaseOwnerReservations(r ports.Repos, ownerReference string, now time.Time) error {
	active, err := r.Reservations.ListActiveByOwner(ownerReference)
	if err != nil {
		return err
	}
	for _, res := range active {
		item, err := r.Items.GetForUpdate(res.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if res.QuantityRemaining.GreaterThan(decimal.Zero) {
			reserved := item.ReservedQuantity.Sub(res.QuantityRemaining)
			if reserved.LessThan(decimal.Zero) {
				reserved = decimal.Zero
			}
			if err := r.Items.UpdateReserved(item.ID, reserved); err != nil {
				return err
			}
		}
		if err := r.Reservations.Release(res.ID, now); err != nil {
			return err
		}
	}
	return nil
}
