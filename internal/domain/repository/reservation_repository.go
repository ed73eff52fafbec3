package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia de reservas de material.
type ReservationRepository interface {
	Create(res *entity.Reservation) error
	// ListActiveByOwner devuelve las reservas vigentes de un plan u orden.
	ListActiveByOwner(ownerReference string) ([]*entity.Reservation, error)
	UpdateRemaining(id string, remaining decimal.Decimal) error
	Release(id string, at time.Time) error
}
