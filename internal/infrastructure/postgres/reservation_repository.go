package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de reservas sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, item_id, owner_reference, quantity_reserved, quantity_remaining, created_at, released_at`

// Create persiste una reserva nueva.
func (r *ReservationRepo) Create(res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.ItemID, res.OwnerReference,
		res.QuantityReserved, res.QuantityRemaining, res.CreatedAt, res.ReleasedAt,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// ListActiveByOwner devuelve las reservas vigentes de un plan u orden.
func (r *ReservationRepo) ListActiveByOwner(ownerReference string) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + ` FROM reservations
		WHERE owner_reference = $1 AND released_at IS NULL ORDER BY item_id`
	rows, err := r.q.Query(context.Background(), query, ownerReference)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.ItemID, &res.OwnerReference,
			&res.QuantityReserved, &res.QuantityRemaining, &res.CreatedAt, &res.ReleasedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

// UpdateRemaining escribe el remanente pendiente de la reserva.
func (r *ReservationRepo) UpdateRemaining(id string, remaining decimal.Decimal) error {
	query := `UPDATE reservations SET quantity_remaining = $2 WHERE id = $1 AND released_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, remaining)
	if err != nil {
		return fmt.Errorf("update reservation remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Release marca la reserva liberada. Liberar dos veces es no-op fallido.
func (r *ReservationRepo) Release(id string, at time.Time) error {
	query := `UPDATE reservations SET released_at = $2 WHERE id = $1 AND released_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
