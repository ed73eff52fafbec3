package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de alertas de stock crítico sobre PostgreSQL.
// Un índice único parcial sobre (item_id) WHERE closed_at IS NULL garantiza a
// lo sumo una alerta abierta por ítem incluso ante escritores concurrentes.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// GetOpenByItem devuelve la alerta abierta del ítem, o nil si no hay.
func (r *NotificationRepo) GetOpenByItem(itemID string) (*entity.CriticalNotification, error) {
	query := `
		SELECT id, item_id, opened_at, closed_at
		FROM critical_notifications WHERE item_id = $1 AND closed_at IS NULL`
	var n entity.CriticalNotification
	err := r.q.QueryRow(context.Background(), query, itemID).Scan(&n.ID, &n.ItemID, &n.OpenedAt, &n.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open notification: %w", err)
	}
	return &n, nil
}

// Open abre una alerta para el ítem. El índice único parcial convierte una
// apertura duplicada en ErrDuplicate en vez de una segunda alerta.
func (r *NotificationRepo) Open(notification *entity.CriticalNotification) error {
	query := `
		INSERT INTO critical_notifications (id, item_id, opened_at, closed_at)
		VALUES ($1, $2, $3, NULL)`
	_, err := r.q.Exec(context.Background(), query,
		notification.ID, notification.ItemID, notification.OpenedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("open notification: %w", err)
	}
	return nil
}

// Close cierra la alerta abierta.
func (r *NotificationRepo) Close(id string, at time.Time) error {
	query := `UPDATE critical_notifications SET closed_at = $2 WHERE id = $1 AND closed_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("close notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
