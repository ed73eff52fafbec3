package repository

import (
	"time"

	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia de alertas de stock crítico.
// La tabla modela estado: a lo sumo una alerta abierta por ítem (índice único parcial).
type NotificationRepository interface {
	// GetOpenByItem devuelve la alerta abierta del ítem, o nil si no hay.
	GetOpenByItem(itemID string) (*entity.CriticalNotification, error)
	Open(notification *entity.CriticalNotification) error
	Close(id string, at time.Time) error
}
