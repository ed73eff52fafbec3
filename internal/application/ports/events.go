package ports

import "github.com/tallerpro/manufactura-api/internal/domain/entity"

// EventPublisher es el puerto de eventos salientes hacia los colaboradores
// (entrega de notificaciones, broadcast en tiempo real — fuera del núcleo).
// Los eventos se publican DESPUÉS del commit de la transacción que los originó.
type EventPublisher interface {
	MovementPosted(entry *entity.MovementEntry)
	CriticalStockOpened(itemID string)
	CriticalStockClosed(itemID string)
}
