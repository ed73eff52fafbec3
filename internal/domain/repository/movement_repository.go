package repository

import (
	"time"

	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no existen métodos de actualización ni borrado.
type MovementRepository interface {
	Create(entry *entity.MovementEntry) error
	GetByID(id string) (*entity.MovementEntry, error)
	// ListByItem devuelve la historia completa del ítem en orden de creación ascendente.
	ListByItem(itemID string) ([]*entity.MovementEntry, error)
	ListByItemPaged(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)
	// ListByCorrelation devuelve todos los asientos de un mismo evento lógico.
	ListByCorrelation(correlationID string) ([]*entity.MovementEntry, error)
}
