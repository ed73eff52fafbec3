package ports

import (
	"context"

	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Items         repository.ItemRepository
	Movements     repository.MovementRepository
	BOM           repository.BOMRepository
	Snapshots     repository.BOMSnapshotRepository
	Plans         repository.ProductionPlanRepository
	Logs          repository.ProductionLogRepository
	Reservations  repository.ReservationRepository
	Notifications repository.NotificationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad: Commit si fn devuelve
// nil, Rollback total en caso contrario — nunca commits parciales.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
