package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con todos
// los repositorios atados a la misma tx: los asientos del libro, las
// existencias, el reporte de producción y la alerta crítica de un mismo evento
// comparten commit o rollback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Nunca hay commits parciales.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ports.Repos{
		Items:         NewItemRepository(tx),
		Movements:     NewMovementRepository(tx),
		BOM:           NewBOMRepository(tx),
		Snapshots:     NewBOMSnapshotRepository(tx),
		Plans:         NewProductionPlanRepository(tx),
		Logs:          NewProductionLogRepository(tx),
		Reservations:  NewReservationRepository(tx),
		Notifications: NewNotificationRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
