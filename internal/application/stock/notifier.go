package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// NotifierResult informa si la evaluación abrió o cerró la alerta del ítem.
// El caller publica los eventos CriticalStockOpened/Closed después del commit.
type NotifierResult struct {
	Opened bool
	Closed bool
}

// EvaluateCritical es función pura de la existencia post-movimiento del ítem
// frente a su umbral crítico, ejecutada DENTRO de la misma transacción que el
// cambio de cantidad (nunca asíncrona): dos publicaciones concurrentes no
// pueden abrir alertas duplicadas.
//
// Si quantity <= critical_level y no hay alerta abierta, abre una; si
// quantity > critical_level y hay una abierta, la cierra. Reentrada con la
// alerta ya abierta es no-op.
func EvaluateCritical(r ports.Repos, item *entity.Item, now time.Time) (NotifierResult, error) {
	open, err := r.Notifications.GetOpenByItem(item.ID)
	if err != nil {
		return NotifierResult{}, err
	}
	if item.BelowCritical() {
		if open != nil {
			return NotifierResult{}, nil
		}
		n := &entity.CriticalNotification{
			ID:       uuid.New().String(),
			ItemID:   item.ID,
			OpenedAt: now,
		}
		if err := r.Notifications.Open(n); err != nil {
			return NotifierResult{}, err
		}
		return NotifierResult{Opened: true}, nil
	}
	if open == nil {
		return NotifierResult{}, nil
	}
	if err := r.Notifications.Close(open.ID, now); err != nil {
		return NotifierResult{}, err
	}
	return NotifierResult{Closed: true}, nil
}
