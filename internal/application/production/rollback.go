package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// RollbackUseCase revierte un reporte de producción publicando asientos de
// compensación: nunca edita la historia. La reversa es de un solo uso por
// reporte; un reporte anulado no puede revertirse otra vez.
//
// Autorización: manager/planner sin restricciones; un operario solo puede
// revertir reportes propios, dentro de la ventana de 5 minutos y si el plan
// no está completado.
type RollbackUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
}

// NewRollbackUseCase construye el caso de uso.
func NewRollbackUseCase(txRunner ports.TxRunner, publisher ports.EventPublisher) *RollbackUseCase {
	return &RollbackUseCase{txRunner: txRunner, publisher: publisher}
}

// Execute revierte el reporte logID en nombre de actorID con el rol dado.
func (uc *RollbackUseCase) Execute(ctx context.Context, logID, actorID, role, reason string) error {
	if logID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now()
	var events txEvents

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		log, err := r.Logs.GetByID(logID)
		if err != nil {
			return err
		}
		if log == nil {
			return domain.ErrNotFound
		}
		if log.Voided() {
			return domain.ErrLogVoided
		}
		plan, err := r.Plans.GetForUpdate(log.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrNotFound
		}
		if !domain.CanManagePlans(role) {
			if role != domain.RoleOperator || log.OperatorID != actorID {
				return domain.ErrForbidden
			}
			if now.Sub(log.CreatedAt) > domain.OperatorRollbackWindow {
				return domain.ErrForbidden
			}
			if plan.Status == entity.PlanCompleted {
				return domain.ErrForbidden
			}
		}
		return reverseLiveLog(r, plan, log, actorID, reason, now, &events)
	})
	if err != nil {
		return err
	}

	events.publish(uc.publisher)
	return nil
}

// reverseLiveLog publica los asientos de compensación de un reporte vivo,
// restaura reservas consumidas, descuenta el acumulado del plan y anula el
// reporte. Lo comparten la reversa individual y la cancelación de plan.
func reverseLiveLog(r ports.Repos, plan *entity.ProductionPlan, log *entity.ProductionLog, actorID, reason string, now time.Time, events *txEvents) error {
	entries, err := r.Movements.ListByCorrelation(log.CorrelationID)
	if err != nil {
		return err
	}
	reservations, err := activeReservationsByItem(r, plan.ID)
	if err != nil {
		return err
	}
	// Orden estable de bloqueo, igual que en la publicación.
	sort.Slice(entries, func(i, j int) bool { return entries[i].ItemID < entries[j].ItemID })

	for _, entry := range entries {
		item, err := r.Items.GetForUpdate(entry.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		before := item.Quantity
		delta := entry.Quantity.Neg()
		after := before.Add(delta)
		// La compensación de una entrada de producción retira producto: si el
		// producto ya se consumió aguas abajo, la reversa no puede dejar la
		// existencia bajo cero.
		if after.LessThan(decimal.Zero) {
			return &domain.InsufficientStockError{Lines: []domain.ShortageLine{{
				ItemID:    item.ID,
				Code:      item.Code,
				Required:  delta.Neg(),
				Available: before,
				Shortage:  after.Neg(),
			}}}
		}
		comp := &entity.MovementEntry{
			ID:             uuid.New().String(),
			ItemID:         entry.ItemID,
			ItemTier:       entry.ItemTier,
			Type:           entity.ReversalType(entry.Type),
			Quantity:       delta,
			BeforeQuantity: before,
			AfterQuantity:  after,
			Source:         entity.SourceSystem,
			ActorID:        actorID,
			CorrelationID:  log.CorrelationID,
			Description:    fmt.Sprintf("reversa reporte %s: %s", log.ID, reason),
			CreatedAt:      now,
		}
		if err := r.Movements.Create(comp); err != nil {
			return err
		}
		if err := r.Items.UpdateQuantity(item.ID, before, after); err != nil {
			return err
		}
		events.movement(comp)

		// El material devuelto vuelve a quedar comprometido a favor del plan.
		if entry.Type == entity.MovementOutflow {
			if res := reservations[item.ID]; res != nil {
				returned := delta
				res.QuantityRemaining = res.QuantityRemaining.Add(returned)
				if err := r.Reservations.UpdateRemaining(res.ID, res.QuantityRemaining); err != nil {
					return err
				}
				item.ReservedQuantity = item.ReservedQuantity.Add(returned)
				if err := r.Items.UpdateReserved(item.ID, item.ReservedQuantity); err != nil {
					return err
				}
			}
		}

		item.Quantity = after
		notif, err := stock.EvaluateCritical(r, item, now)
		if err != nil {
			return err
		}
		events.critical(item.ID, notif)
	}

	produced := plan.ProducedQuantity.Sub(log.QuantityProduced)
	if produced.LessThan(decimal.Zero) {
		produced = decimal.Zero
	}
	plan.ProducedQuantity = produced
	if err := r.Plans.UpdateProduced(plan.ID, produced); err != nil {
		return err
	}
	return r.Logs.Void(log.ID, reason, now)
}
