package production

import (
	"context"
	"time"

	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// CancelPlanUseCase cancela un plan: revierte todos sus reportes vivos, libera
// la reserva pendiente y marca el plan cancelado — en una sola transacción,
// sin cancelaciones parciales. Un plan completado es inmutable: cancelarlo se
// reporta como conflicto, nunca se deshace silenciosamente.
type CancelPlanUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
}

// NewCancelPlanUseCase construye el caso de uso.
func NewCancelPlanUseCase(txRunner ports.TxRunner, publisher ports.EventPublisher) *CancelPlanUseCase {
	return &CancelPlanUseCase{txRunner: txRunner, publisher: publisher}
}

// Execute cancela el plan planID. Solo manager/planner.
func (uc *CancelPlanUseCase) Execute(ctx context.Context, planID, actorID, role, reason string) error {
	if planID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	if !domain.CanManagePlans(role) {
		return domain.ErrForbidden
	}
	now := time.Now()
	var events txEvents

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		plan, err := r.Plans.GetForUpdate(planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrNotFound
		}
		if plan.Status == entity.PlanCompleted {
			return domain.ErrPlanCompleted
		}
		if plan.Status == entity.PlanCancelled {
			return domain.ErrConflict
		}
		logs, err := r.Logs.ListLiveByPlan(planID)
		if err != nil {
			return err
		}
		for _, log := range logs {
			if err := reverseLiveLog(r, plan, log, actorID, reason, now, &events); err != nil {
				return err
			}
		}
		if err := stock.ReleaseOwnerReservations(r, planID, now); err != nil {
			return err
		}
		return r.Plans.UpdateStatus(planID, entity.PlanCancelled)
	})
	if err != nil {
		return err
	}

	events.publish(uc.publisher)
	return nil
}

// CompletePlanUseCase sella un plan: libera el remanente de la reserva y lo
// marca completado. A partir de ahí no admite más publicaciones ni cancelación.
type CompletePlanUseCase struct {
	txRunner ports.TxRunner
}

// NewCompletePlanUseCase construye el caso de uso.
func NewCompletePlanUseCase(txRunner ports.TxRunner) *CompletePlanUseCase {
	return &CompletePlanUseCase{txRunner: txRunner}
}

// Execute completa el plan planID. Solo manager/planner.
func (uc *CompletePlanUseCase) Execute(ctx context.Context, planID, actorID, role string) error {
	if planID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	if !domain.CanManagePlans(role) {
		return domain.ErrForbidden
	}
	now := time.Now()
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		plan, err := r.Plans.GetForUpdate(planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrNotFound
		}
		if plan.Terminal() {
			return domain.ErrConflict
		}
		if err := stock.ReleaseOwnerReservations(r, planID, now); err != nil {
			return err
		}
		return r.Plans.UpdateStatus(planID, entity.PlanCompleted)
	})
}
