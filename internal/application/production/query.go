package production

import (
	"context"

	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// PlanQueryUseCase lecturas de planes: el plan, su snapshot congelado y sus
// reportes vivos.
type PlanQueryUseCase struct {
	plans     repository.ProductionPlanRepository
	snapshots repository.BOMSnapshotRepository
	logs      repository.ProductionLogRepository
}

// NewPlanQueryUseCase construye el caso de uso.
func NewPlanQueryUseCase(plans repository.ProductionPlanRepository, snapshots repository.BOMSnapshotRepository, logs repository.ProductionLogRepository) *PlanQueryUseCase {
	return &PlanQueryUseCase{plans: plans, snapshots: snapshots, logs: logs}
}

// PlanDetail plan con su snapshot y reportes vivos.
type PlanDetail struct {
	Plan     *entity.ProductionPlan
	Snapshot []*entity.BOMSnapshotLine
	Logs     []*entity.ProductionLog
}

// Get devuelve el detalle completo de un plan.
func (uc *PlanQueryUseCase) Get(ctx context.Context, planID string) (*PlanDetail, error) {
	plan, err := uc.plans.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	snapshot, err := uc.snapshots.ListByPlan(planID)
	if err != nil {
		return nil, err
	}
	logs, err := uc.logs.ListLiveByPlan(planID)
	if err != nil {
		return nil, err
	}
	return &PlanDetail{Plan: plan, Snapshot: snapshot, Logs: logs}, nil
}

// List lista planes por estado (vacío = todos), más recientes primero.
func (uc *PlanQueryUseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.ProductionPlan, error) {
	switch status {
	case "", entity.PlanPending, entity.PlanInProgress, entity.PlanCompleted, entity.PlanCancelled:
	default:
		return nil, domain.ErrInvalidInput
	}
	return uc.plans.List(status, limit, offset)
}
