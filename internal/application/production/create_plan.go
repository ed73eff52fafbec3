package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/bom"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// CreatePlanUseCase crea un plan de producción: resuelve el BOM vivo UNA vez,
// congela el snapshot de materiales y reserva los requerimientos. Ediciones
// posteriores del grafo no afectan al plan: su requerimiento, una vez
// verificado, no puede cambiar silenciosamente debajo de él.
type CreatePlanUseCase struct {
	txRunner ports.TxRunner
	resolver *bom.ResolverUseCase
}

// NewCreatePlanUseCase construye el caso de uso.
func NewCreatePlanUseCase(txRunner ports.TxRunner, resolver *bom.ResolverUseCase) *CreatePlanUseCase {
	return &CreatePlanUseCase{txRunner: txRunner, resolver: resolver}
}

// CreatePlanInput entrada para crear un plan de producción.
type CreatePlanInput struct {
	ItemID    string
	Tier      string // SEMI | FINISHED
	Reference string
	Quantity  decimal.Decimal
	ActorID   string
}

// Execute crea el plan con su snapshot congelado y las reservas de material.
// La reserva no exige disponibilidad: reserved_quantity puede superar
// transitoriamente a quantity hasta que lleguen las compras pendientes.
func (uc *CreatePlanUseCase) Execute(ctx context.Context, in CreatePlanInput) (*entity.ProductionPlan, error) {
	if in.ItemID == "" || in.ActorID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	lines, err := uc.resolver.Resolve(ctx, in.ItemID, in.Tier, in.Quantity)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	plan := &entity.ProductionPlan{
		ID:               uuid.New().String(),
		ItemID:           in.ItemID,
		ItemTier:         in.Tier,
		Reference:        in.Reference,
		PlannedQuantity:  in.Quantity,
		ProducedQuantity: decimal.Zero,
		Status:           entity.PlanPending,
		CreatedBy:        in.ActorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := r.Plans.Create(plan); err != nil {
			return err
		}
		for _, line := range lines {
			line.PlanID = plan.ID
		}
		if err := r.Snapshots.CreateLines(lines); err != nil {
			return err
		}
		// Reservar cada material del snapshot a favor del plan.
		for _, line := range lines {
			item, err := r.Items.GetForUpdate(line.MaterialID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			res := &entity.Reservation{
				ID:                uuid.New().String(),
				ItemID:            line.MaterialID,
				OwnerReference:    plan.ID,
				QuantityReserved:  line.QuantityNeeded,
				QuantityRemaining: line.QuantityNeeded,
				CreatedAt:         now,
			}
			if err := r.Reservations.Create(res); err != nil {
				return err
			}
			if err := r.Items.UpdateReserved(item.ID, item.ReservedQuantity.Add(line.QuantityNeeded)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
