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

// PostOutputUseCase es el motor de consumo: el operario reporta un delta
// producido y, en UNA transacción, se validan TODAS las líneas del snapshot
// congelado contra la disponibilidad, se asientan las salidas de material y la
// entrada del producto, se actualiza el acumulado del plan, se escribe el
// reporte de producción y se reevalúa el umbral crítico de cada ítem tocado.
// Todo o nada: un fallo en cualquier punto no deja efecto visible alguno.
type PostOutputUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
}

// NewPostOutputUseCase construye el caso de uso.
func NewPostOutputUseCase(txRunner ports.TxRunner, publisher ports.EventPublisher) *PostOutputUseCase {
	return &PostOutputUseCase{txRunner: txRunner, publisher: publisher}
}

// PostOutputResult resultado de una publicación exitosa.
type PostOutputResult struct {
	ProductionLogID string
	CorrelationID   string
	Entries         []*entity.MovementEntry
}

// Execute publica un delta producido (incremental, no acumulado) contra un plan.
func (uc *PostOutputUseCase) Execute(ctx context.Context, planID string, quantityProducedDelta decimal.Decimal, operatorID string) (*PostOutputResult, error) {
	if planID == "" || operatorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !quantityProducedDelta.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	correlationID := uuid.New().String()
	var result *PostOutputResult
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

		lines, err := r.Snapshots.ListByPlan(planID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrConflict
		}
		// Orden estable de bloqueo de filas entre publicaciones concurrentes.
		sort.Slice(lines, func(i, j int) bool { return lines[i].MaterialID < lines[j].MaterialID })

		reservations, err := activeReservationsByItem(r, plan.ID)
		if err != nil {
			return err
		}

		// Paso 1: validar TODAS las líneas antes de tocar nada. La reserva
		// propia del plan se acredita a la disponibilidad: lo comprometido a
		// favor de este plan no puede bloquear su propio consumo.
		type lineState struct {
			line     *entity.BOMSnapshotLine
			item     *entity.Item
			required decimal.Decimal
		}
		states := make([]lineState, 0, len(lines))
		var shortages []domain.ShortageLine
		for _, line := range lines {
			item, err := r.Items.GetForUpdate(line.MaterialID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			required := line.QuantityPerUnit.Mul(quantityProducedDelta)
			available := item.Available()
			if res := reservations[item.ID]; res != nil {
				credit := decimal.Min(res.QuantityRemaining, required)
				available = available.Add(credit)
			}
			if available.LessThan(required) {
				shortages = append(shortages, domain.ShortageLine{
					ItemID:    item.ID,
					Code:      item.Code,
					Required:  required,
					Available: available,
					Shortage:  required.Sub(available),
				})
				continue
			}
			states = append(states, lineState{line: line, item: item, required: required})
		}
		if len(shortages) > 0 {
			return &domain.InsufficientStockError{Lines: shortages}
		}

		// Paso 2: asentar salidas de material y descontar reservas consumidas.
		for _, st := range states {
			before := st.item.Quantity
			after := before.Sub(st.required)
			entry := &entity.MovementEntry{
				ID:             uuid.New().String(),
				ItemID:         st.item.ID,
				ItemTier:       st.item.Tier,
				Type:           entity.MovementOutflow,
				Quantity:       st.required.Neg(),
				BeforeQuantity: before,
				AfterQuantity:  after,
				Source:         entity.SourceProduction,
				ActorID:        operatorID,
				CorrelationID:  correlationID,
				Description:    fmt.Sprintf("consumo plan %s", plan.ID),
				CreatedAt:      now,
			}
			if err := r.Movements.Create(entry); err != nil {
				return err
			}
			if err := r.Items.UpdateQuantity(st.item.ID, before, after); err != nil {
				return err
			}
			if res := reservations[st.item.ID]; res != nil && res.QuantityRemaining.GreaterThan(decimal.Zero) {
				consumed := decimal.Min(res.QuantityRemaining, st.required)
				res.QuantityRemaining = res.QuantityRemaining.Sub(consumed)
				if err := r.Reservations.UpdateRemaining(res.ID, res.QuantityRemaining); err != nil {
					return err
				}
				reserved := st.item.ReservedQuantity.Sub(consumed)
				if reserved.LessThan(decimal.Zero) {
					reserved = decimal.Zero
				}
				st.item.ReservedQuantity = reserved
				if err := r.Items.UpdateReserved(st.item.ID, reserved); err != nil {
					return err
				}
			}
			events.movement(entry)

			st.item.Quantity = after
			notif, err := stock.EvaluateCritical(r, st.item, now)
			if err != nil {
				return err
			}
			events.critical(st.item.ID, notif)
		}

		// Paso 3: entrada del producto del plan.
		product, err := r.Items.GetForUpdate(plan.ItemID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		before := product.Quantity
		after := before.Add(quantityProducedDelta)
		outEntry := &entity.MovementEntry{
			ID:             uuid.New().String(),
			ItemID:         product.ID,
			ItemTier:       product.Tier,
			Type:           entity.MovementProductionIn,
			Quantity:       quantityProducedDelta,
			BeforeQuantity: before,
			AfterQuantity:  after,
			Source:         entity.SourceProduction,
			ActorID:        operatorID,
			CorrelationID:  correlationID,
			Description:    fmt.Sprintf("producción plan %s", plan.ID),
			CreatedAt:      now,
		}
		if err := r.Movements.Create(outEntry); err != nil {
			return err
		}
		if err := r.Items.UpdateQuantity(product.ID, before, after); err != nil {
			return err
		}
		events.movement(outEntry)

		product.Quantity = after
		notif, err := stock.EvaluateCritical(r, product, now)
		if err != nil {
			return err
		}
		events.critical(product.ID, notif)

		// Paso 4: acumulado del plan y reporte de producción.
		if err := r.Plans.UpdateProduced(plan.ID, plan.ProducedQuantity.Add(quantityProducedDelta)); err != nil {
			return err
		}
		if plan.Status == entity.PlanPending {
			if err := r.Plans.UpdateStatus(plan.ID, entity.PlanInProgress); err != nil {
				return err
			}
		}
		log := &entity.ProductionLog{
			ID:               uuid.New().String(),
			PlanID:           plan.ID,
			QuantityProduced: quantityProducedDelta,
			CorrelationID:    correlationID,
			OperatorID:       operatorID,
			CreatedAt:        now,
		}
		if err := r.Logs.Create(log); err != nil {
			return err
		}

		result = &PostOutputResult{
			ProductionLogID: log.ID,
			CorrelationID:   correlationID,
			Entries:         events.entries,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.publish(uc.publisher)
	return result, nil
}

// activeReservationsByItem indexa por ítem las reservas vigentes del plan.
func activeReservationsByItem(r ports.Repos, planID string) (map[string]*entity.Reservation, error) {
	active, err := r.Reservations.ListActiveByOwner(planID)
	if err != nil {
		return nil, err
	}
	byItem := make(map[string]*entity.Reservation, len(active))
	for _, res := range active {
		byItem[res.ItemID] = res
	}
	return byItem, nil
}
