package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/inventory"
)

// RegisterMovementUseCase registra movimientos manuales de inventario
// (INFLOW/OUTFLOW) de forma transaccional: bloqueo de fila, asiento en el
// libro, actualización CAS de la existencia y evaluación del umbral crítico,
// todo en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner ports.TxRunner, publisher ports.EventPublisher) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, publisher: publisher}
}

// MovementInput entrada para registrar un movimiento manual.
// Quantity siempre positiva; el signo lo determina Type.
// UnitCost solo aplica en entradas (recalcula el costo promedio ponderado).
type MovementInput struct {
	ItemID      string
	Tier        string
	Type        string // INFLOW | OUTFLOW
	Quantity    decimal.Decimal
	Source      string // MANUAL | PURCHASE
	ActorID     string
	Description string
	UnitCost    *decimal.Decimal
}

// Execute valida la entrada, publica el asiento y devuelve el movimiento creado.
func (uc *RegisterMovementUseCase) Execute(ctx context.Context, in MovementInput) (*entity.MovementEntry, error) {
	switch in.Type {
	case entity.MovementInflow, entity.MovementOutflow:
	default:
		return nil, domain.ErrInvalidInput
	}
	switch in.Source {
	case entity.SourceManual, entity.SourcePurchase:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.ItemID == "" || in.ActorID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Type == entity.MovementInflow && in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var created *entity.MovementEntry
	var notif NotifierResult

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		item, err := r.Items.GetForUpdate(in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if in.Tier != "" && item.Tier != in.Tier {
			return domain.ErrNotFound
		}

		before := item.Quantity
		delta := in.Quantity
		if in.Type == entity.MovementOutflow {
			// Las salidas validan contra la disponibilidad, no la existencia bruta.
			if item.Available().LessThan(in.Quantity) {
				return &domain.InsufficientStockError{Lines: []domain.ShortageLine{{
					ItemID:    item.ID,
					Code:      item.Code,
					Required:  in.Quantity,
					Available: item.Available(),
					Shortage:  in.Quantity.Sub(item.Available()),
				}}}
			}
			delta = in.Quantity.Neg()
		}
		after := before.Add(delta)

		entry := &entity.MovementEntry{
			ID:             uuid.New().String(),
			ItemID:         item.ID,
			ItemTier:       item.Tier,
			Type:           in.Type,
			Quantity:       delta,
			BeforeQuantity: before,
			AfterQuantity:  after,
			Source:         in.Source,
			ActorID:        in.ActorID,
			CorrelationID:  uuid.New().String(),
			Description:    in.Description,
			CreatedAt:      now,
		}
		if err := r.Movements.Create(entry); err != nil {
			return err
		}
		if err := r.Items.UpdateQuantity(item.ID, before, after); err != nil {
			return err
		}
		if in.Type == entity.MovementInflow && in.UnitCost != nil {
			newCost := inventory.AverageCost(before, item.UnitCost, in.Quantity, *in.UnitCost)
			if err := r.Items.UpdateCost(item.ID, newCost); err != nil {
				return err
			}
		}

		item.Quantity = after
		notif, err = EvaluateCritical(r, item, now)
		if err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publisher.MovementPosted(created)
	if notif.Opened {
		uc.publisher.CriticalStockOpened(created.ItemID)
	}
	if notif.Closed {
		uc.publisher.CriticalStockClosed(created.ItemID)
	}
	return created, nil
}
