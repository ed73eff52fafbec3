package stock

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// TransferUseCase traslada existencia entre dos ítems del catálogo (p. ej.
// reclasificar material entre niveles). El traslado asienta dos movimientos
// TRANSFER con el mismo correlation_id: la salida del origen y la entrada al
// destino, en una sola transacción.
type TransferUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(txRunner ports.TxRunner, publisher ports.EventPublisher) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, publisher: publisher}
}

// TransferInput entrada para un traslado. Quantity siempre positiva.
type TransferInput struct {
	FromItemID  string
	ToItemID    string
	Quantity    decimal.Decimal
	ActorID     string
	Description string
}

// Execute valida y asienta el traslado; devuelve los dos movimientos creados
// (salida, entrada).
func (uc *TransferUseCase) Execute(ctx context.Context, in TransferInput) ([]*entity.MovementEntry, error) {
	if in.FromItemID == "" || in.ToItemID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.FromItemID == in.ToItemID {
		return nil, domain.ErrInvalidInput
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	correlationID := uuid.New().String()
	var created []*entity.MovementEntry
	notifs := map[string]NotifierResult{}

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		// Bloqueo en orden estable de IDs, igual que el motor de consumo.
		ids := []string{in.FromItemID, in.ToItemID}
		sort.Strings(ids)
		items := map[string]*entity.Item{}
		for _, id := range ids {
			item, err := r.Items.GetForUpdate(id)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			items[id] = item
		}
		from, to := items[in.FromItemID], items[in.ToItemID]

		if from.Available().LessThan(in.Quantity) {
			return &domain.InsufficientStockError{Lines: []domain.ShortageLine{{
				ItemID:    from.ID,
				Code:      from.Code,
				Required:  in.Quantity,
				Available: from.Available(),
				Shortage:  in.Quantity.Sub(from.Available()),
			}}}
		}

		post := func(item *entity.Item, delta decimal.Decimal) error {
			before := item.Quantity
			after := before.Add(delta)
			entry := &entity.MovementEntry{
				ID:             uuid.New().String(),
				ItemID:         item.ID,
				ItemTier:       item.Tier,
				Type:           entity.MovementTransfer,
				Quantity:       delta,
				BeforeQuantity: before,
				AfterQuantity:  after,
				Source:         entity.SourceTransfer,
				ActorID:        in.ActorID,
				CorrelationID:  correlationID,
				Description:    in.Description,
				CreatedAt:      now,
			}
			if err := r.Movements.Create(entry); err != nil {
				return err
			}
			if err := r.Items.UpdateQuantity(item.ID, before, after); err != nil {
				return err
			}
			item.Quantity = after
			notif, err := EvaluateCritical(r, item, now)
			if err != nil {
				return err
			}
			notifs[item.ID] = notif
			created = append(created, entry)
			return nil
		}

		if err := post(from, in.Quantity.Neg()); err != nil {
			return err
		}
		return post(to, in.Quantity)
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range created {
		uc.publisher.MovementPosted(entry)
	}
	for itemID, notif := range notifs {
		if notif.Opened {
			uc.publisher.CriticalStockOpened(itemID)
		}
		if notif.Closed {
			uc.publisher.CriticalStockClosed(itemID)
		}
	}
	return created, nil
}
