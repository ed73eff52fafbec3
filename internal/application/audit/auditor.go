package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/inventory"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// AuditUseCase es el auditor de consistencia (proceso offline/batch): reproduce
// la historia ordenada de movimientos de cada ítem, la compara contra la
// existencia almacenada y reporta la deriva. El modo reparación publica
// exactamente UN asiento correctivo (source=SYSTEM) que alinea la existencia
// con la verdad reproducida — nunca sobreescribe el campo sin asentar antes
// el porqué en el libro.
type AuditUseCase struct {
	txRunner  ports.TxRunner
	items     repository.ItemRepository
	movements repository.MovementRepository
	publisher ports.EventPublisher
}

// NewAuditUseCase construye el auditor. items y movements van atados al pool
// (solo lectura); las reparaciones corren cada una en su propia transacción.
func NewAuditUseCase(txRunner ports.TxRunner, items repository.ItemRepository, movements repository.MovementRepository, publisher ports.EventPublisher) *AuditUseCase {
	return &AuditUseCase{txRunner: txRunner, items: items, movements: movements, publisher: publisher}
}

// ItemReport resultado de auditar un ítem.
type ItemReport struct {
	ItemID          string
	Code            string
	Stored          decimal.Decimal
	Replayed        decimal.Decimal
	Drift           decimal.Decimal // Stored - Replayed
	ChainViolations []inventory.ChainViolation
	Drifted         bool
	Repaired        bool
}

// AuditItem reproduce la historia del ítem y reporta la deriva sin tocar nada.
// Si hay deriva más allá del epsilon devuelve además un ConsistencyDriftError
// envuelto en el reporte para el caller que quiera tratarlo como error.
func (uc *AuditUseCase) AuditItem(ctx context.Context, itemID string) (*ItemReport, error) {
	item, err := uc.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.movements.ListByItem(itemID)
	if err != nil {
		return nil, err
	}
	return buildReport(item, entries), nil
}

// RepairItem audita y, si hay deriva, publica el asiento correctivo dentro de
// una transacción con la fila del ítem bloqueada (la deriva se recalcula bajo
// el lock para no corregir con datos viejos).
func (uc *AuditUseCase) RepairItem(ctx context.Context, itemID, reason string) (*ItemReport, error) {
	var report *ItemReport
	var entry *entity.MovementEntry
	var notif stock.NotifierResult

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		item, err := r.Items.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		entries, err := r.Movements.ListByItem(itemID)
		if err != nil {
			return err
		}
		report = buildReport(item, entries)
		if !report.Drifted {
			return nil
		}

		now := time.Now()
		delta := report.Replayed.Sub(report.Stored)
		movType := entity.MovementInflow
		if delta.LessThan(decimal.Zero) {
			movType = entity.MovementOutflow
		}
		desc := fmt.Sprintf("conciliación del auditor: deriva=%s; %s", report.Drift.String(), reason)
		entry = &entity.MovementEntry{
			ID:             uuid.New().String(),
			ItemID:         item.ID,
			ItemTier:       item.Tier,
			Type:           movType,
			Quantity:       delta,
			BeforeQuantity: report.Stored,
			AfterQuantity:  report.Replayed,
			Source:         entity.SourceSystem,
			ActorID:        "auditor",
			CorrelationID:  uuid.New().String(),
			Description:    desc,
			CreatedAt:      now,
		}
		if err := r.Movements.Create(entry); err != nil {
			return err
		}
		if err := r.Items.UpdateQuantity(item.ID, report.Stored, report.Replayed); err != nil {
			return err
		}
		item.Quantity = report.Replayed
		notif, err = stock.EvaluateCritical(r, item, now)
		if err != nil {
			return err
		}
		report.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		uc.publisher.MovementPosted(entry)
		if notif.Opened {
			uc.publisher.CriticalStockOpened(entry.ItemID)
		}
		if notif.Closed {
			uc.publisher.CriticalStockClosed(entry.ItemID)
		}
	}
	return report, nil
}

// Sweep audita (y opcionalmente repara) todos los ítems del tier dado (vacío =
// todos). Cancelable cooperativamente entre ítems; ninguna transacción abarca
// la reparación de más de un ítem. Con continueOnError, un ítem que falla no
// detiene el barrido: los errores se acumulan y se devuelven juntos al final.
func (uc *AuditUseCase) Sweep(ctx context.Context, tier string, repair, continueOnError bool) ([]*ItemReport, error) {
	const pageSize = 100
	var reports []*ItemReport
	var failures []error
	for offset := 0; ; offset += pageSize {
		items, err := uc.items.List(tier, pageSize, offset)
		if err != nil {
			return reports, errors.Join(append(failures, err)...)
		}
		if len(items) == 0 {
			return reports, errors.Join(failures...)
		}
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return reports, errors.Join(append(failures, err)...)
			}
			var report *ItemReport
			if repair {
				report, err = uc.RepairItem(ctx, item.ID, "barrido de auditoría")
			} else {
				report, err = uc.AuditItem(ctx, item.ID)
			}
			if err != nil {
				err = fmt.Errorf("auditar %s: %w", item.Code, err)
				if !continueOnError {
					return reports, err
				}
				failures = append(failures, err)
				continue
			}
			reports = append(reports, report)
		}
	}
}

// DriftError materializa el reporte como ConsistencyDriftError, o nil si no hay deriva.
func (rep *ItemReport) DriftError() error {
	if !rep.Drifted {
		return nil
	}
	return &domain.ConsistencyDriftError{
		ItemID:   rep.ItemID,
		Code:     rep.Code,
		Stored:   rep.Stored,
		Replayed: rep.Replayed,
		Drift:    rep.Drift,
	}
}

func buildReport(item *entity.Item, entries []*entity.MovementEntry) *ItemReport {
	replayed, violations := inventory.Replay(entries)
	report := &ItemReport{
		ItemID:          item.ID,
		Code:            item.Code,
		Stored:          item.Quantity,
		Replayed:        replayed,
		Drift:           item.Quantity.Sub(replayed),
		ChainViolations: violations,
	}
	report.Drifted = !inventory.WithinEpsilon(item.Quantity, replayed)
	return report
}
