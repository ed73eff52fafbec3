package stock

import (
	"context"
	"time"

	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// HistoryUseCase lecturas del libro de movimientos. El libro es la fuente de
// verdad: la historia de un ítem se sirve tal cual se asentó, sin agregados.
type HistoryUseCase struct {
	items     repository.ItemRepository
	movements repository.MovementRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(items repository.ItemRepository, movements repository.MovementRepository) *HistoryUseCase {
	return &HistoryUseCase{items: items, movements: movements}
}

// ListByItem devuelve la historia paginada del ítem en orden de creación ascendente.
func (uc *HistoryUseCase) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	item, err := uc.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movements.ListByItemPaged(itemID, from, to, limit, offset)
}

// ListByCorrelation devuelve todos los asientos de un mismo evento lógico
// (consumos de una publicación, sus reversas).
func (uc *HistoryUseCase) ListByCorrelation(ctx context.Context, correlationID string) ([]*entity.MovementEntry, error) {
	if correlationID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movements.ListByCorrelation(correlationID)
}
