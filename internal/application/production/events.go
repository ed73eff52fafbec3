package production

import (
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// txEvents acumula los eventos generados dentro de una transacción para
// publicarlos únicamente después del commit: una transacción abortada no debe
// dejar eventos visibles.
type txEvents struct {
	entries []*entity.MovementEntry
	opened  []string
	closed  []string
}

func (e *txEvents) movement(entry *entity.MovementEntry) {
	e.entries = append(e.entries, entry)
}

func (e *txEvents) critical(itemID string, res stock.NotifierResult) {
	if res.Opened {
		e.opened = append(e.opened, itemID)
	}
	if res.Closed {
		e.closed = append(e.closed, itemID)
	}
}

func (e *txEvents) publish(p ports.EventPublisher) {
	for _, entry := range e.entries {
		p.MovementPosted(entry)
	}
	for _, id := range e.opened {
		p.CriticalStockOpened(id)
	}
	for _, id := range e.closed {
		p.CriticalStockClosed(id)
	}
}
