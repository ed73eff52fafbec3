package events

import (
	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/pkg/logger"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher publica los eventos salientes como log estructurado. El
// transporte real (websockets, colas) es responsabilidad de colaboradores
// externos; este adaptador deja la traza para que lo consuman.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// MovementPosted publica un asiento recién commiteado.
func (p *LogPublisher) MovementPosted(entry *entity.MovementEntry) {
	p.log.Info().
		Str("event", "MovementPosted").
		Str("movement_id", entry.ID).
		Str("item_id", entry.ItemID).
		Str("type", entry.Type).
		Str("quantity", entry.Quantity.String()).
		Str("correlation_id", entry.CorrelationID).
		Msg("movimiento publicado")
}

// CriticalStockOpened publica la apertura de una alerta de stock crítico.
func (p *LogPublisher) CriticalStockOpened(itemID string) {
	p.log.Warn().
		Str("event", "CriticalStockOpened").
		Str("item_id", itemID).
		Msg("alerta de stock crítico abierta")
}

// CriticalStockClosed publica el cierre de una alerta de stock crítico.
func (p *LogPublisher) CriticalStockClosed(itemID string) {
	p.log.Info().
		Str("event", "CriticalStockClosed").
		Str("item_id", itemID).
		Msg("alerta de stock crítico cerrada")
}
