package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un plan de producción.
const (
	PlanPending    = "PENDING"
	PlanInProgress = "IN_PROGRESS"
	PlanCompleted  = "COMPLETED" // terminal: el trabajo completado es inmutable
	PlanCancelled  = "CANCELLED" // terminal
)

// ProductionPlan es un plan de producción con su snapshot BOM congelado
// (ver BOMSnapshotLine). ProducedQuantity es el acumulado de los reportes
// de producción no anulados.
type ProductionPlan struct {
	ID               string
	ItemID           string // producto a fabricar
	ItemTier         string // SEMI | FINISHED
	Reference        string // orden/pedido origen
	PlannedQuantity  decimal.Decimal
	ProducedQuantity decimal.Decimal
	Status           string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal indica si el plan está en un estado terminal (no admite más asientos).
func (p *ProductionPlan) Terminal() bool {
	return p.Status == PlanCompleted || p.Status == PlanCancelled
}

// ProductionLog es un reporte de producción: el operario declara un delta
// producido (incremental, no acumulado). Se anula (void), nunca se borra;
// CorrelationID enlaza sus asientos en el libro de movimientos.
type ProductionLog struct {
	ID               string
	PlanID           string
	QuantityProduced decimal.Decimal // delta incremental
	CorrelationID    string
	OperatorID       string
	CreatedAt        time.Time
	VoidedAt         *time.Time // nil mientras el reporte siga vivo
	VoidReason       string
}

// Voided indica si el reporte ya fue anulado (la reversa es de un solo uso).
func (l *ProductionLog) Voided() bool {
	return l.VoidedAt != nil
}
