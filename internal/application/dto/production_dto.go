package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePlanRequest entrada para crear un plan de producción.
type CreatePlanRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	Tier      string          `json:"tier" validate:"required,oneof=SEMI FINISHED"`
	Reference string          `json:"reference"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// PlanResponse salida de un plan de producción.
type PlanResponse struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id"`
	ItemTier         string          `json:"item_tier"`
	Reference        string          `json:"reference"`
	PlannedQuantity  decimal.Decimal `json:"planned_quantity"`
	ProducedQuantity decimal.Decimal `json:"produced_quantity"`
	Status           string          `json:"status"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PostOutputRequest entrada para reportar producción (delta incremental).
type PostOutputRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// PostOutputResponse salida de una publicación de producción.
type PostOutputResponse struct {
	ProductionLogID string             `json:"production_log_id"`
	CorrelationID   string             `json:"correlation_id"`
	Movements       []MovementResponse `json:"movements"`
}

// RollbackRequest entrada para revertir un reporte o cancelar un plan.
type RollbackRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// BOMEdgeRequest entrada para registrar una arista del BOM.
type BOMEdgeRequest struct {
	ParentItemID    string          `json:"parent_item_id" validate:"required"`
	ChildItemID     string          `json:"child_item_id" validate:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// BOMLineResponse línea de una resolución/snapshot BOM.
type BOMLineResponse struct {
	MaterialID      string          `json:"material_id"`
	MaterialTier    string          `json:"material_tier"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	QuantityNeeded  decimal.Decimal `json:"quantity_needed"`
}
