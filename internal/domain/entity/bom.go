package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMEdge es una arista del grafo de lista de materiales (BOM):
// "el padre consume QuantityPerUnit unidades del hijo por unidad producida".
// El padre puede ser SEMI o FINISHED; el hijo solo RAW o SEMI.
// El grafo debe ser acíclico; la inserción de ciclos se rechaza al editar.
type BOMEdge struct {
	ID              string
	ParentItemID    string
	ParentTier      string // SEMI | FINISHED
	ChildItemID     string
	ChildTier       string // RAW | SEMI
	QuantityPerUnit decimal.Decimal
	CreatedAt       time.Time
}

// BOMSnapshotLine es una línea del snapshot congelado de materiales de un plan.
// Se escribe una sola vez al crear el plan; ediciones posteriores del grafo BOM
// no afectan retroactivamente a planes en curso.
type BOMSnapshotLine struct {
	PlanID          string
	MaterialID      string
	MaterialTier    string          // RAW | SEMI
	QuantityPerUnit decimal.Decimal // por unidad del producto del plan
	QuantityNeeded  decimal.Decimal // QuantityPerUnit * cantidad planificada
}
