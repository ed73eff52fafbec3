package repository

import "github.com/tallerpro/manufactura-api/internal/domain/entity"

// BOMRepository define el puerto de persistencia del grafo de lista de materiales.
type BOMRepository interface {
	CreateEdge(edge *entity.BOMEdge) error
	DeleteEdge(id string) error
	ListByParent(parentItemID string) ([]*entity.BOMEdge, error)
	// ListAll devuelve todas las aristas; lo usa la validación de ciclos al editar.
	ListAll() ([]*entity.BOMEdge, error)
}

// BOMSnapshotRepository persiste los snapshots congelados de materiales por plan.
// Las líneas se escriben una sola vez al crear el plan.
type BOMSnapshotRepository interface {
	CreateLines(lines []*entity.BOMSnapshotLine) error
	ListByPlan(planID string) ([]*entity.BOMSnapshotLine, error)
}
