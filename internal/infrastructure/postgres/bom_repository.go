package postgres

import (
	"context"
	"fmt"

	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)
var _ repository.BOMSnapshotRepository = (*BOMSnapshotRepo)(nil)

// BOMRepo implementación del grafo BOM sobre PostgreSQL.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

const bomEdgeColumns = `id, parent_item_id, parent_tier, child_item_id, child_tier, quantity_per_unit, created_at`

// CreateEdge persiste una arista padre -> hijo. (parent, child) es único.
func (r *BOMRepo) CreateEdge(edge *entity.BOMEdge) error {
	query := `
		INSERT INTO bom_edges (` + bomEdgeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		edge.ID, edge.ParentItemID, edge.ParentTier,
		edge.ChildItemID, edge.ChildTier, edge.QuantityPerUnit, edge.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create bom edge: %w", err)
	}
	return nil
}

// DeleteEdge elimina una arista del grafo vivo.
func (r *BOMRepo) DeleteEdge(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM bom_edges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bom edge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByParent lista las aristas salientes de un padre.
func (r *BOMRepo) ListByParent(parentItemID string) ([]*entity.BOMEdge, error) {
	query := `SELECT ` + bomEdgeColumns + ` FROM bom_edges WHERE parent_item_id = $1 ORDER BY created_at`
	return r.listEdges(query, parentItemID)
}

// ListAll devuelve todas las aristas (validación de ciclos al editar).
func (r *BOMRepo) ListAll() ([]*entity.BOMEdge, error) {
	query := `SELECT ` + bomEdgeColumns + ` FROM bom_edges ORDER BY created_at`
	return r.listEdges(query)
}

func (r *BOMRepo) listEdges(query string, args ...any) ([]*entity.BOMEdge, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bom edges: %w", err)
	}
	defer rows.Close()
	var list []*entity.BOMEdge
	for rows.Next() {
		var e entity.BOMEdge
		if err := rows.Scan(&e.ID, &e.ParentItemID, &e.ParentTier, &e.ChildItemID, &e.ChildTier, &e.QuantityPerUnit, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bom edge: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// BOMSnapshotRepo persiste los snapshots congelados de materiales por plan.
type BOMSnapshotRepo struct {
	q Querier
}

// NewBOMSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMSnapshotRepository(q Querier) *BOMSnapshotRepo {
	return &BOMSnapshotRepo{q: q}
}

// CreateLines congela las líneas del snapshot de un plan. Se escriben una vez.
func (r *BOMSnapshotRepo) CreateLines(lines []*entity.BOMSnapshotLine) error {
	query := `
		INSERT INTO bom_snapshot_lines (plan_id, material_id, material_tier, quantity_per_unit, quantity_needed)
		VALUES ($1, $2, $3, $4, $5)`
	for _, line := range lines {
		_, err := r.q.Exec(context.Background(), query,
			line.PlanID, line.MaterialID, line.MaterialTier, line.QuantityPerUnit, line.QuantityNeeded)
		if err != nil {
			return fmt.Errorf("create snapshot line: %w", err)
		}
	}
	return nil
}

// ListByPlan devuelve las líneas del snapshot del plan en orden estable por material.
func (r *BOMSnapshotRepo) ListByPlan(planID string) ([]*entity.BOMSnapshotLine, error) {
	query := `
		SELECT plan_id, material_id, material_tier, quantity_per_unit, quantity_needed
		FROM bom_snapshot_lines WHERE plan_id = $1 ORDER BY material_id`
	rows, err := r.q.Query(context.Background(), query, planID)
	if err != nil {
		return nil, fmt.Errorf("list snapshot lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.BOMSnapshotLine
	for rows.Next() {
		var l entity.BOMSnapshotLine
		if err := rows.Scan(&l.PlanID, &l.MaterialID, &l.MaterialTier, &l.QuantityPerUnit, &l.QuantityNeeded); err != nil {
			return nil, fmt.Errorf("scan snapshot line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
