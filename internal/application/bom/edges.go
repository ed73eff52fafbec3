package bom

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// EdgeUseCase administra las aristas del grafo BOM. La inserción valida tiers,
// duplicados y ciclos: el grafo debe mantenerse acíclico en todo momento.
type EdgeUseCase struct {
	bomRepo  repository.BOMRepository
	itemRepo repository.ItemRepository
}

// NewEdgeUseCase construye el caso de uso.
func NewEdgeUseCase(bomRepo repository.BOMRepository, itemRepo repository.ItemRepository) *EdgeUseCase {
	return &EdgeUseCase{bomRepo: bomRepo, itemRepo: itemRepo}
}

// EdgeInput entrada para registrar una arista padre -> hijo.
type EdgeInput struct {
	ParentItemID    string
	ChildItemID     string
	QuantityPerUnit decimal.Decimal
}

// CreateEdge registra una arista del BOM. Rechaza tiers inválidos, aristas
// duplicadas y cualquier inserción que introduzca un ciclo (ErrBOMCycle).
func (uc *EdgeUseCase) CreateEdge(ctx context.Context, in EdgeInput) (*entity.BOMEdge, error) {
	if in.ParentItemID == "" || in.ChildItemID == "" || in.ParentItemID == in.ChildItemID {
		return nil, domain.ErrInvalidInput
	}
	if !in.QuantityPerUnit.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	parent, err := uc.itemRepo.GetByID(in.ParentItemID)
	if err != nil {
		return nil, err
	}
	child, err := uc.itemRepo.GetByID(in.ChildItemID)
	if err != nil {
		return nil, err
	}
	if parent == nil || child == nil {
		return nil, domain.ErrNotFound
	}
	if parent.Tier != entity.TierSemi && parent.Tier != entity.TierFinished {
		return nil, domain.ErrInvalidInput
	}
	if child.Tier != entity.TierRaw && child.Tier != entity.TierSemi {
		return nil, domain.ErrInvalidInput
	}

	edges, err := uc.bomRepo.ListAll()
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if e.ParentItemID == in.ParentItemID && e.ChildItemID == in.ChildItemID {
			return nil, domain.ErrDuplicate
		}
	}
	if introducesCycle(edges, in.ParentItemID, in.ChildItemID) {
		return nil, domain.ErrBOMCycle
	}

	edge := &entity.BOMEdge{
		ID:              uuid.New().String(),
		ParentItemID:    in.ParentItemID,
		ParentTier:      parent.Tier,
		ChildItemID:     in.ChildItemID,
		ChildTier:       child.Tier,
		QuantityPerUnit: in.QuantityPerUnit,
		CreatedAt:       time.Now(),
	}
	if err := uc.bomRepo.CreateEdge(edge); err != nil {
		return nil, err
	}
	return edge, nil
}

// DeleteEdge elimina una arista del grafo vivo. No afecta snapshots congelados.
func (uc *EdgeUseCase) DeleteEdge(ctx context.Context, id string) error {
	return uc.bomRepo.DeleteEdge(id)
}

// introducesCycle hace DFS desde el hijo de la arista nueva: si alcanza al
// padre, la arista cerraría un ciclo.
func introducesCycle(edges []*entity.BOMEdge, parentID, childID string) bool {
	children := make(map[string][]string, len(edges))
	for _, e := range edges {
		children[e.ParentItemID] = append(children[e.ParentItemID], e.ChildItemID)
	}
	stack := []string{childID}
	seen := map[string]bool{childID: true}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == parentID {
			return true
		}
		for _, next := range children[node] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
