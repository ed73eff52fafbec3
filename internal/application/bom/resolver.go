package bom

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// maxDepth acota la recursión de expansión. Los ciclos se rechazan al editar
// aristas, pero la expansión también se defiende con una cota de profundidad.
const maxDepth = 32

// ResolverUseCase expande el grafo BOM de forma recursiva a una lista plana de
// requerimientos de nivel hoja (RAW/SEMI), escalada por la cantidad objetivo,
// con aritmética decimal de precisión completa (sin redondeos intermedios).
type ResolverUseCase struct {
	bomRepo  repository.BOMRepository
	itemRepo repository.ItemRepository
}

// NewResolverUseCase construye el caso de uso.
func NewResolverUseCase(bomRepo repository.BOMRepository, itemRepo repository.ItemRepository) *ResolverUseCase {
	return &ResolverUseCase{bomRepo: bomRepo, itemRepo: itemRepo}
}

// Resolve expande el BOM de un producto para una cantidad objetivo.
// Un hijo SEMI con aristas propias se expande a sus insumos; un SEMI sin BOM
// propio (comprado/almacenado) es hoja y se consume directamente. RAW siempre es hoja.
// Las líneas devueltas no tienen PlanID: el caller las congela al crear el plan.
func (uc *ResolverUseCase) Resolve(ctx context.Context, productID, tier string, targetQuantity decimal.Decimal) ([]*entity.BOMSnapshotLine, error) {
	if !targetQuantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if tier != entity.TierSemi && tier != entity.TierFinished {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.itemRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Tier != tier {
		return nil, domain.ErrNotFound
	}

	// Acumula cantidad-por-unidad del producto raíz por material hoja.
	perUnit := make(map[string]decimal.Decimal)
	tiers := make(map[string]string)
	if err := uc.expand(productID, decimal.NewFromInt(1), 0, perUnit, tiers); err != nil {
		return nil, err
	}
	if len(perUnit) == 0 {
		// Producto sin BOM registrado: no se puede planificar su producción.
		return nil, domain.ErrNotFound
	}

	ids := make([]string, 0, len(perUnit))
	for id := range perUnit {
		ids = append(ids, id)
	}
	sort.Strings(ids) // salida determinista

	lines := make([]*entity.BOMSnapshotLine, 0, len(ids))
	for _, id := range ids {
		q := perUnit[id]
		lines = append(lines, &entity.BOMSnapshotLine{
			MaterialID:      id,
			MaterialTier:    tiers[id],
			QuantityPerUnit: q,
			QuantityNeeded:  q.Mul(targetQuantity),
		})
	}
	return lines, nil
}

// expand baja recursivamente por las aristas multiplicando el factor acumulado.
func (uc *ResolverUseCase) expand(parentID string, factor decimal.Decimal, depth int, perUnit map[string]decimal.Decimal, tiers map[string]string) error {
	if depth > maxDepth {
		return domain.ErrBOMCycle
	}
	edges, err := uc.bomRepo.ListByParent(parentID)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		childFactor := factor.Mul(edge.QuantityPerUnit)
		if edge.ChildTier == entity.TierSemi {
			childEdges, err := uc.bomRepo.ListByParent(edge.ChildItemID)
			if err != nil {
				return err
			}
			if len(childEdges) > 0 {
				if err := uc.expand(edge.ChildItemID, childFactor, depth+1, perUnit, tiers); err != nil {
					return err
				}
				continue
			}
		}
		perUnit[edge.ChildItemID] = perUnit[edge.ChildItemID].Add(childFactor)
		tiers[edge.ChildItemID] = edge.ChildTier
	}
	return nil
}
