package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/application/dto"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para ítems. Quantity y Reserved se manejan
// exclusivamente vía movimientos y reservas, nunca desde aquí.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create da de alta un ítem. La existencia inicia en 0.
func (uc *ItemUseCase) Create(in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if !entity.ValidTier(in.Tier) || in.Code == "" || in.Name == "" || in.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.CriticalLevel.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCode(in.Tier, in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	item := &entity.Item{
		ID:               uuid.New().String(),
		Tier:             in.Tier,
		Code:             in.Code,
		Name:             in.Name,
		Unit:             in.Unit,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		CriticalLevel:    in.CriticalLevel,
		UnitCost:         decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return toItemResponse(item), nil
}

// List lista ítems, opcionalmente filtrados por tier.
func (uc *ItemUseCase) List(tier string, limit, offset int) ([]*dto.ItemResponse, error) {
	if tier != "" && !entity.ValidTier(tier) {
		return nil, domain.ErrInvalidInput
	}
	items, err := uc.repo.List(tier, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out, nil
}

// Update actualiza los campos descriptivos de un ítem.
func (uc *ItemUseCase) Update(id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.CriticalLevel != nil {
		if in.CriticalLevel.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item.CriticalLevel = *in.CriticalLevel
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

func toItemResponse(item *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:               item.ID,
		Tier:             item.Tier,
		Code:             item.Code,
		Name:             item.Name,
		Unit:             item.Unit,
		Quantity:         item.Quantity,
		ReservedQuantity: item.ReservedQuantity,
		Available:        item.Available(),
		CriticalLevel:    item.CriticalLevel,
		UnitCost:         item.UnitCost,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}
