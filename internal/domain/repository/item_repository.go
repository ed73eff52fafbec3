package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para ítems de inventario.
// Las existencias solo se actualizan con UpdateQuantity/UpdateReserved dentro
// de transacciones que también escriben el asiento correspondiente.
type ItemRepository interface {
	Create(item *entity.Item) error
	// Update escribe solo los campos descriptivos (nombre, unidad, umbral).
	Update(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetByCode(tier, code string) (*entity.Item, error)
	List(tier string, limit, offset int) ([]*entity.Item, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Item, error)
	// UpdateQuantity aplica un CAS optimista: solo escribe si la existencia
	// actual sigue siendo before. Si no, devuelve ConcurrencyConflictError.
	UpdateQuantity(id string, before, after decimal.Decimal) error
	UpdateReserved(id string, reserved decimal.Decimal) error
	UpdateCost(id string, cost decimal.Decimal) error
}
