package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, tier, code, name, unit, quantity, reserved_quantity, critical_level, unit_cost, created_at, updated_at`

// Create persiste un ítem nuevo. (tier, code) es único.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Tier, item.Code, item.Name, item.Unit,
		item.Quantity, item.ReservedQuantity, item.CriticalLevel, item.UnitCost,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// Update escribe solo los campos descriptivos del ítem.
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, unit = $3, critical_level = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, item.ID, item.Name, item.Unit, item.CriticalLevel)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID. Devuelve nil si no existe.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByCode obtiene un ítem por (tier, code).
func (r *ItemRepo) GetByCode(tier, code string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE tier = $1 AND code = $2`
	return r.scanOne(query, tier, code)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// List lista ítems por tier (vacío = todos) en orden estable por código.
func (r *ItemRepo) List(tier string, limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := []any{}
	pos := 1
	if tier != "" {
		query += fmt.Sprintf(" WHERE tier = $%d", pos)
		args = append(args, tier)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY tier, code LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// UpdateQuantity aplica el CAS optimista sobre before_quantity: solo escribe
// si la existencia sigue siendo before. Con la fila ya bloqueada por
// GetForUpdate el CAS no debería fallar; si falla, otro escritor se coló y se
// devuelve ConcurrencyConflictError para que el caller reintente.
func (r *ItemRepo) UpdateQuantity(id string, before, after decimal.Decimal) error {
	query := `
		UPDATE items SET quantity = $3, updated_at = now()
		WHERE id = $1 AND quantity = $2`
	tag, err := r.q.Exec(context.Background(), query, id, before, after)
	if err != nil {
		return fmt.Errorf("update item quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ConcurrencyConflictError{ItemID: id}
	}
	return nil
}

// UpdateReserved escribe la cantidad comprometida del ítem.
func (r *ItemRepo) UpdateReserved(id string, reserved decimal.Decimal) error {
	query := `UPDATE items SET reserved_quantity = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, reserved)
	if err != nil {
		return fmt.Errorf("update item reserved: %w", err)
	}
	return nil
}

// UpdateCost escribe el costo promedio ponderado del ítem.
func (r *ItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	query := `UPDATE items SET unit_cost = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, cost)
	if err != nil {
		return fmt.Errorf("update item cost: %w", err)
	}
	return nil
}

func (r *ItemRepo) scanOne(query string, args ...any) (*entity.Item, error) {
	row := r.q.QueryRow(context.Background(), query, args...)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var i entity.Item
	err := row.Scan(
		&i.ID, &i.Tier, &i.Code, &i.Name, &i.Unit,
		&i.Quantity, &i.ReservedQuantity, &i.CriticalLevel, &i.UnitCost,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
