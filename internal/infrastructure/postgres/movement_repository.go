package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL.
// Append-only: este adaptador no expone UPDATE ni DELETE sobre la tabla.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, item_tier, type, quantity, before_quantity, after_quantity, source, actor_id, correlation_id, description, created_at`

// Create persiste un asiento del libro.
func (r *MovementRepo) Create(entry *entity.MovementEntry) error {
	query := `
		INSERT INTO movement_entries (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ItemID, entry.ItemTier, entry.Type,
		entry.Quantity, entry.BeforeQuantity, entry.AfterQuantity,
		entry.Source, entry.ActorID, entry.CorrelationID, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_entries WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	entry, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement entry: %w", err)
	}
	return entry, nil
}

// ListByItem devuelve la historia completa del ítem en orden de creación
// ascendente: el orden que reproduce el auditor.
func (r *MovementRepo) ListByItem(itemID string) ([]*entity.MovementEntry, error) {
	query := `
		SELECT ` + movementColumns + ` FROM movement_entries
		WHERE item_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(query, itemID)
}

// ListByItemPaged lista movimientos del ítem en un rango de fechas, más recientes primero.
func (r *MovementRepo) ListByItemPaged(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_entries WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByCorrelation devuelve todos los asientos de un mismo evento lógico.
func (r *MovementRepo) ListByCorrelation(correlationID string) ([]*entity.MovementEntry, error) {
	query := `
		SELECT ` + movementColumns + ` FROM movement_entries
		WHERE correlation_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(query, correlationID)
}

func (r *MovementRepo) list(query string, args ...any) ([]*entity.MovementEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		entry, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement entry: %w", err)
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var m entity.MovementEntry
	err := row.Scan(
		&m.ID, &m.ItemID, &m.ItemTier, &m.Type,
		&m.Quantity, &m.BeforeQuantity, &m.AfterQuantity,
		&m.Source, &m.ActorID, &m.CorrelationID, &m.Description, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
