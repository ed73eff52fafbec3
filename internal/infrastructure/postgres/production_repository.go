package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var _ repository.ProductionPlanRepository = (*ProductionPlanRepo)(nil)
var _ repository.ProductionLogRepository = (*ProductionLogRepo)(nil)

// ProductionPlanRepo implementación de planes de producción sobre PostgreSQL.
type ProductionPlanRepo struct {
	q Querier
}

// NewProductionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionPlanRepository(q Querier) *ProductionPlanRepo {
	return &ProductionPlanRepo{q: q}
}

const planColumns = `id, item_id, item_tier, reference, planned_quantity, produced_quantity, status, created_by, created_at, updated_at`

// Create persiste un plan nuevo.
func (r *ProductionPlanRepo) Create(plan *entity.ProductionPlan) error {
	query := `
		INSERT INTO production_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		plan.ID, plan.ItemID, plan.ItemTier, plan.Reference,
		plan.PlannedQuantity, plan.ProducedQuantity, plan.Status,
		plan.CreatedBy, plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// GetByID obtiene un plan por ID.
func (r *ProductionPlanRepo) GetByID(id string) (*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans WHERE id = $1`
	return r.scanOne(query, id)
}

// GetForUpdate obtiene el plan y bloquea la fila: serializa publicaciones,
// reversas y cancelación sobre el mismo plan.
func (r *ProductionPlanRepo) GetForUpdate(id string) (*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

// List lista planes por estado (vacío = todos), más recientes primero.
func (r *ProductionPlanRepo) List(status string, limit, offset int) ([]*entity.ProductionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM production_plans`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		list = append(list, plan)
	}
	return list, rows.Err()
}

// UpdateProduced escribe el acumulado producido del plan.
func (r *ProductionPlanRepo) UpdateProduced(id string, produced decimal.Decimal) error {
	query := `UPDATE production_plans SET produced_quantity = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, produced)
	if err != nil {
		return fmt.Errorf("update plan produced: %w", err)
	}
	return nil
}

// UpdateStatus escribe el estado del plan.
func (r *ProductionPlanRepo) UpdateStatus(id string, status string) error {
	query := `UPDATE production_plans SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update plan status: %w", err)
	}
	return nil
}

func (r *ProductionPlanRepo) scanOne(query string, args ...any) (*entity.ProductionPlan, error) {
	row := r.q.QueryRow(context.Background(), query, args...)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return plan, nil
}

func scanPlan(row pgx.Row) (*entity.ProductionPlan, error) {
	var p entity.ProductionPlan
	err := row.Scan(
		&p.ID, &p.ItemID, &p.ItemTier, &p.Reference,
		&p.PlannedQuantity, &p.ProducedQuantity, &p.Status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductionLogRepo implementación de reportes de producción sobre PostgreSQL.
// Los reportes se anulan con Void, nunca se borran.
type ProductionLogRepo struct {
	q Querier
}

// NewProductionLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionLogRepository(q Querier) *ProductionLogRepo {
	return &ProductionLogRepo{q: q}
}

const logColumns = `id, plan_id, quantity_produced, correlation_id, operator_id, created_at, voided_at, void_reason`

// Create persiste un reporte de producción.
func (r *ProductionLogRepo) Create(log *entity.ProductionLog) error {
	query := `
		INSERT INTO production_logs (` + logColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	voidReason := (*string)(nil)
	if log.VoidReason != "" {
		voidReason = &log.VoidReason
	}
	_, err := r.q.Exec(context.Background(), query,
		log.ID, log.PlanID, log.QuantityProduced, log.CorrelationID,
		log.OperatorID, log.CreatedAt, log.VoidedAt, voidReason,
	)
	if err != nil {
		return fmt.Errorf("create production log: %w", err)
	}
	return nil
}

// GetByID obtiene un reporte por ID.
func (r *ProductionLogRepo) GetByID(id string) (*entity.ProductionLog, error) {
	query := `SELECT ` + logColumns + ` FROM production_logs WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	log, err := scanLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production log: %w", err)
	}
	return log, nil
}

// ListLiveByPlan devuelve los reportes no anulados del plan, más antiguos primero.
func (r *ProductionLogRepo) ListLiveByPlan(planID string) ([]*entity.ProductionLog, error) {
	query := `
		SELECT ` + logColumns + ` FROM production_logs
		WHERE plan_id = $1 AND voided_at IS NULL ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, planID)
	if err != nil {
		return nil, fmt.Errorf("list production logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production log: %w", err)
		}
		list = append(list, log)
	}
	return list, rows.Err()
}

// Void anula el reporte. Solo aplica a reportes vivos: anular dos veces es conflicto.
func (r *ProductionLogRepo) Void(id string, reason string, at time.Time) error {
	query := `
		UPDATE production_logs SET voided_at = $2, void_reason = $3
		WHERE id = $1 AND voided_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at, reason)
	if err != nil {
		return fmt.Errorf("void production log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLogVoided
	}
	return nil
}

func scanLog(row pgx.Row) (*entity.ProductionLog, error) {
	var l entity.ProductionLog
	var voidReason *string
	err := row.Scan(
		&l.ID, &l.PlanID, &l.QuantityProduced, &l.CorrelationID,
		&l.OperatorID, &l.CreatedAt, &l.VoidedAt, &voidReason,
	)
	if err != nil {
		return nil, err
	}
	if voidReason != nil {
		l.VoidReason = *voidReason
	}
	return &l, nil
}
