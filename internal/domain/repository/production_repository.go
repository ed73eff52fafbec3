package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// ProductionPlanRepository define el puerto de persistencia de planes de producción.
type ProductionPlanRepository interface {
	Create(plan *entity.ProductionPlan) error
	GetByID(id string) (*entity.ProductionPlan, error)
	// GetForUpdate bloquea el plan: serializa publicaciones, reversas y cancelación.
	GetForUpdate(id string) (*entity.ProductionPlan, error)
	List(status string, limit, offset int) ([]*entity.ProductionPlan, error)
	UpdateProduced(id string, produced decimal.Decimal) error
	UpdateStatus(id string, status string) error
}

// ProductionLogRepository define el puerto de persistencia de reportes de producción.
// Los reportes se anulan (void), nunca se borran.
type ProductionLogRepository interface {
	Create(log *entity.ProductionLog) error
	GetByID(id string) (*entity.ProductionLog, error)
	// ListLiveByPlan devuelve los reportes no anulados del plan, más antiguos primero.
	ListLiveByPlan(planID string) ([]*entity.ProductionLog, error)
	Void(id string, reason string, at time.Time) error
}
