package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository           = (*ItemRepo)(nil)
	_ repository.MovementRepository       = (*MovementRepo)(nil)
	_ repository.BOMRepository            = (*BOMRepo)(nil)
	_ repository.BOMSnapshotRepository    = (*BOMSnapshotRepo)(nil)
	_ repository.ProductionPlanRepository = (*PlanRepo)(nil)
	_ repository.ProductionLogRepository  = (*LogRepo)(nil)
	_ repository.ReservationRepository    = (*ReservationRepo)(nil)
	_ repository.NotificationRepository   = (*NotificationRepo)(nil)
)

// ItemRepo repositorio de ítems en memoria.
type ItemRepo struct {
	get func() *state
}

func (r *ItemRepo) Create(item *entity.Item) error {
	s := r.get()
	for _, existing := range s.items {
		if existing.Tier == item.Tier && existing.Code == item.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) Update(item *entity.Item) error {
	stored, ok := r.get().items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Name = item.Name
	stored.Unit = item.Unit
	stored.CriticalLevel = item.CriticalLevel
	stored.UpdatedAt = item.UpdatedAt
	return nil
}

func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	stored, ok := r.get().items[id]
	if !ok {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

func (r *ItemRepo) GetByCode(tier, code string) (*entity.Item, error) {
	for _, stored := range r.get().items {
		if stored.Tier == tier && stored.Code == code {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) List(tier string, limit, offset int) ([]*entity.Item, error) {
	var list []*entity.Item
	for _, stored := range r.get().items {
		if tier != "" && stored.Tier != tier {
			continue
		}
		cp := *stored
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), nil
}

/// GetForUpdate en memoria no bloquea filas: la exclusión la da la transacción
// del Store, que serializa todo bajo un solo mutex.
func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	return r.GetByID(id)
}

func (r *ItemRepo) UpdateQuantity(id string, before, after decimal.Decimal) error {
	stored, ok := r.get().items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !stored.Quantity.Equal(before) {
		return &domain.ConcurrencyConflictError{ItemID: id}
	}
	stored.Quantity = after
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *ItemRepo) UpdateReserved(id string, reserved decimal.Decimal) error {
	stored, ok := r.get().items[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.ReservedQuantity = reserved
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *ItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	stored, ok := r.get().items[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.UnitCost = cost
	stored.UpdatedAt = time.Now()
	return nil
}

// MovementRepo libro de movimientos en memoria (append-only).
type MovementRepo struct {
	get func() *state
}

func (r *MovementRepo) Create(entry *entity.MovementEntry) error {
	s := r.get()
	cp := *entry
	s.movements = append(s.movements, &cp)
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	for _, m := range r.get().movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListByItem(itemID string) ([]*entity.MovementEntry, error) {
	var list []*entity.MovementEntry
	for _, m := range r.get().movements {
		if m.ItemID == itemID {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *MovementRepo) ListByItemPaged(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	var list []*entity.MovementEntry
	for _, m := range r.get().movements {
		if m.ItemID != itemID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	return page(list, limit, offset), nil
}

func (r *MovementRepo) ListByCorrelation(correlationID string) ([]*entity.MovementEntry, error) {
	var list []*entity.MovementEntry
	for _, m := range r.get().movements {
		if m.CorrelationID == correlationID {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

// BOMRepo grafo BOM en memoria.
type BOMRepo struct {
	get func() *state
}

func (r *BOMRepo) CreateEdge(edge *entity.BOMEdge) error {
	s := r.get()
	for _, existing := range s.bomEdges {
		if existing.ParentItemID == edge.ParentItemID && existing.ChildItemID == edge.ChildItemID {
			return domain.ErrDuplicate
		}
	}
	cp := *edge
	s.bomEdges[edge.ID] = &cp
	return nil
}

func (r *BOMRepo) DeleteEdge(id string) error {
	s := r.get()
	if _, ok := s.bomEdges[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.bomEdges, id)
	return nil
}

func (r *BOMRepo) ListByParent(parentItemID string) ([]*entity.BOMEdge, error) {
	var list []*entity.BOMEdge
	for _, e := range r.get().bomEdges {
		if e.ParentItemID == parentItemID {
			cp := *e
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ChildItemID < list[j].ChildItemID })
	return list, nil
}

func (r *BOMRepo) ListAll() ([]*entity.BOMEdge, error) {
	var list []*entity.BOMEdge
	for _, e := range r.get().bomEdges {
		cp := *e
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// BOMSnapshotRepo snapshots de materiales por plan en memoria.
type BOMSnapshotRepo struct {
	get func() *state
}

func (r *BOMSnapshotRepo) CreateLines(lines []*entity.BOMSnapshotLine) error {
	s := r.get()
	for _, line := range lines {
		cp := *line
		s.snapshotLines = append(s.snapshotLines, &cp)
	}
	return nil
}

func (r *BOMSnapshotRepo) ListByPlan(planID string) ([]*entity.BOMSnapshotLine, error) {
	var list []*entity.BOMSnapshotLine
	for _, l := range r.get().snapshotLines {
		if l.PlanID == planID {
			cp := *l
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].MaterialID < list[j].MaterialID })
	return list, nil
}

// PlanRepo planes de producción en memoria.
type PlanRepo struct {
	get func() *state
}

func (r *PlanRepo) Create(plan *entity.ProductionPlan) error {
	cp := *plan
	r.get().plans[plan.ID] = &cp
	return nil
}

func (r *PlanRepo) GetByID(id string) (*entity.ProductionPlan, error) {
	stored, ok := r.get().plans[id]
	if !ok {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

func (r *PlanRepo) GetForUpdate(id string) (*entity.ProductionPlan, error) {
	return r.GetByID(id)
}

func (r *PlanRepo) List(status string, limit, offset int) ([]*entity.ProductionPlan, error) {
	var list []*entity.ProductionPlan
	for _, p := range r.get().plans {
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *PlanRepo) UpdateProduced(id string, produced decimal.Decimal) error {
	stored, ok := r.get().plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.ProducedQuantity = produced
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *PlanRepo) UpdateStatus(id string, status string) error {
	stored, ok := r.get().plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = time.Now()
	return nil
}

// LogRepo reportes de producción en memoria.
type LogRepo struct {
	get func() *state
}

func (r *LogRepo) Create(log *entity.ProductionLog) error {
	cp := *log
	r.get().logs[log.ID] = &cp
	return nil
}

func (r *LogRepo) GetByID(id string) (*entity.ProductionLog, error) {
	stored, ok := r.get().logs[id]
	if !ok {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

func (r *LogRepo) ListLiveByPlan(planID string) ([]*entity.ProductionLog, error) {
	var list []*entity.ProductionLog
	for _, l := range r.get().logs {
		if l.PlanID == planID && !l.Voided() {
			cp := *l
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *LogRepo) Void(id string, reason string, at time.Time) error {
	stored, ok := r.get().logs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Voided() {
		return domain.ErrLogVoided
	}
	voidedAt := at
	stored.VoidedAt = &voidedAt
	stored.VoidReason = reason
	return nil
}

// ReservationRepo reservas de material en memoria.
type ReservationRepo struct {
	get func() *state
}

func (r *ReservationRepo) Create(res *entity.Reservation) error {
	cp := *res
	r.get().reservations[res.ID] = &cp
	return nil
}

func (r *ReservationRepo) ListActiveByOwner(ownerReference string) ([]*entity.Reservation, error) {
	var list []*entity.Reservation
	for _, res := range r.get().reservations {
		if res.OwnerReference == ownerReference && res.Active() {
			cp := *res
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ItemID < list[j].ItemID })
	return list, nil
}

func (r *ReservationRepo) UpdateRemaining(id string, remaining decimal.Decimal) error {
	stored, ok := r.get().reservations[id]
	if !ok || !stored.Active() {
		return domain.ErrNotFound
	}
	stored.QuantityRemaining = remaining
	return nil
}

func (r *ReservationRepo) Release(id string, at time.Time) error {
	stored, ok := r.get().reservations[id]
	if !ok || !stored.Active() {
		return domain.ErrNotFound
	}
	releasedAt := at
	stored.ReleasedAt = &releasedAt
	return nil
}

// NotificationRepo alertas de stock crítico en memoria.
type NotificationRepo struct {
	get func() *state
}

func (r *NotificationRepo) GetOpenByItem(itemID string) (*entity.CriticalNotification, error) {
	for _, n := range r.get().notifications {
		if n.ItemID == itemID && n.ClosedAt == nil {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *NotificationRepo) Open(notification *entity.CriticalNotification) error {
	s := r.get()
	for _, n := range s.notifications {
		if n.ItemID == notification.ItemID && n.ClosedAt == nil {
			return domain.ErrDuplicate
		}
	}
	cp := *notification
	s.notifications[notification.ID] = &cp
	return nil
}

func (r *NotificationRepo) Close(id string, at time.Time) error {
	stored, ok := r.get().notifications[id]
	if !ok || stored.ClosedAt != nil {
		return domain.ErrNotFound
	}
	closedAt := at
	stored.ClosedAt = &closedAt
	return nil
}

// page aplica limit/offset con la misma semántica que LIMIT/OFFSET en SQL.
// limit <= 0 significa sin límite.
func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
