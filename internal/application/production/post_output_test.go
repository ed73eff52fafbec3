package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/manufactura-api/internal/application/bom"
	"github.com/tallerpro/manufactura-api/internal/application/production"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// recordingPublisher captura los eventos publicados para verificarlos.
type recordingPublisher struct {
	movements []*entity.MovementEntry
	opened    []string
	closed    []string
}

func (p *recordingPublisher) MovementPosted(e *entity.MovementEntry) {
	p.movements = append(p.movements, e)
}
func (p *recordingPublisher) CriticalStockOpened(itemID string) { p.opened = append(p.opened, itemID) }
func (p *recordingPublisher) CriticalStockClosed(itemID string) { p.closed = append(p.closed, itemID) }

// fixture arma el entorno de producción completo sobre el almacén en memoria.
type fixture struct {
	st       *memory.Store
	pub      *recordingPublisher
	edges    *bom.EdgeUseCase
	create   *production.CreatePlanUseCase
	post     *production.PostOutputUseCase
	rollback *production.RollbackUseCase
	cancel   *production.CancelPlanUseCase
	complete *production.CompletePlanUseCase
}

func newFixture() *fixture {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	r := st.Repos()
	resolver := bom.NewResolverUseCase(r.BOM, r.Items)
	return &fixture{
		st:       st,
		pub:      pub,
		edges:    bom.NewEdgeUseCase(r.BOM, r.Items),
		create:   production.NewCreatePlanUseCase(st, resolver),
		post:     production.NewPostOutputUseCase(st, pub),
		rollback: production.NewRollbackUseCase(st, pub),
		cancel:   production.NewCancelPlanUseCase(st, pub),
		complete: production.NewCompletePlanUseCase(st),
	}
}

func (f *fixture) seedItem(t *testing.T, tier, code, quantity, critical string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now()
	err := f.st.Repos().Items.Create(&entity.Item{
		ID: id, Tier: tier, Code: code, Name: code, Unit: "und",
		Quantity:      d(quantity),
		CriticalLevel: d(critical),
		CreatedAt:     now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) addEdge(t *testing.T, parent, child, qty string) {
	t.Helper()
	_, err := f.edges.CreateEdge(context.Background(), bom.EdgeInput{
		ParentItemID: parent, ChildItemID: child, QuantityPerUnit: d(qty),
	})
	require.NoError(t, err)
}

func (f *fixture) item(t *testing.T, id string) *entity.Item {
	t.Helper()
	item, err := f.st.Repos().Items.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

// panFixture: pan (FINISHED) = 2 harina + 0.5 levadura por unidad.
func (f *fixture) panFixture(t *testing.T, harinaQty, levaduraQty string) (pan, harina, levadura string) {
	t.Helper()
	pan = f.seedItem(t, entity.TierFinished, "PAN", "0", "0")
	harina = f.seedItem(t, entity.TierRaw, "HARINA", harinaQty, "0")
	levadura = f.seedItem(t, entity.TierRaw, "LEVADURA", levaduraQty, "0")
	f.addEdge(t, pan, harina, "2")
	f.addEdge(t, pan, levadura, "0.5")
	return pan, harina, levadura
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación de plan — snapshot congelado y reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreatePlan_CongelaSnapshotYReserva(t *testing.T) {
	f := newFixture()
	pan, harina, levadura := f.panFixture(t, "100", "20")

	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Reference: "OP-001",
		Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PlanPending, plan.Status)

	snapshot, err := f.st.Repos().Snapshots.ListByPlan(plan.ID)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	assert.True(t, f.item(t, harina).ReservedQuantity.Equal(d("20")), "2 * 10 reservado")
	assert.True(t, f.item(t, levadura).ReservedQuantity.Equal(d("5")), "0.5 * 10 reservado")
	assert.True(t, f.item(t, harina).Quantity.Equal(d("100")), "reservar no descuenta")
}

// La reserva del plan no exige disponibilidad: puede superar la existencia
// mientras llegan las compras pendientes.
func TestCreatePlan_ReservaSinDisponibilidad(t *testing.T) {
	f := newFixture()
	pan, harina, _ := f.panFixture(t, "5", "1")

	_, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)
	item := f.item(t, harina)
	assert.True(t, item.ReservedQuantity.Equal(d("20")))
	assert.True(t, item.Available().LessThan(decimal.Zero), "reserved puede superar quantity transitoriamente")
}

// Editar el BOM después de crear el plan no cambia su snapshot.
func TestCreatePlan_SnapshotInmuneAEdicionesDelBOM(t *testing.T) {
	f := newFixture()
	pan, harina, _ := f.panFixture(t, "100", "20")

	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)

	// Cambia el grafo vivo: se elimina la arista de harina.
	edges, err := f.st.Repos().BOM.ListByParent(pan)
	require.NoError(t, err)
	for _, e := range edges {
		if e.ChildItemID == harina {
			require.NoError(t, f.st.Repos().BOM.DeleteEdge(e.ID))
		}
	}

	snapshot, err := f.st.Repos().Snapshots.ListByPlan(plan.ID)
	require.NoError(t, err)
	assert.Len(t, snapshot, 2, "el snapshot congelado no cambia con el grafo vivo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Publicación de producción — motor de consumo
// ──────────────────────────────────────────────────────────────────────────────

func TestPostOutput_ConsumeYProduce(t *testing.T) {
	f := newFixture()
	pan, harina, levadura := f.panFixture(t, "100", "20")
	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)

	result, err := f.post.Execute(context.Background(), plan.ID, d("5"), "op1")
	require.NoError(t, err)
	require.Len(t, result.Entries, 3, "2 salidas de material + 1 entrada de producto")

	// Todos los asientos comparten el correlation_id del evento.
	for _, e := range result.Entries {
		assert.Equal(t, result.CorrelationID, e.CorrelationID)
	}

	assert.True(t, f.item(t, harina).Quantity.Equal(d("90")), "100 - 2*5")
	assert.True(t, f.item(t, levadura).Quantity.Equal(d("17.5")), "20 - 0.5*5")
	assert.True(t, f.item(t, pan).Quantity.Equal(d("5")))

	// La reserva del plan se consume al publicar.
	assert.True(t, f.item(t, harina).ReservedQuantity.Equal(d("10")), "20 reservado - 10 consumido")
	assert.True(t, f.item(t, levadura).ReservedQuantity.Equal(d("2.5")))

	stored, err := f.st.Repos().Plans.GetByID(plan.ID)
	require.NoError(t, err)
	assert.True(t, stored.ProducedQuantity.Equal(d("5")))
	assert.Equal(t, entity.PlanInProgress, stored.Status)

	logs, err := f.st.Repos().Logs.ListLiveByPlan(plan.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, result.ProductionLogID, logs[0].ID)
	assert.Len(t, f.pub.movements, 3, "los eventos salen tras el commit")
}

// La reserva propia del plan se acredita: lo comprometido a su favor no
// bloquea su propio consumo.
func TestPostOutput_ReservaPropiaNoBloquea(t *testing.T) {
	f := newFixture()
	pan, _, _ := f.panFixture(t, "20", "5")
	// Plan de 10: reserva 20 harina y 5 levadura = TODO el stock.
	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)

	// available bruto = 0, pero el crédito de la reserva propia cubre el consumo.
	_, err = f.post.Execute(context.Background(), plan.ID, d("10"), "op1")
	require.NoError(t, err)
	assert.True(t, f.item(t, pan).Quantity.Equal(d("10")))
}

// Falla de validación: TODAS las líneas en falta se reportan y nada se asienta.
func TestPostOutput_ReportaTodasLasFaltas(t *testing.T) {
	f := newFixture()
	pan, harina, levadura := f.panFixture(t, "4", "0.5")
	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)

	_, err = f.post.Execute(context.Background(), plan.ID, d("5"), "op1")
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Len(t, insufficient.Lines, 2, "ambos materiales en falta, no solo el primero")

	// Atomicidad: ningún efecto visible.
	assert.True(t, f.item(t, harina).Quantity.Equal(d("4")))
	assert.True(t, f.item(t, levadura).Quantity.Equal(d("0.5")))
	assert.True(t, f.item(t, pan).Quantity.IsZero())
	logs, _ := f.st.Repos().Logs.ListLiveByPlan(plan.ID)
	assert.Empty(t, logs, "no se escribe reporte en una publicación fallida")
	assert.Empty(t, f.pub.movements, "no se publican eventos de una transacción abortada")
}

func TestPostOutput_PlanTerminalRechaza(t *testing.T) {
	f := newFixture()
	pan, _, _ := f.panFixture(t, "100", "20")
	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)

	require.NoError(t, f.complete.Execute(context.Background(), plan.ID, "mgr1", domain.RoleManager))
	_, err = f.post.Execute(context.Background(), plan.ID, d("1"), "op1")
	assert.ErrorIs(t, err, domain.ErrPlanCompleted, "el trabajo completado es inmutable")
}

func TestPostOutput_DeltaInvalido(t *testing.T) {
	f := newFixture()
	_, err := f.post.Execute(context.Background(), "plan", d("-1"), "op1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.post.Execute(context.Background(), "plan", decimal.Zero, "op1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Completar el plan libera el remanente de la reserva.
func TestCompletePlan_LiberaReservas(t *testing.T) {
	f := newFixture()
	pan, harina, _ := f.panFixture(t, "100", "20")
	plan, err := f.create.Execute(context.Background(), production.CreatePlanInput{
		ItemID: pan, Tier: entity.TierFinished, Quantity: d("10"), ActorID: "planner1",
	})
	require.NoError(t, err)
	_, err = f.post.Execute(context.Background(), plan.ID, d("5"), "op1")
	require.NoError(t, err)

	require.NoError(t, f.complete.Execute(context.Background(), plan.ID, "mgr1", domain.RoleManager))

	assert.True(t, f.item(t, harina).ReservedQuantity.IsZero(), "remanente liberado")
	stored, _ := f.st.Repos().Plans.GetByID(plan.ID)
	assert.Equal(t, entity.PlanCompleted, stored.Status)

	// Completar exige manager/planner.
	err = f.complete.Execute(context.Background(), plan.ID, "op1", domain.RoleOperator)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
