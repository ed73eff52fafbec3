package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/manufactura-api/internal/application/audit"
	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/domain/repository"
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

func newAuditor(st *memory.Store, pub *recordingPublisher) *audit.AuditUseCase {
	r := st.Repos()
	return audit.NewAuditUseCase(st, r.Items, r.Movements, pub)
}

func seedItem(t *testing.T, st *memory.Store, code string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now()
	err := st.Repos().Items.Create(&entity.Item{
		ID: id, Tier: entity.TierRaw, Code: code, Name: code, Unit: "und",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return id
}

// inflow asienta una entrada por la vía normal, para que historia y existencia
// queden consistentes.
func inflow(t *testing.T, st *memory.Store, itemID, qty string) {
	t.Helper()
	uc := stock.NewRegisterMovementUseCase(st, &recordingPublisher{})
	_, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementInflow, Quantity: d(qty),
		Source: entity.SourcePurchase, ActorID: "u1",
	})
	require.NoError(t, err)
}

// corrupt desalinea la existencia almacenada sin tocar la historia, simulando
// una escritura que se saltó el libro.
func corrupt(t *testing.T, st *memory.Store, itemID, newQty string) {
	t.Helper()
	item, err := st.Repos().Items.GetByID(itemID)
	require.NoError(t, err)
	require.NoError(t, st.Repos().Items.UpdateQuantity(itemID, item.Quantity, d(newQty)))
}

// ──────────────────────────────────────────────────────────────────────────────
// AuditItem — solo lectura
// ──────────────────────────────────────────────────────────────────────────────

func TestAuditItem_SinDeriva(t *testing.T) {
	st := memory.NewStore()
	itemID := seedItem(t, st, "HARINA")
	inflow(t, st, itemID, "100")
	inflow(t, st, itemID, "25.5")

	report, err := newAuditor(st, &recordingPublisher{}).AuditItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.False(t, report.Drifted)
	assert.True(t, report.Replayed.Equal(d("125.5")))
	assert.True(t, report.Drift.IsZero())
	assert.Empty(t, report.ChainViolations)
	assert.NoError(t, report.DriftError())
}

func TestAuditItem_DetectaDeriva(t *testing.T) {
	st := memory.NewStore()
	itemID := seedItem(t, st, "HARINA")
	inflow(t, st, itemID, "100")
	corrupt(t, st, itemID, "90")

	report, err := newAuditor(st, &recordingPublisher{}).AuditItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.True(t, report.Drifted)
	assert.True(t, report.Stored.Equal(d("90")))
	assert.True(t, report.Replayed.Equal(d("100")), "la historia es la verdad")
	assert.True(t, report.Drift.Equal(d("-10")))

	var driftErr *domain.ConsistencyDriftError
	require.ErrorAs(t, report.DriftError(), &driftErr)
	assert.Equal(t, "HARINA", driftErr.Code)
}

func TestAuditItem_ToleraEpsilon(t *testing.T) {
	st := memory.NewStore()
	itemID := seedItem(t, st, "HARINA")
	inflow(t, st, itemID, "100")
	corrupt(t, st, itemID, "100.0001")

	report, err := newAuditor(st, &recordingPublisher{}).AuditItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.False(t, report.Drifted, "deriva dentro del epsilon no se reporta")
}

func TestAuditItem_Inexistente(t *testing.T) {
	st := memory.NewStore()
	_, err := newAuditor(st, &recordingPublisher{}).AuditItem(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// RepairItem — conciliación con asiento correctivo
// ──────────────────────────────────────────────────────────────────────────────

func TestRepairItem_UnSoloAsientoCorrectivo(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	itemID := seedItem(t, st, "HARINA")
	inflow(t, st, itemID, "100")
	corrupt(t, st, itemID, "73")

	report, err := newAuditor(st, pub).RepairItem(context.Background(), itemID, "conteo físico")
	require.NoError(t, err)
	assert.True(t, report.Repaired)

	item, _ := st.Repos().Items.GetByID(itemID)
	assert.True(t, item.Quantity.Equal(d("100")), "la existencia se alinea con la verdad reproducida")

	entries, err := st.Repos().Movements.ListByItem(itemID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "la entrada original + exactamente un asiento correctivo")
	corrective := entries[len(entries)-1]
	assert.Equal(t, entity.SourceSystem, corrective.Source)
	assert.Equal(t, "auditor", corrective.ActorID)
	assert.True(t, corrective.Quantity.Equal(d("27")), "delta = reproducido - almacenado")
	assert.True(t, corrective.BeforeQuantity.Equal(d("73")))
	assert.True(t, corrective.AfterQuantity.Equal(d("100")))
	require.Len(t, pub.movements, 1, "el correctivo se publica tras el commit")

	// Re-auditar un ítem reparado: limpio.
	again, err := newAuditor(st, pub).AuditItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.False(t, again.Drifted)
}

func TestRepairItem_SinDerivaEsNoOp(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	itemID := seedItem(t, st, "HARINA")
	inflow(t, st, itemID, "100")

	report, err := newAuditor(st, pub).RepairItem(context.Background(), itemID, "barrido")
	require.NoError(t, err)
	assert.False(t, report.Repaired)

	entries, _ := st.Repos().Movements.ListByItem(itemID)
	assert.Len(t, entries, 1, "sin deriva no se asienta nada")
	assert.Empty(t, pub.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sweep — barrido por lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestSweep_ReportaYRepara(t *testing.T) {
	st := memory.NewStore()
	sano := seedItem(t, st, "SANO")
	roto := seedItem(t, st, "ROTO")
	inflow(t, st, sano, "10")
	inflow(t, st, roto, "10")
	corrupt(t, st, roto, "7")

	auditor := newAuditor(st, &recordingPublisher{})
	reports, err := auditor.Sweep(context.Background(), "", false, false)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	drifted := 0
	for _, rep := range reports {
		if rep.Drifted {
			drifted++
		}
	}
	assert.Equal(t, 1, drifted)

	// Segundo barrido en modo reparación deja todo limpio.
	reports, err = auditor.Sweep(context.Background(), "", true, false)
	require.NoError(t, err)
	for _, rep := range reports {
		assert.NoError(t, rep.DriftError(), "ítem %s", rep.Code)
	}
	item, _ := st.Repos().Items.GetByID(roto)
	assert.True(t, item.Quantity.Equal(d("10")))
}

func TestSweep_FiltraPorTier(t *testing.T) {
	st := memory.NewStore()
	seedItem(t, st, "MATERIA") // TierRaw
	id := uuid.New().String()
	now := time.Now()
	require.NoError(t, st.Repos().Items.Create(&entity.Item{
		ID: id, Tier: entity.TierFinished, Code: "PROD", Name: "PROD", Unit: "und",
		CreatedAt: now, UpdatedAt: now,
	}))

	reports, err := newAuditor(st, &recordingPublisher{}).Sweep(context.Background(), entity.TierFinished, false, false)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "PROD", reports[0].Code)
}

// failingItems falla GetByID para un ítem concreto, simulando un error
// transitorio de lectura a mitad del barrido.
type failingItems struct {
	repository.ItemRepository
	failID string
}

func (r *failingItems) GetByID(id string) (*entity.Item, error) {
	if id == r.failID {
		return nil, errors.New("lectura fallida")
	}
	return r.ItemRepository.GetByID(id)
}

func TestSweep_ContinuaTrasItemFallido(t *testing.T) {
	st := memory.NewStore()
	a := seedItem(t, st, "AAA")
	b := seedItem(t, st, "BBB")
	inflow(t, st, a, "5")
	inflow(t, st, b, "5")

	r := st.Repos()
	items := &failingItems{ItemRepository: r.Items, failID: a}
	auditor := audit.NewAuditUseCase(st, items, r.Movements, &recordingPublisher{})

	// Sin continue-on-error el barrido se corta en el primer ítem fallido.
	reports, err := auditor.Sweep(context.Background(), "", false, false)
	require.Error(t, err)
	assert.Empty(t, reports)

	// Con continue-on-error los demás ítems sí se auditan y el error se reporta.
	reports, err = auditor.Sweep(context.Background(), "", false, true)
	require.Error(t, err, "el ítem fallido se sigue reportando al final")
	assert.Contains(t, err.Error(), "AAA")
	require.Len(t, reports, 1)
	assert.Equal(t, "BBB", reports[0].Code)
}

func TestSweep_CancelacionCooperativa(t *testing.T) {
	st := memory.NewStore()
	seedItem(t, st, "A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAuditor(st, &recordingPublisher{}).Sweep(ctx, "", false, false)
	assert.ErrorIs(t, err, context.Canceled)
}
