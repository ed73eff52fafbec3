package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/manufactura-api/internal/application/stock"
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

// seedItem da de alta un ítem con existencia inicial directa (solo fixtures).
func seedItem(t *testing.T, st *memory.Store, tier, code, quantity, critical string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now()
	err := st.Repos().Items.Create(&entity.Item{
		ID: id, Tier: tier, Code: code, Name: code, Unit: "und",
		Quantity:      d(quantity),
		CriticalLevel: d(critical),
		CreatedAt:     now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterMovement — movimientos manuales
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_Entrada(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	uc := stock.NewRegisterMovementUseCase(st, pub)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "0", "0")

	entry, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementInflow, Quantity: d("100"),
		Source: entity.SourcePurchase, ActorID: "u1", Description: "compra inicial",
	})
	require.NoError(t, err)

	assert.True(t, entry.Quantity.Equal(d("100")))
	assert.True(t, entry.BeforeQuantity.IsZero())
	assert.True(t, entry.AfterQuantity.Equal(d("100")))
	assert.NotEmpty(t, entry.CorrelationID)

	item, err := st.Repos().Items.GetByID(itemID)
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(d("100")), "la existencia refleja el asiento")
	require.Len(t, pub.movements, 1, "el evento se publica tras el commit")
}

func TestRegisterMovement_SalidaConSigno(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewRegisterMovementUseCase(st, &recordingPublisher{})
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "50", "0")

	entry, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementOutflow, Quantity: d("20"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	require.NoError(t, err)
	assert.True(t, entry.Quantity.Equal(d("-20")), "el delta de una salida lleva signo negativo")
	assert.True(t, entry.AfterQuantity.Equal(d("30")))
}

func TestRegisterMovement_SalidaSinDisponibilidad(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewRegisterMovementUseCase(st, &recordingPublisher{})
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "10", "0")

	_, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementOutflow, Quantity: d("11"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada quedó asentado: transacción abortada por completo.
	item, _ := st.Repos().Items.GetByID(itemID)
	assert.True(t, item.Quantity.Equal(d("10")))
	entries, _ := st.Repos().Movements.ListByItem(itemID)
	assert.Empty(t, entries)
}

// La salida valida contra quantity - reserved, no contra la existencia bruta.
func TestRegisterMovement_SalidaRespetaReservas(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewRegisterMovementUseCase(st, &recordingPublisher{})
	resUC := stock.NewReservationUseCase(st)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "100", "0")

	_, err := resUC.Reserve(context.Background(), itemID, "orden-1", d("80"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementOutflow, Quantity: d("30"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "disponible = 100 - 80 = 20 < 30")
}

func TestRegisterMovement_EntradaRecalculaCostoPromedio(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewRegisterMovementUseCase(st, &recordingPublisher{})
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "0", "0")

	cost1 := d("5")
	_, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementInflow, Quantity: d("10"),
		Source: entity.SourcePurchase, ActorID: "u1", UnitCost: &cost1,
	})
	require.NoError(t, err)

	cost2 := d("7")
	_, err = uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementInflow, Quantity: d("10"),
		Source: entity.SourcePurchase, ActorID: "u1", UnitCost: &cost2,
	})
	require.NoError(t, err)

	item, _ := st.Repos().Items.GetByID(itemID)
	assert.True(t, item.UnitCost.Equal(d("6")), "promedio ponderado de 5 y 7 a partes iguales")
}

func TestRegisterMovement_EntradaInvalida(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewRegisterMovementUseCase(st, &recordingPublisher{})

	_, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: "x", Type: entity.MovementTransfer, Quantity: d("1"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo INFLOW/OUTFLOW manuales")

	_, err = uc.Execute(context.Background(), stock.MovementInput{
		ItemID: "x", Type: entity.MovementInflow, Quantity: decimal.Zero,
		Source: entity.SourceManual, ActorID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero se rechaza")
}

// ──────────────────────────────────────────────────────────────────────────────
// Alerta de stock crítico — ciclo abrir / reentrada / cerrar
// ──────────────────────────────────────────────────────────────────────────────

func TestCriticalStock_AbreCierraUnaSolaVez(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	uc := stock.NewRegisterMovementUseCase(st, pub)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "20", "10")

	// 20 -> 8: cruza el umbral, abre alerta
	_, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementOutflow, Quantity: d("12"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, pub.opened, 1, "al cruzar el umbral se abre la alerta")

	// 8 -> 5: sigue bajo el umbral, NO abre otra
	_, err = uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementOutflow, Quantity: d("3"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	require.NoError(t, err)
	assert.Len(t, pub.opened, 1, "la reentrada bajo el umbral es no-op")

	// 5 -> 50: sube sobre el umbral, cierra la alerta
	_, err = uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementInflow, Quantity: d("45"),
		Source: entity.SourcePurchase, ActorID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, pub.closed, 1)

	open, err := st.Repos().Notifications.GetOpenByItem(itemID)
	require.NoError(t, err)
	assert.Nil(t, open, "no queda alerta abierta")
}

func TestCriticalStock_IgualAlUmbralAbre(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	uc := stock.NewRegisterMovementUseCase(st, pub)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "15", "10")

	// 15 -> 10: quantity <= critical abre
	_, err := uc.Execute(context.Background(), stock.MovementInput{
		ItemID: itemID, Type: entity.MovementOutflow, Quantity: d("5"),
		Source: entity.SourceManual, ActorID: "u1",
	})
	require.NoError(t, err)
	assert.Len(t, pub.opened, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_CompromeSinDescontar(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewReservationUseCase(st)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "100", "0")

	res, err := uc.Reserve(context.Background(), itemID, "orden-1", d("40"))
	require.NoError(t, err)
	assert.True(t, res.QuantityRemaining.Equal(d("40")))

	item, _ := st.Repos().Items.GetByID(itemID)
	assert.True(t, item.Quantity.Equal(d("100")), "reservar no descuenta existencia")
	assert.True(t, item.ReservedQuantity.Equal(d("40")))
	assert.True(t, item.Available().Equal(d("60")))
}

func TestReserve_SinDisponibilidad(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewReservationUseCase(st)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "10", "0")

	_, err := uc.Reserve(context.Background(), itemID, "orden-1", d("11"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReleaseOwner_DevuelveRemanente(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewReservationUseCase(st)
	itemID := seedItem(t, st, entity.TierRaw, "HARINA", "100", "0")

	_, err := uc.Reserve(context.Background(), itemID, "orden-1", d("40"))
	require.NoError(t, err)
	require.NoError(t, uc.ReleaseOwner(context.Background(), "orden-1"))

	item, _ := st.Repos().Items.GetByID(itemID)
	assert.True(t, item.ReservedQuantity.IsZero())
	active, _ := st.Repos().Reservations.ListActiveByOwner("orden-1")
	assert.Empty(t, active)
}
