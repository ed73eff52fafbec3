package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallerpro/manufactura-api/internal/application/stock"
	"github.com/tallerpro/manufactura-api/internal/domain"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
	"github.com/tallerpro/manufactura-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transfer — traslado de existencia entre ítems
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_DosAsientosConMismaCorrelacion(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	uc := stock.NewTransferUseCase(st, pub)
	origen := seedItem(t, st, entity.TierRaw, "BOBINA", "100", "0")
	destino := seedItem(t, st, entity.TierSemi, "CORTE", "5", "0")

	entries, err := uc.Execute(context.Background(), stock.TransferInput{
		FromItemID: origen, ToItemID: destino, Quantity: d("30"),
		ActorID: "u1", Description: "reclasificación a corte",
	})
	require.NoError(t, err)
	require.Len(t, entries, 2, "salida del origen + entrada al destino")

	salida, entrada := entries[0], entries[1]
	assert.Equal(t, entity.MovementTransfer, salida.Type)
	assert.Equal(t, entity.MovementTransfer, entrada.Type)
	assert.Equal(t, entity.SourceTransfer, salida.Source)
	assert.True(t, salida.Quantity.Equal(d("-30")), "el origen asienta delta negativo")
	assert.True(t, entrada.Quantity.Equal(d("30")))
	assert.Equal(t, salida.CorrelationID, entrada.CorrelationID, "un traslado es un solo evento lógico")

	from, _ := st.Repos().Items.GetByID(origen)
	to, _ := st.Repos().Items.GetByID(destino)
	assert.True(t, from.Quantity.Equal(d("70")))
	assert.True(t, to.Quantity.Equal(d("35")))
	assert.Len(t, pub.movements, 2, "ambos asientos se publican tras el commit")
}

// El origen valida contra quantity - reserved, igual que una salida manual.
func TestTransfer_RespetaReservasDelOrigen(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewTransferUseCase(st, &recordingPublisher{})
	resUC := stock.NewReservationUseCase(st)
	origen := seedItem(t, st, entity.TierRaw, "BOBINA", "100", "0")
	destino := seedItem(t, st, entity.TierSemi, "CORTE", "0", "0")

	_, err := resUC.Reserve(context.Background(), origen, "orden-1", d("80"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), stock.TransferInput{
		FromItemID: origen, ToItemID: destino, Quantity: d("30"), ActorID: "u1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "disponible = 100 - 80 = 20 < 30")

	// Nada quedó asentado en ninguno de los dos ítems.
	from, _ := st.Repos().Items.GetByID(origen)
	to, _ := st.Repos().Items.GetByID(destino)
	assert.True(t, from.Quantity.Equal(d("100")))
	assert.True(t, to.Quantity.IsZero())
	movs, _ := st.Repos().Movements.ListByItem(origen)
	assert.Empty(t, movs)
}

func TestTransfer_EntradaInvalida(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewTransferUseCase(st, &recordingPublisher{})
	item := seedItem(t, st, entity.TierRaw, "BOBINA", "10", "0")

	// Mismo ítem como origen y destino.
	_, err := uc.Execute(context.Background(), stock.TransferInput{
		FromItemID: item, ToItemID: item, Quantity: d("1"), ActorID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva.
	_, err = uc.Execute(context.Background(), stock.TransferInput{
		FromItemID: item, ToItemID: "otro", Quantity: d("0"), ActorID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_DestinoInexistente(t *testing.T) {
	st := memory.NewStore()
	uc := stock.NewTransferUseCase(st, &recordingPublisher{})
	origen := seedItem(t, st, entity.TierRaw, "BOBINA", "10", "0")

	_, err := uc.Execute(context.Background(), stock.TransferInput{
		FromItemID: origen, ToItemID: "no-existe", Quantity: d("5"), ActorID: "u1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Un traslado que deja el origen en el umbral abre su alerta crítica.
func TestTransfer_EvaluaUmbralCritico(t *testing.T) {
	st := memory.NewStore()
	pub := &recordingPublisher{}
	uc := stock.NewTransferUseCase(st, pub)
	origen := seedItem(t, st, entity.TierRaw, "BOBINA", "20", "10")
	destino := seedItem(t, st, entity.TierSemi, "CORTE", "0", "0")

	_, err := uc.Execute(context.Background(), stock.TransferInput{
		FromItemID: origen, ToItemID: destino, Quantity: d("12"), ActorID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, pub.opened, 1)
	assert.Equal(t, origen, pub.opened[0])
}
