package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(id, before, delta, after string) *entity.MovementEntry {
	return &entity.MovementEntry{
		ID:             id,
		BeforeQuantity: d(before),
		Quantity:       d(delta),
		AfterQuantity:  d(after),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Replay — reproducción de la historia del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestReplay_HistoriaConsistente(t *testing.T) {
	entries := []*entity.MovementEntry{
		entry("m1", "0", "100", "100"),
		entry("m2", "100", "-30.5", "69.5"),
		entry("m3", "69.5", "10", "79.5"),
	}
	total, violations := Replay(entries)
	assert.True(t, total.Equal(d("79.5")), "la suma de deltas debe dar 79.5")
	assert.Empty(t, violations, "una historia consistente no tiene violaciones")
}

func TestReplay_HistoriaVacia(t *testing.T) {
	total, violations := Replay(nil)
	assert.True(t, total.IsZero(), "los ítems nacen con existencia cero")
	assert.Empty(t, violations)
}

func TestReplay_DetectaAsientoRoto(t *testing.T) {
	// after != before + delta en m2
	entries := []*entity.MovementEntry{
		entry("m1", "0", "50", "50"),
		entry("m2", "50", "-10", "45"),
	}
	_, violations := Replay(entries)
	assert.Len(t, violations, 1)
	assert.Equal(t, "m2", violations[0].EntryID)
}

func TestReplay_DetectaHuecoEnCadena(t *testing.T) {
	// before de m2 no coincide con after de m1
	entries := []*entity.MovementEntry{
		entry("m1", "0", "50", "50"),
		entry("m2", "60", "-10", "50"),
	}
	_, violations := Replay(entries)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0].Reason, "hueco en la cadena")
}

func TestWithinEpsilon(t *testing.T) {
	assert.True(t, WithinEpsilon(d("10.00005"), d("10")), "deriva menor al epsilon se tolera")
	assert.True(t, WithinEpsilon(d("10"), d("10.0001")), "deriva igual al epsilon se tolera")
	assert.False(t, WithinEpsilon(d("10"), d("10.001")), "deriva mayor al epsilon se reporta")
}

// ──────────────────────────────────────────────────────────────────────────────
// AverageCost — costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestAverageCost_PromedioPonderado(t *testing.T) {
	// 10 unidades a 5.00 + 10 unidades a 7.00 = promedio 6.00
	got := AverageCost(d("10"), d("5"), d("10"), d("7"))
	assert.True(t, got.Equal(d("6")), "esperado 6, obtenido %s", got)
}

func TestAverageCost_StockCero(t *testing.T) {
	got := AverageCost(decimal.Zero, decimal.Zero, d("4"), d("2.5"))
	assert.True(t, got.Equal(d("2.5")), "con stock cero el costo es el de la entrada")
}

func TestAverageCost_SinCantidades(t *testing.T) {
	got := AverageCost(decimal.Zero, decimal.Zero, decimal.Zero, d("9"))
	assert.True(t, got.IsZero(), "sin cantidades no hay promedio que calcular")
}
