package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// DriftEpsilon es la tolerancia al comparar existencia almacenada contra la
// derivada del libro (coincide con la escala NUMERIC(…,4) de las cantidades).
var DriftEpsilon = decimal.RequireFromString("0.0001")

// ChainViolation describe una inconsistencia interna de la cadena before/after
// en la historia ordenada de movimientos de un ítem.
type ChainViolation struct {
	EntryID string
	Reason  string
}

func (v ChainViolation) String() string {
	return fmt.Sprintf("%s: %s", v.EntryID, v.Reason)
}

// Replay reproduce la historia ordenada de movimientos de un ítem sumando los
// deltas con signo y validando la cadena before/after. Los ítems nacen con
// existencia cero: todo stock inicial entra como movimiento.
// Devuelve la existencia derivada y las violaciones de cadena encontradas.
func Replay(entries []*entity.MovementEntry) (decimal.Decimal, []ChainViolation) {
	var violations []ChainViolation
	expected := decimal.Zero
	for i, e := range entries {
		if !e.AfterQuantity.Equal(e.BeforeQuantity.Add(e.Quantity)) {
			violations = append(violations, ChainViolation{
				EntryID: e.ID,
				Reason: fmt.Sprintf("after=%s != before=%s + delta=%s",
					e.AfterQuantity.String(), e.BeforeQuantity.String(), e.Quantity.String()),
			})
		}
		if i > 0 && !e.BeforeQuantity.Equal(entries[i-1].AfterQuantity) {
			violations = append(violations, ChainViolation{
				EntryID: e.ID,
				Reason: fmt.Sprintf("hueco en la cadena: before=%s != after previo=%s",
					e.BeforeQuantity.String(), entries[i-1].AfterQuantity.String()),
			})
		}
		expected = expected.Add(e.Quantity)
	}
	return expected, violations
}

// WithinEpsilon indica si la deriva entre dos cantidades cae dentro de la tolerancia.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(DriftEpsilon)
}
