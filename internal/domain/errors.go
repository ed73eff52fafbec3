package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrBOMCycle            = errors.New("la arista introduciría un ciclo en el BOM")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia: reintentar la operación")
	ErrPlanCompleted       = errors.New("el plan está completado: el trabajo completado es inmutable")
	ErrLogVoided           = errors.New("el reporte de producción ya fue anulado")
)

// ShortageLine detalla un material con disponibilidad insuficiente para una publicación.
type ShortageLine struct {
	ItemID    string
	Code      string
	Required  decimal.Decimal
	Available decimal.Decimal
	Shortage  decimal.Decimal // Required - Available
}

// InsufficientStockError reporta TODAS las líneas en falta de una publicación,
// no solo la primera encontrada. La publicación entera se aborta sin consumir nada.
type InsufficientStockError struct {
	Lines []ShortageLine
}

func (e *InsufficientStockError) Error() string {
	var b strings.Builder
	b.WriteString("stock insuficiente:")
	for _, l := range e.Lines {
		fmt.Fprintf(&b, " [%s requiere=%s disponible=%s falta=%s]",
			l.Code, l.Required.String(), l.Available.String(), l.Shortage.String())
	}
	return b.String()
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConcurrencyConflictError indica que la verificación optimista sobre before_quantity
// falló: otro escritor modificó la fila. El núcleo nunca reintenta por el caller.
type ConcurrencyConflictError struct {
	ItemID string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia sobre el ítem %s", e.ItemID)
}

func (e *ConcurrencyConflictError) Unwrap() error { return ErrConcurrencyConflict }

// ConsistencyDriftError reporta una deriva entre la existencia almacenada de un
// ítem y la derivada de reproducir su historia de movimientos. Informativo:
// nunca se auto-aplica una corrección salvo que se pida el modo reparación.
type ConsistencyDriftError struct {
	ItemID   string
	Code     string
	Stored   decimal.Decimal
	Replayed decimal.Decimal
	Drift    decimal.Decimal // Stored - Replayed
}

func (e *ConsistencyDriftError) Error() string {
	return fmt.Sprintf("deriva de consistencia en %s: almacenado=%s reproducido=%s deriva=%s",
		e.Code, e.Stored.String(), e.Replayed.String(), e.Drift.String())
}
