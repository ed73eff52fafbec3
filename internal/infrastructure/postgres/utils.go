package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que los repositorios traducen a errores de dominio.
const (
	codeUniqueViolation = "23505"
)

// isUniqueViolation verifica si un error es una violación de constraint único.
// Lo disparan el código duplicado de ítem, la arista BOM repetida y el índice
// parcial de alerta abierta.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
