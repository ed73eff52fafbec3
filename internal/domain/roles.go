package domain

import "time"

// Roles que llegan en el token del colaborador de autenticación (externo al núcleo).
const (
	RoleManager  = "manager"
	RolePlanner  = "planner"
	RoleOperator = "operator"
)

// OperatorRollbackWindow es la ventana en la que un operario puede revertir
// sus propios reportes de producción. Fuera de la ventana solo manager/planner.
const OperatorRollbackWindow = 5 * time.Minute

// CanManagePlans indica si el rol puede revertir/cancelar sin restricciones.
func CanManagePlans(role string) bool {
	return role == RoleManager || role == RolePlanner
}
