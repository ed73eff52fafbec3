package dto

// ErrorResponse cuerpo de error HTTP. Code es un identificador estable para
// clientes (VALIDATION, NOT_FOUND, INSUFFICIENT_STOCK, ...); Message es texto
// para humanos y puede cambiar.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
