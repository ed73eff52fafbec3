package entity

import "time"

// CriticalNotification es el estado de alerta de stock crítico de un ítem.
// A lo sumo una alerta abierta por ítem en cualquier instante: es estado,
// no una bitácora de cada cruce del umbral.
type CriticalNotification struct {
	ID       string
	ItemID   string
	OpenedAt time.Time
	ClosedAt *time.Time // nil mientras la alerta siga abierta
}
