package notifications

import (
	"time"

	"child-immunization-history/internal/domain/schedule"
)

// Type del aviso derivado del estado de la dosis.
// @Enum RECORDATORIO, PROXIMA, VENCIDA
type Type string

const (
	TypeRecordatorio Type = "RECORDATORIO"
	TypeProxima      Type = "PROXIMA"
	TypeVencida      Type = "VENCIDA"
)

// State del ciclo de vida de la notificación.
// @Enum PENDIENTE, ENVIADA, LEIDA, APLICADA
type State string

const (
	StatePendiente State = "PENDIENTE"
	StateEnviada   State = "ENVIADA"
	StateLeida     State = "LEIDA"
	StateAplicada  State = "APLICADA" // terminal
)

// Notification es un aviso persistido para una dosis de un niño.
// Por (niño, vacuna, dosis) existe a lo sumo una notificación activa (no APLICADA).
type Notification struct {
	ID      string
	ChildID string

	VaccineID  string
	DoseNumber int

	Type  Type
	State State

	ScheduledDate time.Time
	Message       string

	CreatedAt time.Time
	UpdatedAt time.Time
	SentAt    *time.Time
	ReadAt    *time.Time
	AppliedAt *time.Time
}

func (n Notification) Active() bool {
	return n.State != StateAplicada
}

func (n Notification) Key() schedule.Key {
	return schedule.Key{VaccineID: n.VaccineID, DoseNumber: n.DoseNumber}
}
