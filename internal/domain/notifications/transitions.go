package notifications

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadState: la transición pedida no está permitida desde el estado actual.
var ErrBadState = errors.New("invalid notification state transition")

// CanTransition codifica PENDIENTE -> ENVIADA -> LEIDA, con APLICADA alcanzable
// desde cualquier estado activo y sin salida.
func CanTransition(from, to State) bool {
	switch from {
	case StateAplicada:
		return false
	case StatePendiente:
		return to == StateEnviada || to == StateLeida || to == StateAplicada
	case StateEnviada:
		return to == StateLeida || to == StateAplicada
	case StateLeida:
		return to == StateAplicada
	}
	return false
}

// MarkSent pasa a ENVIADA. Repetir sobre ENVIADA no cambia nada.
func MarkSent(n Notification, now time.Time) (Notification, bool, error) {
	if n.State == StateEnviada {
		return n, false, nil
	}
	if n.State != StatePendiente {
		return n, false, fmt.Errorf("%w: %s -> %s", ErrBadState, n.State, StateEnviada)
	}
	n.State = StateEnviada
	n.SentAt = &now
	n.UpdatedAt = now
	return n, true, nil
}

// MarkRead pasa a LEIDA. Repetir sobre LEIDA no cambia nada.
func MarkRead(n Notification, now time.Time) (Notification, bool, error) {
	if n.State == StateLeida {
		return n, false, nil
	}
	if !CanTransition(n.State, StateLeida) {
		return n, false, fmt.Errorf("%w: %s -> %s", ErrBadState, n.State, StateLeida)
	}
	n.State = StateLeida
	n.ReadAt = &now
	n.UpdatedAt = now
	return n, true, nil
}

func markApplied(n Notification, now time.Time) Notification {
	n.State = StateAplicada
	n.AppliedAt = &now
	n.UpdatedAt = now
	return n
}
