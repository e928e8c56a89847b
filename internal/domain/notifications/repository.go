package notifications

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("notification not found")
	// ErrConflict: ya existe otra notificación activa para la misma dosis.
	ErrConflict = errors.New("active notification already exists")
)

type Repository interface {
	ListByChild(ctx context.Context, childID string) ([]Notification, error)
	GetByID(ctx context.Context, id string) (Notification, error)

	// Upsert inserta o reemplaza por ID, todo o nada, en el orden recibido.
	// Devuelve ErrConflict si quedarían dos activas para la misma dosis.
	Upsert(ctx context.Context, items []Notification) error

	// PurgeApplied borra las APLICADA con AppliedAt anterior a before.
	PurgeApplied(ctx context.Context, before time.Time) (int, error)
}
