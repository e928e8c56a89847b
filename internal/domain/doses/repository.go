package doses

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("dose not found")
	// ErrConflict: ya existe un registro para (niño, vacuna, dosis).
	ErrConflict = errors.New("dose already recorded")
)

type Repository interface {
	Create(ctx context.Context, d Dose) error
	ListByChild(ctx context.Context, childID string) ([]Dose, error)
}
