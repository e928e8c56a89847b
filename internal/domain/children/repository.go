package children

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("child not found")

type Repository interface {
	Create(ctx context.Context, c Child) error
	GetByID(ctx context.Context, id string) (Child, error)
	ListByGuardian(ctx context.Context, guardianUserID string) ([]Child, error)

	// ListIDs devuelve todos los IDs, usado por el barrido periódico.
	ListIDs(ctx context.Context) ([]string, error)
}
