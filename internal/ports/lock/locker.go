package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired: el lock sigue tomado por otro proceso al vencer el contexto o los reintentos.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializa trabajo por clave (p.ej. reconciliación por niño).
// release es idempotente y nunca libera un lock ajeno.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
