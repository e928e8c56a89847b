package auth

import "context"

// Claims del usuario autenticado. UserID identifica al tutor o al agente de salud.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}

type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// VerifierFunc adapta una función a AuthVerifier.
type VerifierFunc func(ctx context.Context, token string) (Claims, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Claims, error) {
	return f(ctx, token)
}
