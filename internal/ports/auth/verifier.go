package auth

import "context"

// TokenVerifier verifica un token y devuelve claims o error.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite un token firmado para los claims dados.
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
}
