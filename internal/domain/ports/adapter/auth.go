package adapter

import "context"

// AuthUser is the authenticated caller as reported by the auth provider.
type AuthUser struct {
	ID    string // provider subject identifier; matches Profile.ID
	Email string
}

// TokenVerifier validates a bearer identity token and resolves the caller.
// Implementations return domain.ErrUnauthenticated for any invalid,
// expired, or unverifiable token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*AuthUser, error)
}
