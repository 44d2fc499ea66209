// File: internal/infra/adapters/auth/supabase_verifier.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carta-do-futuro/internal/config"
	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/ports/adapter"
)

var _ adapter.TokenVerifier = (*SupabaseVerifier)(nil)

// SupabaseVerifier validates auth-provider access tokens. With a configured
// JWT secret, tokens are verified locally (HS256, the provider's signing
// scheme); otherwise the provider's user endpoint is the authority.
type SupabaseVerifier struct {
	providerURL string
	anonKey     string
	secret      []byte
	client      *http.Client
}

func NewSupabaseVerifier(cfg config.AuthConfig) (*SupabaseVerifier, error) {
	if cfg.JWTSecret == "" && (cfg.ProviderURL == "" || cfg.AnonKey == "") {
		return nil, errors.New("auth verifier needs jwt_secret or provider_url + anon_key")
	}
	return &SupabaseVerifier{
		providerURL: strings.TrimRight(cfg.ProviderURL, "/"),
		anonKey:     cfg.AnonKey,
		secret:      []byte(cfg.JWTSecret),
		client:      &http.Client{Timeout: 5 * time.Second},
	}, nil
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *SupabaseVerifier) VerifyToken(ctx context.Context, token string) (*adapter.AuthUser, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	if len(v.secret) > 0 {
		return v.verifyLocal(token)
	}
	return v.verifyRemote(ctx, token)
}

func (v *SupabaseVerifier) verifyLocal(token string) (*adapter.AuthUser, error) {
	claims := &accessClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &adapter.AuthUser{ID: claims.Subject, Email: claims.Email}, nil
}

func (v *SupabaseVerifier) verifyRemote(ctx context.Context, token string) (*adapter.AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.providerURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", v.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUnauthenticated
	}

	var out struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &adapter.AuthUser{ID: out.ID, Email: out.Email}, nil
}
