// File: internal/usecase/resume_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/adapter"
	"carta-do-futuro/internal/domain/ports/repository"
)

// Compile-time check
var _ ResumeUseCase = (*resumeUC)(nil)

// ResumeUseCase carries a checkout intent across registration. A visitor who
// picks a plan before signing up receives a signed single-use token; after
// registration the client presents it once and, if the fresh profile still
// has no plan, checkout is re-initiated server-side. This replaces re-entry
// driven by query-string presence, which raced on repeated client effects.
type ResumeUseCase interface {
	// Issue mints a resume token for a catalog plan.
	Issue(ctx context.Context, planID string) (string, error)
	// Consume validates and burns a token, then re-initiates checkout for
	// the now-authenticated caller. A replayed token fails with
	// domain.ErrResumeConsumed.
	Consume(ctx context.Context, token string, caller adapter.AuthUser) (*model.CheckoutSession, error)
}

// ResumeStore pins token ids so each token is honored exactly once.
type ResumeStore interface {
	// ConsumeOnce records the id and reports whether this was the first use.
	ConsumeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

type resumeClaims struct {
	Plan string `json:"plan"`
	jwt.RegisteredClaims
}

type resumeUC struct {
	secret   []byte
	ttl      time.Duration
	store    ResumeStore
	profiles repository.ProfileRepository
	checkout CheckoutUseCase
	log      *zerolog.Logger
}

func NewResumeUseCase(secret string, ttl time.Duration, store ResumeStore, profiles repository.ProfileRepository, checkout CheckoutUseCase, log *zerolog.Logger) *resumeUC {
	return &resumeUC{secret: []byte(secret), ttl: ttl, store: store, profiles: profiles, checkout: checkout, log: log}
}

func (u *resumeUC) Issue(ctx context.Context, planID string) (string, error) {
	if _, err := model.PlanByID(planID); err != nil {
		return "", err
	}
	now := time.Now()
	claims := resumeClaims{
		Plan: planID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
}

func (u *resumeUC) Consume(ctx context.Context, token string, caller adapter.AuthUser) (*model.CheckoutSession, error) {
	if caller.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &resumeClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return u.secret, nil
	})
	if err != nil || !tkn.Valid || claims.ID == "" {
		return nil, domain.ErrInvalidArgument
	}

	first, err := u.store.ConsumeOnce(ctx, claims.ID, u.ttl)
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, domain.ErrResumeConsumed
	}

	// Resume only while the fresh profile still shows no plan; a profile
	// that already holds one means the purchase went through elsewhere.
	profile, err := u.profiles.FindByID(ctx, nil, caller.ID)
	if err != nil {
		return nil, err
	}
	if profile.PlanType != model.PlanTypeNone {
		u.log.Info().Str("user_id", caller.ID).Str("plan_type", string(profile.PlanType)).Msg("resume skipped, plan already granted")
		return nil, domain.ErrResumeConsumed
	}

	u.log.Info().Str("user_id", caller.ID).Str("plan", claims.Plan).Msg("resuming checkout after registration")
	return u.checkout.CreateCheckout(ctx, caller, claims.Plan)
}
