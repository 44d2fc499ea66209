package repository

import (
	"context"

	"carta-do-futuro/internal/domain/model"
)

// -----------------------------
// Profiles
// -----------------------------

type ProfileRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Profile) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Profile, error)
	// UpdateEntitlement applies a reconciled entitlement to the profile
	// matched by userID. Returns domain.ErrProfileNotFound when no row
	// matches and domain.ErrPersistence on store-level failure.
	UpdateEntitlement(ctx context.Context, tx Tx, userID string, e model.Entitlement) error
	CountProfiles(ctx context.Context, tx Tx) (int, error)
}
