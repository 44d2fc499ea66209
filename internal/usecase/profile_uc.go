// File: internal/usecase/profile_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/adapter"
	"carta-do-futuro/internal/domain/ports/repository"
)

// Compile-time check
var _ ProfileUseCase = (*profileUC)(nil)

type ProfileUseCase interface {
	// Register creates the caller's profile row with no plan. Calling it
	// for an existing profile returns the current row untouched.
	Register(ctx context.Context, caller adapter.AuthUser) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
}

type profileUC struct {
	profiles repository.ProfileRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewProfileUseCase(profiles repository.ProfileRepository, tm repository.TransactionManager, log *zerolog.Logger) *profileUC {
	return &profileUC{profiles: profiles, tm: tm, log: log}
}

func (u *profileUC) Register(ctx context.Context, caller adapter.AuthUser) (*model.Profile, error) {
	var out *model.Profile
	// Check-then-insert runs in one transaction so concurrent first requests
	// from the same fresh session cannot race.
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.profiles.FindByID(ctx, tx, caller.ID)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return err
		}

		profile, err := model.NewProfile(caller.ID, caller.Email)
		if err != nil {
			return err
		}
		if err := u.profiles.Save(ctx, tx, profile); err != nil {
			return err
		}
		u.log.Info().Str("user_id", profile.ID).Msg("profile registered")
		out = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *profileUC) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return u.profiles.FindByID(ctx, nil, userID)
}
