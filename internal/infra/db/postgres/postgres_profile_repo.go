package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, email, plan_type, access_expires_at, purchased_at, mercadopago_payer_id, created_at, updated_at`

func (r *ProfileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	const q = `
INSERT INTO profiles (
  id, email, plan_type, access_expires_at, purchased_at, mercadopago_payer_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8
) ON CONFLICT (id) DO UPDATE SET
  email=$2, plan_type=$3, access_expires_at=$4, purchased_at=$5, mercadopago_payer_id=$6, updated_at=$8;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Email, p.PlanType, p.AccessExpiresAt, p.PurchasedAt, p.PayerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument {
			return err
		}
		return domain.ErrPersistence
	}
	return nil
}

func (r *ProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var p model.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.PlanType, &p.AccessExpiresAt, &p.PurchasedAt, &p.PayerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, domain.ErrPersistence
	}
	return &p, nil
}

// UpdateEntitlement overwrites the entitlement fields of the matched row.
// The write recomputes absolute values rather than incrementing, so a
// redelivered notification with a stable approval date is a no-op.
func (r *ProfileRepo) UpdateEntitlement(ctx context.Context, tx repository.Tx, userID string, e model.Entitlement) error {
	const q = `
UPDATE profiles SET
  plan_type=$2,
  access_expires_at=$3,
  purchased_at=$4,
  mercadopago_payer_id=COALESCE($5, mercadopago_payer_id),
  updated_at=NOW()
WHERE id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q, userID, e.PlanType, e.AccessExpiresAt, e.PurchasedAt, e.PayerID)
	if err != nil {
		if err == domain.ErrInvalidArgument {
			return err
		}
		return domain.ErrPersistence
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepo) CountProfiles(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM profiles;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrPersistence
	}
	return n, nil
}
