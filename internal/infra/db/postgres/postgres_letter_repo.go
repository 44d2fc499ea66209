package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/repository"
)

var _ repository.LetterRepository = (*LetterRepo)(nil)

type LetterRepo struct {
	pool *pgxpool.Pool
}

func NewLetterRepo(pool *pgxpool.Pool) *LetterRepo {
	return &LetterRepo{pool: pool}
}

const letterColumns = `id, user_id, title, body, media_key, scheduled_date, sent_date, status, created_at, updated_at`

func (r *LetterRepo) Save(ctx context.Context, tx repository.Tx, l *model.Letter) error {
	const q = `
INSERT INTO letters (
  id, user_id, title, body, media_key, scheduled_date, sent_date, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  title=$3, body=$4, media_key=$5, scheduled_date=$6, sent_date=$7, status=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, l.ID, l.UserID, l.Title, l.Body, l.MediaKey, l.ScheduledDate, l.SentDate, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument {
			return err
		}
		return domain.ErrPersistence
	}
	return nil
}

func (r *LetterRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Letter, error) {
	const q = `SELECT ` + letterColumns + ` FROM letters WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var l model.Letter
	if err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Body, &l.MediaKey, &l.ScheduledDate, &l.SentDate, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrPersistence
	}
	return &l, nil
}

func (r *LetterRepo) ListByUserID(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Letter, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + letterColumns + ` FROM letters WHERE user_id=$1 ORDER BY scheduled_date ASC OFFSET $2 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Letter
	for rows.Next() {
		var l model.Letter
		if err := rows.Scan(&l.ID, &l.UserID, &l.Title, &l.Body, &l.MediaKey, &l.ScheduledDate, &l.SentDate, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, domain.ErrPersistence
		}
		out = append(out, &l)
	}
	if rows.Err() != nil {
		return nil, domain.ErrPersistence
	}
	return out, nil
}

func (r *LetterRepo) Delete(ctx context.Context, tx repository.Tx, id, userID string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM letters WHERE id=$1 AND user_id=$2;`, id, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument {
			return err
		}
		return domain.ErrPersistence
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LetterRepo) CountByUserID(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM letters WHERE user_id=$1;`, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrPersistence
	}
	return n, nil
}
