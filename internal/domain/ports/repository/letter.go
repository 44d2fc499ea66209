package repository

import (
	"context"

	"carta-do-futuro/internal/domain/model"
)

// -----------------------------
// Letters
// -----------------------------

type LetterRepository interface {
	Save(ctx context.Context, tx Tx, l *model.Letter) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Letter, error)
	ListByUserID(ctx context.Context, tx Tx, userID string, offset, limit int) ([]*model.Letter, error)
	Delete(ctx context.Context, tx Tx, id, userID string) error
	CountByUserID(ctx context.Context, tx Tx, userID string) (int, error)
}
