// File: internal/usecase/letter_uc.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"carta-do-futuro/internal/domain"
	"carta-do-futuro/internal/domain/model"
	"carta-do-futuro/internal/domain/ports/adapter"
	"carta-do-futuro/internal/domain/ports/repository"
	"carta-do-futuro/internal/infra/metrics"
)

// Compile-time check
var _ LetterUseCase = (*letterUC)(nil)

// MediaUpload is an attachment streamed alongside a letter.
type MediaUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

type LetterUseCase interface {
	// Create stores a letter for future delivery. Requires an active
	// entitlement on the caller's profile.
	Create(ctx context.Context, userID, title, body string, scheduled time.Time, media *MediaUpload) (*model.Letter, error)
	Get(ctx context.Context, userID, id string) (*model.Letter, error)
	List(ctx context.Context, userID string, offset, limit int) ([]*model.Letter, int, error)
	Delete(ctx context.Context, userID, id string) error
	// MediaURL returns a time-limited download URL for a letter's media.
	MediaURL(ctx context.Context, userID, id string) (string, error)
}

type letterUC struct {
	letters  repository.LetterRepository
	profiles repository.ProfileRepository
	media    adapter.MediaStore // may be nil when storage is not configured
	log      *zerolog.Logger
}

func NewLetterUseCase(letters repository.LetterRepository, profiles repository.ProfileRepository, media adapter.MediaStore, log *zerolog.Logger) *letterUC {
	return &letterUC{letters: letters, profiles: profiles, media: media, log: log}
}

func (u *letterUC) Create(ctx context.Context, userID, title, body string, scheduled time.Time, media *MediaUpload) (*model.Letter, error) {
	profile, err := u.profiles.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if !profile.HasActiveAccess(time.Now()) {
		metrics.IncLetter("create", "denied")
		return nil, domain.ErrNoActivePlan
	}

	letter, err := model.NewLetter(ulid.Make().String(), userID, title, body, scheduled)
	if err != nil {
		return nil, err
	}

	if media != nil {
		if u.media == nil {
			return nil, fmt.Errorf("%w: media storage not configured", domain.ErrInvalidArgument)
		}
		key, err := u.media.Put(ctx, mediaKey(userID, letter.ID), media.ContentType, media.Body)
		if err != nil {
			metrics.IncLetter("create", "error")
			return nil, fmt.Errorf("upload media: %w", err)
		}
		letter.MediaKey = &key
		metrics.AddLetterMediaBytes(media.Size)
	}

	if err := u.letters.Save(ctx, nil, letter); err != nil {
		metrics.IncLetter("create", "error")
		// Orphaned media is cleaned up best-effort; the object is keyed by
		// letter id and unreachable without the row anyway.
		if letter.MediaKey != nil && u.media != nil {
			_ = u.media.Delete(ctx, *letter.MediaKey)
		}
		return nil, err
	}

	metrics.IncLetter("create", "ok")
	u.log.Info().Str("letter_id", letter.ID).Str("user_id", userID).Time("scheduled", letter.ScheduledDate).Msg("letter stored")
	return letter, nil
}

func (u *letterUC) Get(ctx context.Context, userID, id string) (*model.Letter, error) {
	letter, err := u.letters.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if letter.UserID != userID {
		// Ownership mismatch reads the same as absence.
		return nil, domain.ErrNotFound
	}
	return letter, nil
}

func (u *letterUC) List(ctx context.Context, userID string, offset, limit int) ([]*model.Letter, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	letters, err := u.letters.ListByUserID(ctx, nil, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.letters.CountByUserID(ctx, nil, userID)
	if err != nil {
		return nil, 0, err
	}
	return letters, total, nil
}

func (u *letterUC) Delete(ctx context.Context, userID, id string) error {
	letter, err := u.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.letters.Delete(ctx, nil, id, userID); err != nil {
		metrics.IncLetter("delete", "error")
		return err
	}
	if letter.MediaKey != nil && u.media != nil {
		if err := u.media.Delete(ctx, *letter.MediaKey); err != nil {
			u.log.Warn().Err(err).Str("key", *letter.MediaKey).Msg("media delete failed")
		}
	}
	metrics.IncLetter("delete", "ok")
	return nil
}

func (u *letterUC) MediaURL(ctx context.Context, userID, id string) (string, error) {
	letter, err := u.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if letter.MediaKey == nil || u.media == nil {
		return "", domain.ErrNotFound
	}
	return u.media.PresignGet(ctx, *letter.MediaKey, 15*time.Minute)
}

func mediaKey(userID, letterID string) string {
	return fmt.Sprintf("letters/%s/%s", userID, letterID)
}
