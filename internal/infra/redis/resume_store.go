package redis

import (
	"context"
	"fmt"
	"time"

	"carta-do-futuro/internal/usecase"
)

var _ usecase.ResumeStore = (*ResumeStore)(nil)

// ResumeStore pins resume-token ids so each checkout resume token is
// honored exactly once even when the client fires the resume call twice.
type ResumeStore struct {
	client Client
}

func NewResumeStore(client Client) *ResumeStore {
	return &ResumeStore{client: client}
}

func (s *ResumeStore) ConsumeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return s.client.SetNX(ctx, resumeKey(jti), "1", ttl)
}

func resumeKey(jti string) string {
	return fmt.Sprintf("checkout_resume:%s", jti)
}
