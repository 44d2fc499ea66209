package model

import (
	"strings"
	"time"

	"carta-do-futuro/internal/domain"
)

// LetterStatus is the three-valued delivery state of a letter. Delivery
// itself is executed by an external scheduled job; this service only
// records the state.
type LetterStatus string

const (
	LetterStatusPending LetterStatus = "pending"
	LetterStatusSent    LetterStatus = "sent"
	LetterStatusFailed  LetterStatus = "failed"
)

// Letter is a message a user writes to their future self.
type Letter struct {
	ID            string
	UserID        string
	Title         string
	Body          string
	MediaKey      *string // object key in the media store, if any
	ScheduledDate time.Time
	SentDate      *time.Time
	Status        LetterStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewLetter(id, userID, title, body string, scheduled time.Time) (*Letter, error) {
	if id == "" || userID == "" || strings.TrimSpace(body) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !scheduled.After(time.Now()) {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Letter{
		ID:            id,
		UserID:        userID,
		Title:         title,
		Body:          body,
		ScheduledDate: scheduled,
		Status:        LetterStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (l *Letter) IsZero() bool { return l == nil || l.ID == "" }
