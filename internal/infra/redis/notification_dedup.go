package redis

import (
	"context"
	"fmt"
	"time"

	"carta-do-futuro/internal/usecase"
)

var _ usecase.NotificationDedup = (*NotificationDedup)(nil)

// NotificationDedup remembers reconciled gateway payment ids for a TTL so
// webhook redeliveries can be acknowledged without another store write.
type NotificationDedup struct {
	client Client
	ttl    time.Duration
}

func NewNotificationDedup(client Client, ttl time.Duration) *NotificationDedup {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &NotificationDedup{client: client, ttl: ttl}
}

func (d *NotificationDedup) MarkProcessed(ctx context.Context, paymentID string) (bool, error) {
	return d.client.SetNX(ctx, notificationKey(paymentID), "1", d.ttl)
}

func notificationKey(paymentID string) string {
	return fmt.Sprintf("mp_notification:%s", paymentID)
}
