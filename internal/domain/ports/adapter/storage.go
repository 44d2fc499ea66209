package adapter

import (
	"context"
	"io"
	"time"
)

// MediaStore holds letter attachments in object storage.
type MediaStore interface {
	// Put uploads an object and returns the stored key.
	Put(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
	// PresignGet returns a time-limited download URL for an object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Delete removes an object; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
