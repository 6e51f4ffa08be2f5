package photostore

import (
	"context"
	"io"
)

// PhotoStore persists uploaded photo files and serves them back by key.
//
// Retrieve and Thumbnail report a missing or unreadable photo with
// domain.ErrStorageRead; callers treat that as "no photo" rather than a
// fatal condition. Delete is idempotent: deleting an absent key is not an
// error.
type PhotoStore interface {
	Store(ctx context.Context, originalName string, r io.Reader) (key string, err error)
	Retrieve(ctx context.Context, key string) (io.ReadCloser, string, error)
	Thumbnail(ctx context.Context, key string, maxWidth, maxHeight int) (string, error)
	Delete(ctx context.Context, key string) error
}
