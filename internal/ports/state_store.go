package ports

import "context"

// Key-value persistence for JSON-serializable records.
type StateStore interface {
	// Get decodes the value for key into dst and reports whether it existed.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
