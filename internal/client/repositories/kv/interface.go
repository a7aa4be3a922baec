package kv

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Update reads key, passes the current value (nil if absent) to fn and
	// stores what fn returns, atomically. A nil result deletes the key.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}
