package repository

import "context"

// StorageRepository is per-visitor key/value storage; the hosted plan history
// keeps each visitor's Plan list under one key.
type StorageRepository interface {
	Get(ctx context.Context, owner, key string) (string, bool, error)
	Set(ctx context.Context, owner, key, value string) error
	Delete(ctx context.Context, owner, key string) error
}
