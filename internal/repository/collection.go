package repository

import (
	"context"

	"labcare/internal/store"
)

// collection is an append-only typed list persisted under one key.
type collection[T any] struct {
	store *store.RecordStore
	key   string
}

// list recovers from undecodable data by returning an empty list; the store
// has already logged the warning.
func (c collection[T]) list(ctx context.Context) ([]T, error) {
	items, err := store.ReadAll[T](ctx, c.store, c.key)
	if err != nil && !store.IsDecodeError(err) {
		return nil, err
	}
	return items, nil
}

func (c collection[T]) append(ctx context.Context, item T) error {
	return store.Append(ctx, c.store, c.key, item)
}
