package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process memory. Nothing survives a restart.
type MemoryStore struct {
	values sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (r *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := r.values.Load(key)
	if !ok {
		return "", false, nil
	}
	return val.(string), true, nil
}

func (r *MemoryStore) Set(ctx context.Context, key, value string) error {
	r.values.Store(key, value)
	return nil
}

func (r *MemoryStore) Delete(ctx context.Context, key string) error {
	r.values.Delete(key)
	return nil
}
