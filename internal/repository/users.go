package repository

import (
	"context"

	"labcare/internal/models"
	"labcare/internal/store"
)

const (
	authTrue  = "true"
	authFalse = "false"
)

// UserRepository persists the single user record and the authenticated flag.
type UserRepository struct {
	store *store.RecordStore
}

func NewUserRepository(s *store.RecordStore) *UserRepository {
	return &UserRepository{store: s}
}

// GetUser returns nil when no user is stored or the stored record is unreadable.
func (r *UserRepository) GetUser(ctx context.Context) (*models.User, error) {
	var user models.User
	found, err := r.store.ReadValue(ctx, models.KeyUser, &user)
	if err != nil {
		if store.IsDecodeError(err) {
			return nil, nil
		}
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepository) SaveUser(ctx context.Context, user models.User) error {
	return r.store.WriteValue(ctx, models.KeyUser, user)
}

func (r *UserRepository) IsAuthenticated(ctx context.Context) (bool, error) {
	raw, _, err := r.store.ReadRaw(ctx, models.KeyAuth)
	if err != nil {
		return false, err
	}
	return raw == authTrue, nil
}

func (r *UserRepository) SetAuthenticated(ctx context.Context, authenticated bool) error {
	value := authFalse
	if authenticated {
		value = authTrue
	}
	return r.store.WriteRaw(ctx, models.KeyAuth, value)
}
