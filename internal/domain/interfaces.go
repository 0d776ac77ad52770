package domain

import (
	"context"

	"labcare/internal/models"
)

// KeyValueStore is the durable string store every collection is persisted in.
// Get reports found=false for an absent key without an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type BookingRepository interface {
	List(ctx context.Context) ([]models.Booking, error)
	Append(ctx context.Context, booking models.Booking) (models.Booking, error)
}

type ReportRepository interface {
	List(ctx context.Context) ([]models.Report, error)
	Append(ctx context.Context, report models.Report) (models.Report, error)
	EnsureSeeded(ctx context.Context) (bool, error)
}

type FeedbackRepository interface {
	List(ctx context.Context) ([]models.Feedback, error)
	Append(ctx context.Context, feedback models.Feedback) (models.Feedback, error)
}

// UserRepository persists the single user record and the authenticated flag.
type UserRepository interface {
	GetUser(ctx context.Context) (*models.User, error)
	SaveUser(ctx context.Context, user models.User) error
	IsAuthenticated(ctx context.Context) (bool, error)
	SetAuthenticated(ctx context.Context, authenticated bool) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueBooking(ctx context.Context, booking models.Booking) error
}

// Authenticator is the session capability consumed by write paths.
type Authenticator interface {
	IsAuthenticated() bool
	CurrentUser() (models.User, bool)
}
