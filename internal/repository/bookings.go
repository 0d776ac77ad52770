package repository

import (
	"context"
	"fmt"
	"time"

	"labcare/internal/models"
	"labcare/internal/store"
)

type BookingRepository struct {
	items collection[models.Booking]
	ids   *IDGenerator
	now   func() time.Time
}

func NewBookingRepository(s *store.RecordStore, ids *IDGenerator, now func() time.Time) *BookingRepository {
	if now == nil {
		now = time.Now
	}
	return &BookingRepository{
		items: collection[models.Booking]{store: s, key: models.KeyBookings},
		ids:   ids,
		now:   now,
	}
}

// List returns bookings in the order they were appended.
func (r *BookingRepository) List(ctx context.Context) ([]models.Booking, error) {
	return r.items.list(ctx)
}

// Append assigns an id and creation time, then stores the booking at the end of the list.
func (r *BookingRepository) Append(ctx context.Context, booking models.Booking) (models.Booking, error) {
	booking.ID = r.ids.Next(models.BookingIDPrefix)
	booking.CreatedAt = r.now().UTC()
	if err := r.items.append(ctx, booking); err != nil {
		return models.Booking{}, fmt.Errorf("append booking: %w", err)
	}
	return booking, nil
}
