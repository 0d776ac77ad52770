package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"labcare/internal/events"
	"labcare/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRequest() BookingRequest {
	return BookingRequest{
		FullName:         "Kamal Silva",
		ContactNumber:    "0771234567",
		Email:            "kamal@example.com",
		TestType:         models.TestLipidProfile,
		PreferredDate:    "2026-11-02",
		PreferredTime:    "09:30",
		CollectionMethod: models.CollectionHome,
		Address:          "12 Galle Rd, Colombo",
		Notes:            "fasting",
	}
}

func TestBookingService(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("Unauthenticated", func(t *testing.T) {
		repo := new(mockBookingRepo)
		svc := NewBookingService(repo, fakeAuth{}, nil, nil, nil, &logger)

		_, err := svc.Submit(ctx, validRequest())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("NilAuthenticator", func(t *testing.T) {
		repo := new(mockBookingRepo)
		svc := NewBookingService(repo, nil, nil, nil, nil, &logger)

		_, err := svc.Submit(ctx, validRequest())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(mockBookingRepo)
		bus := new(mockEventBus)
		worker := new(mockWorker)
		svc := NewBookingService(repo, fakeAuth{authed: true}, models.NewCatalog(nil), bus, worker, &logger)

		stored := models.Booking{}
		repo.On("Append", ctx, mock.MatchedBy(func(b models.Booking) bool {
			stored = b
			return b.Price == 2500 && b.Status == models.StatusScheduled && b.ID == ""
		})).Return(func(_ context.Context, b models.Booking) models.Booking {
			b.ID = "LBC-1"
			return b
		}, nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.AnythingOfType("events.BookingPayload")).Return(nil).Once()
		worker.On("EnqueueBooking", ctx, mock.MatchedBy(func(b models.Booking) bool { return b.ID == "LBC-1" })).Return(nil).Once()

		created, err := svc.Submit(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "LBC-1", created.ID)
		assert.Equal(t, int64(2500), created.Price)
		assert.Equal(t, "12 Galle Rd, Colombo", stored.Address)

		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
	})

	t.Run("ClientPriceIgnoredUnknownTestIsFree", func(t *testing.T) {
		repo := new(mockBookingRepo)
		svc := NewBookingService(repo, fakeAuth{authed: true}, nil, nil, nil, &logger)

		req := validRequest()
		req.TestType = "Vitamin D"
		repo.On("Append", ctx, mock.MatchedBy(func(b models.Booking) bool { return b.Price == 0 })).
			Return(models.Booking{ID: "LBC-2"}, nil).Once()

		_, err := svc.Submit(ctx, req)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("WalkInDropsAddress", func(t *testing.T) {
		repo := new(mockBookingRepo)
		svc := NewBookingService(repo, fakeAuth{authed: true}, nil, nil, nil, &logger)

		req := validRequest()
		req.CollectionMethod = models.CollectionWalkIn
		repo.On("Append", ctx, mock.MatchedBy(func(b models.Booking) bool { return b.Address == "" })).
			Return(models.Booking{ID: "LBC-3"}, nil).Once()

		_, err := svc.Submit(ctx, req)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		repo := new(mockBookingRepo)
		svc := NewBookingService(repo, fakeAuth{authed: true}, nil, nil, nil, &logger)

		cases := map[string]func(*BookingRequest){
			"fullName":      func(r *BookingRequest) { r.FullName = "  " },
			"contactNumber": func(r *BookingRequest) { r.ContactNumber = "" },
			"email":         func(r *BookingRequest) { r.Email = "" },
			"testType":      func(r *BookingRequest) { r.TestType = "" },
			"preferredDate": func(r *BookingRequest) { r.PreferredDate = "" },
			"preferredTime": func(r *BookingRequest) { r.PreferredTime = "" },
			"address":       func(r *BookingRequest) { r.Address = "" },
		}
		for field, mutate := range cases {
			req := validRequest()
			mutate(&req)
			_, err := svc.Submit(ctx, req)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve, field)
			assert.Equal(t, field, ve.Field)
			assert.True(t, IsValidation(err))
		}
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		repo := new(mockBookingRepo)
		worker := new(mockWorker)
		svc := NewBookingService(repo, fakeAuth{authed: true}, nil, nil, worker, &logger)

		repo.On("Append", ctx, mock.Anything).Return(models.Booking{}, errors.New("disk full")).Once()

		_, err := svc.Submit(ctx, validRequest())
		assert.Error(t, err)
		worker.AssertNotCalled(t, "EnqueueBooking", mock.Anything, mock.Anything)
	})

	t.Run("SideEffectFailuresDoNotFailSubmit", func(t *testing.T) {
		repo := new(mockBookingRepo)
		bus := new(mockEventBus)
		worker := new(mockWorker)
		svc := NewBookingService(repo, fakeAuth{authed: true}, nil, bus, worker, &logger)

		repo.On("Append", ctx, mock.Anything).Return(models.Booking{ID: "LBC-4"}, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("bus down")).Once()
		worker.On("EnqueueBooking", ctx, mock.Anything).Return(errors.New("queue full")).Once()

		created, err := svc.Submit(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, "LBC-4", created.ID)
	})
}
