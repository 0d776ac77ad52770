package service

import (
	"context"

	"labcare/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookingRepo) Append(ctx context.Context, b models.Booking) (models.Booking, error) {
	args := m.Called(ctx, b)
	if fn, ok := args.Get(0).(func(context.Context, models.Booking) models.Booking); ok {
		return fn(ctx, b), args.Error(1)
	}
	return args.Get(0).(models.Booking), args.Error(1)
}

type mockFeedbackRepo struct {
	mock.Mock
}

func (m *mockFeedbackRepo) List(ctx context.Context) ([]models.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *mockFeedbackRepo) Append(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, models.Feedback) models.Feedback); ok {
		return fn(ctx, f), args.Error(1)
	}
	return args.Get(0).(models.Feedback), args.Error(1)
}

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) List(ctx context.Context) ([]models.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *mockReportRepo) Append(ctx context.Context, r models.Report) (models.Report, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(models.Report), args.Error(1)
}

func (m *mockReportRepo) EnsureSeeded(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueBooking(ctx context.Context, b models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

type fakeAuth struct {
	authed bool
	user   models.User
}

func (f fakeAuth) IsAuthenticated() bool { return f.authed }

func (f fakeAuth) CurrentUser() (models.User, bool) { return f.user, f.authed }
