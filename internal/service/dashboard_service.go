package service

import (
	"context"
	"time"

	"labcare/internal/domain"
	"labcare/internal/models"
	"labcare/internal/views"
)

type DashboardService struct {
	bookings  domain.BookingRepository
	reports   domain.ReportRepository
	feedbacks domain.FeedbackRepository
	loc       *time.Location
	now       func() time.Time
}

func NewDashboardService(bookings domain.BookingRepository, reports domain.ReportRepository, feedbacks domain.FeedbackRepository, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{bookings: bookings, reports: reports, feedbacks: feedbacks, loc: loc, now: time.Now}
}

func (s *DashboardService) Summary(ctx context.Context) (views.Dashboard, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return views.Dashboard{}, err
	}
	reports, err := s.reports.List(ctx)
	if err != nil {
		return views.Dashboard{}, err
	}
	feedbacks, err := s.feedbacks.List(ctx)
	if err != nil {
		return views.Dashboard{}, err
	}
	return views.BuildDashboard(bookings, reports, feedbacks, s.now().In(s.loc), s.loc), nil
}

// Bookings lists bookings ordered by schedule, earliest first.
func (s *DashboardService) Bookings(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	return views.SortBySchedule(bookings, s.loc), nil
}
