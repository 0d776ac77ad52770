package views

import (
	"time"

	"labcare/internal/models"
)

// Dashboard is the signed-in landing page model.
type Dashboard struct {
	UpcomingCount  int              `json:"upcomingCount"`
	ReportsCount   int              `json:"reportsCount"`
	FeedbackCount  int              `json:"feedbackCount"`
	NextBooking    *models.Booking  `json:"nextBooking,omitempty"`
	RecentBookings []models.Booking `json:"recentBookings"`
	HasMore        bool             `json:"hasMore"`
}

func BuildDashboard(bookings []models.Booking, reports []models.Report, feedbacks []models.Feedback, now time.Time, loc *time.Location) Dashboard {
	sorted := SortBySchedule(bookings, loc)

	d := Dashboard{
		UpcomingCount:  UpcomingCount(bookings, now, loc),
		ReportsCount:   AvailableReportsCount(reports),
		FeedbackCount:  FeedbackCount(feedbacks),
		RecentBookings: RecentBookings(sorted),
		HasMore:        len(sorted) > models.RecentBookingsSize,
	}
	if next, ok := NextBooking(sorted); ok {
		d.NextBooking = &next
	}
	return d
}
