package views

import (
	"sort"
	"time"

	"labcare/internal/models"
)

type scheduled struct {
	booking models.Booking
	at      time.Time
	ok      bool
}

// SortBySchedule returns a copy of bookings ordered by preferred date and time,
// earliest first. Equal times keep insertion order; bookings whose schedule
// cannot be parsed go last.
func SortBySchedule(bookings []models.Booking, loc *time.Location) []models.Booking {
	items := make([]scheduled, len(bookings))
	for i, b := range bookings {
		at, ok := b.ScheduledAt(loc)
		items[i] = scheduled{booking: b, at: at, ok: ok}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.at.Before(b.at)
	})

	out := make([]models.Booking, len(items))
	for i, it := range items {
		out[i] = it.booking
	}
	return out
}

// IsUpcoming reports whether a booking is scheduled at or after now and not completed.
func IsUpcoming(b models.Booking, now time.Time, loc *time.Location) bool {
	if b.Status == models.StatusCompleted {
		return false
	}
	at, ok := b.ScheduledAt(loc)
	if !ok {
		return false
	}
	return !at.Before(now)
}

func UpcomingCount(bookings []models.Booking, now time.Time, loc *time.Location) int {
	n := 0
	for _, b := range bookings {
		if IsUpcoming(b, now, loc) {
			n++
		}
	}
	return n
}

// RecentBookings returns the first models.RecentBookingsSize entries of an
// already sorted list.
func RecentBookings(sorted []models.Booking) []models.Booking {
	if len(sorted) > models.RecentBookingsSize {
		sorted = sorted[:models.RecentBookingsSize]
	}
	out := make([]models.Booking, len(sorted))
	copy(out, sorted)
	return out
}

// NextBooking is the head of the sorted list.
func NextBooking(sorted []models.Booking) (models.Booking, bool) {
	if len(sorted) == 0 {
		return models.Booking{}, false
	}
	return sorted[0], true
}
