package models

import (
	"fmt"
	"time"
)

// Feedback is a free-text review, optionally tied to a booking.
type Feedback struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	BookingID string    `json:"bookingId"`
	Rating    string    `json:"rating"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

var ratingLabels = map[int]string{
	1: "Poor",
	2: "Needs improvement",
	3: "Okay",
	4: "Good",
	5: "Excellent",
}

// RatingLabel returns the label for a 1..5 star value.
func RatingLabel(stars int) (string, bool) {
	label, ok := ratingLabels[stars]
	return label, ok
}

// FormatRating renders a star value the way it is persisted, e.g. "5 - Excellent".
func FormatRating(stars int) string {
	label, ok := RatingLabel(stars)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d - %s", stars, label)
}

// Testimonial is a display-only feedback entry shown while no real feedback exists.
type Testimonial struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

func ExampleTestimonials() []Testimonial {
	return []Testimonial{
		{
			ID:        "FB-001",
			FullName:  "D.G.C Keshara",
			Email:     "keshara@example.com",
			Rating:    5,
			Feedback:  "Excellent service! The home sample collection was very convenient and the phlebotomist was professional and punctual. Received my reports within 24 hours as promised.",
			CreatedAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:        "FB-002",
			FullName:  "Hirusha Prabash",
			Email:     "hirusha@example.com",
			Rating:    4,
			Feedback:  "Great experience overall. The booking process was smooth and the staff was friendly. Only minor suggestion would be to expand the test menu a bit more.",
			CreatedAt: time.Date(2025, 1, 14, 14, 20, 0, 0, time.UTC),
		},
		{
			ID:        "FB-003",
			FullName:  "Samidu",
			Email:     "samidu@example.com",
			Rating:    5,
			Feedback:  "Outstanding service! The online booking system is user-friendly and the home collection service saved me a lot of time.",
			CreatedAt: time.Date(2025, 1, 13, 9, 15, 0, 0, time.UTC),
		},
		{
			ID:        "FB-004",
			FullName:  "Bawantha Dudiranaga",
			Email:     "bawantha@example.com",
			Rating:    4,
			Feedback:  "Very satisfied with the service. The dashboard makes it easy to track all my bookings and reports in one place.",
			CreatedAt: time.Date(2025, 1, 12, 16, 45, 0, 0, time.UTC),
		},
	}
}
