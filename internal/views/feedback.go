package views

import (
	"strconv"
	"strings"

	"labcare/internal/models"
)

func FeedbackCount(feedbacks []models.Feedback) int {
	return len(feedbacks)
}

// FeedbackEntry is a feedback row as displayed, with the rating as stars.
type FeedbackEntry struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Stars    int    `json:"stars"`
	Rating   string `json:"rating"`
	Feedback string `json:"feedback"`
	Example  bool   `json:"example,omitempty"`
}

// DisplayFeedbacks shows stored feedback, or the example testimonials while
// there is none.
func DisplayFeedbacks(feedbacks []models.Feedback) []FeedbackEntry {
	if len(feedbacks) == 0 {
		examples := models.ExampleTestimonials()
		out := make([]FeedbackEntry, 0, len(examples))
		for _, t := range examples {
			out = append(out, FeedbackEntry{
				ID:       t.ID,
				FullName: t.FullName,
				Stars:    t.Rating,
				Rating:   models.FormatRating(t.Rating),
				Feedback: t.Feedback,
				Example:  true,
			})
		}
		return out
	}

	out := make([]FeedbackEntry, 0, len(feedbacks))
	for _, f := range feedbacks {
		out = append(out, FeedbackEntry{
			ID:       f.ID,
			FullName: f.FullName,
			Stars:    RatingStars(f.Rating),
			Rating:   f.Rating,
			Feedback: f.Feedback,
		})
	}
	return out
}

// RatingStars extracts the leading number of a "4 - Good" rating. Returns 0
// when the rating has no numeric prefix.
func RatingStars(rating string) int {
	head, _, _ := strings.Cut(rating, " - ")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 1 || n > 5 {
		return 0
	}
	return n
}
