package service

import (
	"context"
	"strings"

	"labcare/internal/domain"
	"labcare/internal/events"
	"labcare/internal/metrics"
	"labcare/internal/models"

	"github.com/rs/zerolog"
)

// FeedbackRequest is the feedback form. Rating is a 1..5 star value.
type FeedbackRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	BookingID string `json:"bookingId"`
	Rating    int    `json:"rating"`
	Feedback  string `json:"feedback"`
}

type FeedbackService struct {
	repo     domain.FeedbackRepository
	auth     domain.Authenticator
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewFeedbackService(repo domain.FeedbackRepository, auth domain.Authenticator, eventBus domain.EventPublisher, logger *zerolog.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, auth: auth, eventBus: eventBus, logger: logger}
}

func (s *FeedbackService) List(ctx context.Context) ([]models.Feedback, error) {
	return s.repo.List(ctx)
}

// Submit stores feedback for the signed-in user. The booking reference is
// free text and is not checked against stored bookings.
func (s *FeedbackService) Submit(ctx context.Context, req FeedbackRequest) (models.Feedback, error) {
	if s.auth == nil || !s.auth.IsAuthenticated() {
		metrics.IncRejectedWrite("feedback_unauthenticated")
		s.logger.Warn().Msg("feedback rejected: not authenticated")
		return models.Feedback{}, ErrUnauthenticated
	}

	fb := models.Feedback{
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.TrimSpace(req.Email),
		BookingID: strings.TrimSpace(req.BookingID),
		Rating:    models.FormatRating(req.Rating),
		Feedback:  strings.TrimSpace(req.Feedback),
	}

	var missing string
	switch {
	case fb.FullName == "":
		missing = "fullName"
	case fb.Email == "":
		missing = "email"
	case fb.Rating == "":
		missing = "rating"
	case fb.Feedback == "":
		missing = "feedback"
	}
	if missing != "" {
		metrics.IncRejectedWrite("feedback_invalid")
		return models.Feedback{}, &ValidationError{Field: missing}
	}

	created, err := s.repo.Append(ctx, fb)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store feedback")
		return models.Feedback{}, err
	}

	metrics.IncFeedbackSubmitted()
	s.logger.Info().Str("feedback_id", created.ID).Str("rating", created.Rating).Msg("feedback submitted")

	if s.eventBus != nil {
		payload := events.FeedbackPayload{FeedbackID: created.ID, BookingID: created.BookingID, Rating: created.Rating}
		if err := s.eventBus.PublishJSON(events.EventFeedbackSubmitted, payload); err != nil {
			s.logger.Error().Err(err).Str("feedback_id", created.ID).Msg("publish event error")
		}
	}
	return created, nil
}
