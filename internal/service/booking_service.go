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

// BookingRequest is the booking form as submitted. Price is never taken from
// the client.
type BookingRequest struct {
	FullName         string `json:"fullName"`
	ContactNumber    string `json:"contactNumber"`
	Email            string `json:"email"`
	TestType         string `json:"testType"`
	PreferredDate    string `json:"preferredDate"`
	PreferredTime    string `json:"preferredTime"`
	CollectionMethod string `json:"collectionMethod"`
	Address          string `json:"address"`
	Notes            string `json:"notes"`
}

type BookingService struct {
	repo         domain.BookingRepository
	auth         domain.Authenticator
	catalog      *models.Catalog
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger
}

func NewBookingService(
	repo domain.BookingRepository,
	auth domain.Authenticator,
	catalog *models.Catalog,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	logger *zerolog.Logger,
) *BookingService {
	if catalog == nil {
		catalog = models.NewCatalog(nil)
	}
	return &BookingService{
		repo:         repo,
		auth:         auth,
		catalog:      catalog,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.repo.List(ctx)
}

// Submit stores a new booking for the signed-in user.
func (s *BookingService) Submit(ctx context.Context, req BookingRequest) (models.Booking, error) {
	if s.auth == nil || !s.auth.IsAuthenticated() {
		metrics.IncRejectedWrite("booking_unauthenticated")
		s.logger.Warn().Msg("booking rejected: not authenticated")
		return models.Booking{}, ErrUnauthenticated
	}

	req = trimBooking(req)
	if err := validateBooking(req); err != nil {
		metrics.IncRejectedWrite("booking_invalid")
		return models.Booking{}, err
	}

	if !s.catalog.Known(req.TestType) {
		s.logger.Warn().Str("test_type", req.TestType).Msg("unknown test type, price set to 0")
	}

	booking := models.Booking{
		FullName:         req.FullName,
		ContactNumber:    req.ContactNumber,
		Email:            req.Email,
		TestType:         req.TestType,
		Price:            s.catalog.Price(req.TestType),
		PreferredDate:    req.PreferredDate,
		PreferredTime:    req.PreferredTime,
		CollectionMethod: req.CollectionMethod,
		Address:          req.Address,
		Notes:            req.Notes,
		Status:           models.StatusScheduled,
	}
	if !booking.IsHomeCollection() {
		booking.Address = ""
	}

	created, err := s.repo.Append(ctx, booking)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store booking")
		return models.Booking{}, err
	}

	metrics.IncBookingCreated(created.TestType)
	s.logger.Info().Str("booking_id", created.ID).Str("test_type", created.TestType).Msg("booking created")

	s.publishEvent(created)
	s.enqueueSync(ctx, created)
	return created, nil
}

func trimBooking(req BookingRequest) BookingRequest {
	req.FullName = strings.TrimSpace(req.FullName)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)
	req.Email = strings.TrimSpace(req.Email)
	req.TestType = strings.TrimSpace(req.TestType)
	req.PreferredDate = strings.TrimSpace(req.PreferredDate)
	req.PreferredTime = strings.TrimSpace(req.PreferredTime)
	req.CollectionMethod = strings.TrimSpace(req.CollectionMethod)
	req.Address = strings.TrimSpace(req.Address)
	return req
}

// validateBooking checks presence only. Address is required for home collection.
func validateBooking(req BookingRequest) error {
	required := []struct {
		field, value string
	}{
		{"fullName", req.FullName},
		{"contactNumber", req.ContactNumber},
		{"email", req.Email},
		{"testType", req.TestType},
		{"preferredDate", req.PreferredDate},
		{"preferredTime", req.PreferredTime},
		{"collectionMethod", req.CollectionMethod},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field}
		}
	}
	if req.CollectionMethod == models.CollectionHome && req.Address == "" {
		return &ValidationError{Field: "address"}
	}
	return nil
}

func (s *BookingService) publishEvent(booking models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingPayload{
		BookingID:        booking.ID,
		FullName:         booking.FullName,
		Email:            booking.Email,
		TestType:         booking.TestType,
		Price:            booking.Price,
		PreferredDate:    booking.PreferredDate,
		PreferredTime:    booking.PreferredTime,
		CollectionMethod: booking.CollectionMethod,
		Status:           booking.Status,
		CreatedAt:        booking.CreatedAt,
	}

	if err := s.eventBus.PublishJSON(events.EventBookingCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", events.EventBookingCreated).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking models.Booking) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueBooking(ctx, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("enqueue sync error")
	}
}
