package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"labcare/internal/config"
	"labcare/internal/export"
	"labcare/internal/models"
	"labcare/internal/service"
	"labcare/internal/session"
	"labcare/internal/store"

	"github.com/rs/zerolog"
)

// Services are the application components the HTTP API serves.
type Services struct {
	Session   *session.Session
	Bookings  *service.BookingService
	Feedback  *service.FeedbackService
	Reports   *service.ReportService
	Dashboard *service.DashboardService
	Exporter  *export.Exporter
	Catalog   *models.Catalog
}

// HTTPServer exposes the booking, report, feedback and session API.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{cfg: cfg, svc: svc, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)

	mux.HandleFunc("POST /api/v1/session/register", srv.handleRegister)
	mux.HandleFunc("POST /api/v1/session/login", srv.handleLogin)
	mux.HandleFunc("POST /api/v1/session/logout", srv.handleLogout)
	mux.HandleFunc("GET /api/v1/session", srv.handleSession)

	mux.HandleFunc("GET /api/v1/bookings", srv.handleListBookings)
	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/export", srv.handleExportBookings)

	mux.HandleFunc("GET /api/v1/reports", srv.handleListReports)
	mux.HandleFunc("GET /api/v1/reports/search", srv.handleSearchReports)
	mux.HandleFunc("GET /api/v1/reports/{id}", srv.handleGetReport)
	mux.HandleFunc("GET /api/v1/reports/{id}/download", srv.handleDownloadReport)

	mux.HandleFunc("GET /api/v1/feedback", srv.handleListFeedback)
	mux.HandleFunc("POST /api/v1/feedback", srv.handleCreateFeedback)

	mux.HandleFunc("GET /api/v1/dashboard", srv.handleDashboard)
	mux.HandleFunc("GET /api/v1/tests", srv.handleTests)

	handler := loggingMiddleware(logger, srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped router.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error, unauthenticatedMsg string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, unauthenticatedMsg)
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrNoUser):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrReportNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case store.IsStorageError(err):
		s.logger.Error().Err(err).Msg("storage unavailable")
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
