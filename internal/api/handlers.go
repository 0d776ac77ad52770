package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"labcare/internal/service"
	"labcare/internal/session"
	"labcare/internal/views"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in session.RegisterInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.svc.Session.Register(r.Context(), in)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "password is required")
			return
		}
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.svc.Session.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Session.Logout(r.Context()); err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"authenticated": s.svc.Session.IsAuthenticated()}
	if user, ok := s.svc.Session.CurrentUser(); ok {
		resp["user"] = user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.svc.Dashboard.Bookings(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings, "count": len(bookings)})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.BookingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.svc.Bookings.Submit(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err, service.MsgLoginToBook)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.svc.Dashboard.Bookings(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}

	var buf bytes.Buffer
	if err := s.svc.Exporter.WriteBookings(&buf, bookings); err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeXLSX(w, "bookings.xlsx", buf.Bytes())
}

func (s *HTTPServer) handleListReports(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Reports.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *HTTPServer) handleSearchReports(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Reports.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Reports.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (s *HTTPServer) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	report, err := s.svc.Reports.Export(r.Context(), r.PathValue("id"), &buf)
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeXLSX(w, fmt.Sprintf("report_%s.xlsx", report.ID), buf.Bytes())
}

func (s *HTTPServer) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	feedbacks, err := s.svc.Feedback.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": views.DisplayFeedbacks(feedbacks),
		"count":    views.FeedbackCount(feedbacks),
	})
}

func (s *HTTPServer) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req service.FeedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	fb, err := s.svc.Feedback.Submit(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err, service.MsgLoginToFeedback)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"feedback": fb})
}

func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Summary(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *HTTPServer) handleTests(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tests": s.svc.Catalog.Tests()})
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
