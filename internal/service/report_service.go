package service

import (
	"context"
	"io"

	"labcare/internal/domain"
	"labcare/internal/models"
	"labcare/internal/views"

	"github.com/rs/zerolog"
)

// ReportExporter renders a single report as a downloadable document.
type ReportExporter interface {
	WriteReport(w io.Writer, report models.Report) error
}

type ReportService struct {
	repo     domain.ReportRepository
	exporter ReportExporter
	logger   *zerolog.Logger
}

func NewReportService(repo domain.ReportRepository, exporter ReportExporter, logger *zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, exporter: exporter, logger: logger}
}

// List returns the reports page model.
func (s *ReportService) List(ctx context.Context) (views.ReportsSummary, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return views.ReportsSummary{}, err
	}
	return views.Reports(reports), nil
}

// Search runs a report id search over the displayed reports.
func (s *ReportService) Search(ctx context.Context, query string) (views.SearchResult, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return views.SearchResult{}, err
	}
	return views.SearchReport(views.DisplayReports(reports), query), nil
}

// Get returns a displayed report by exact id.
func (s *ReportService) Get(ctx context.Context, id string) (models.Report, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return models.Report{}, err
	}
	report, ok := views.FindReport(views.DisplayReports(reports), id)
	if !ok {
		return models.Report{}, ErrReportNotFound
	}
	return report, nil
}

// Export writes the report with the given id as a document to w.
func (s *ReportService) Export(ctx context.Context, id string, w io.Writer) (models.Report, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return models.Report{}, err
	}
	if err := s.exporter.WriteReport(w, report); err != nil {
		s.logger.Error().Err(err).Str("report_id", id).Msg("report export failed")
		return models.Report{}, err
	}
	return report, nil
}
