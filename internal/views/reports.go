package views

import (
	"strings"

	"labcare/internal/models"
)

// NotFoundMessage is shown when a search query matches no report.
const NotFoundMessage = "Report not found. Please check the Report ID and try again."

type SearchState string

const (
	SearchCleared  SearchState = "cleared"
	SearchFound    SearchState = "found"
	SearchNotFound SearchState = "not_found"
)

type SearchResult struct {
	State   SearchState    `json:"state"`
	Query   string         `json:"query"`
	Report  *models.Report `json:"report,omitempty"`
	Message string         `json:"message,omitempty"`
}

// SearchReport matches the trimmed query case-insensitively against report ids
// and returns the first hit. A blank query is not a search.
func SearchReport(reports []models.Report, query string) SearchResult {
	q := strings.TrimSpace(query)
	if q == "" {
		return SearchResult{State: SearchCleared}
	}

	needle := strings.ToLower(q)
	for i := range reports {
		if strings.Contains(strings.ToLower(reports[i].ID), needle) {
			r := reports[i]
			return SearchResult{State: SearchFound, Query: q, Report: &r}
		}
	}
	return SearchResult{State: SearchNotFound, Query: q, Message: NotFoundMessage}
}

// FindReport looks a report up by its exact id.
func FindReport(reports []models.Report, id string) (models.Report, bool) {
	for _, r := range reports {
		if r.ID == id {
			return r, true
		}
	}
	return models.Report{}, false
}

// DisplayReports falls back to the example reports when nothing is stored.
func DisplayReports(reports []models.Report) []models.Report {
	if len(reports) == 0 {
		return models.ExampleReports()
	}
	return reports
}

// AvailableReportsCount counts stored reports, or the example reports when
// none are stored.
func AvailableReportsCount(reports []models.Report) int {
	if len(reports) > 0 {
		return len(reports)
	}
	return len(models.ExampleReports())
}

func TotalPaid(reports []models.Report) int64 {
	var total int64
	for _, r := range reports {
		total += r.Price
	}
	return total
}

// ReportsSummary is the reports page model.
type ReportsSummary struct {
	Reports   []models.Report `json:"reports"`
	Count     int             `json:"count"`
	TotalPaid int64           `json:"totalPaid"`
}

func Reports(stored []models.Report) ReportsSummary {
	shown := DisplayReports(stored)
	return ReportsSummary{
		Reports:   shown,
		Count:     len(shown),
		TotalPaid: TotalPaid(shown),
	}
}
