package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"labcare/internal/models"
	"labcare/internal/store"
)

// ReportRepository stores lab reports. Reports arrive with their own ids, so
// Append keeps the id it is given.
type ReportRepository struct {
	items collection[models.Report]
	store *store.RecordStore
}

func NewReportRepository(s *store.RecordStore) *ReportRepository {
	return &ReportRepository{
		items: collection[models.Report]{store: s, key: models.KeyReports},
		store: s,
	}
}

func (r *ReportRepository) List(ctx context.Context) ([]models.Report, error) {
	return r.items.list(ctx)
}

func (r *ReportRepository) Append(ctx context.Context, report models.Report) (models.Report, error) {
	if report.ID == "" {
		return models.Report{}, fmt.Errorf("append report: id is required")
	}
	if err := r.items.append(ctx, report); err != nil {
		return models.Report{}, fmt.Errorf("append report: %w", err)
	}
	return report, nil
}

// EnsureSeeded writes the example reports when the collection is empty and
// reports whether it did. Calling it again is a no-op.
func (r *ReportRepository) EnsureSeeded(ctx context.Context) (bool, error) {
	seeded := false
	err := r.store.Update(ctx, models.KeyReports, func(seq []json.RawMessage) ([]json.RawMessage, error) {
		if len(seq) > 0 {
			return seq, nil
		}
		seeded = true
		out := make([]json.RawMessage, 0, 3)
		for _, report := range models.ExampleReports() {
			raw, err := json.Marshal(report)
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
		return out, nil
	})
	if err != nil {
		return false, fmt.Errorf("seed reports: %w", err)
	}
	return seeded, nil
}
