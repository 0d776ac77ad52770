package repository

import (
	"context"
	"fmt"
	"time"

	"labcare/internal/models"
	"labcare/internal/store"
)

type FeedbackRepository struct {
	items collection[models.Feedback]
	ids   *IDGenerator
	now   func() time.Time
}

func NewFeedbackRepository(s *store.RecordStore, ids *IDGenerator, now func() time.Time) *FeedbackRepository {
	if now == nil {
		now = time.Now
	}
	return &FeedbackRepository{
		items: collection[models.Feedback]{store: s, key: models.KeyFeedbacks},
		ids:   ids,
		now:   now,
	}
}

func (r *FeedbackRepository) List(ctx context.Context) ([]models.Feedback, error) {
	return r.items.list(ctx)
}

func (r *FeedbackRepository) Append(ctx context.Context, feedback models.Feedback) (models.Feedback, error) {
	feedback.ID = r.ids.Next(models.FeedbackIDPrefix)
	feedback.CreatedAt = r.now().UTC()
	if err := r.items.append(ctx, feedback); err != nil {
		return models.Feedback{}, fmt.Errorf("append feedback: %w", err)
	}
	return feedback, nil
}
