package repository

import (
	"context"

	"brc/internal/models"

	"gorm.io/gorm"
)

// ActionRepository defines the append-only audit log of review actions.
type ActionRepository interface {
	Append(ctx context.Context, action *models.ReviewAction) error
	List(ctx context.Context, limit, offset int) ([]models.ReviewAction, error)
}

type actionRepository struct {
	db *gorm.DB
}

// NewActionRepository returns a new ActionRepository implementation.
func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) Append(ctx context.Context, action *models.ReviewAction) error {
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *actionRepository) List(ctx context.Context, limit, offset int) ([]models.ReviewAction, error) {
	var actions []models.ReviewAction
	if err := r.db.WithContext(ctx).
		Order("action_time DESC").
		Limit(limit).Offset(offset).
		Find(&actions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return actions, nil
}
