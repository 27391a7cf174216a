// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"brc/internal/cache"
	"brc/internal/models"

	"gorm.io/gorm"
)

// SubmissionRepository defines persistence operations for bot submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, botID models.Snowflake) (*models.Submission, error)
	Create(ctx context.Context, sub *models.Submission) error
	// UpdateStateIfCurrent writes newState (and any extra fields) only when
	// the stored state is one of the allowed source states. It returns the
	// number of rows changed so callers can detect a lost race.
	UpdateStateIfCurrent(ctx context.Context, botID models.Snowflake, allowed []models.State, newState models.State, fields map[string]any) (int64, error)
	// UpdateFields writes fields unconditionally. Used by resend repairs,
	// where re-writing the resulting state is idempotent.
	UpdateFields(ctx context.Context, botID models.Snowflake, fields map[string]any) error
	List(ctx context.Context, limit, offset int) ([]models.Submission, error)
	ListByState(ctx context.Context, state models.State) ([]models.Submission, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, botID models.Snowflake) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository returns a new SubmissionRepository implementation.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, botID models.Snowflake) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.WithContext(ctx).Where("bot_id = ?", int64(botID)).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bot", botID.String())
		}
		return nil, models.NewInternalError(err)
	}
	return &sub, nil
}

func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Bot already in queue")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *submissionRepository) UpdateStateIfCurrent(ctx context.Context, botID models.Snowflake, allowed []models.State, newState models.State, fields map[string]any) (int64, error) {
	updates := map[string]any{"state": int(newState)}
	for k, v := range fields {
		updates[k] = v
	}
	tx := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("bot_id = ? AND state IN ?", int64(botID), stateInts(allowed)).
		Updates(updates)
	if tx.Error != nil {
		return 0, models.NewInternalError(tx.Error)
	}
	cache.InvalidateSubmission(ctx, botID)
	return tx.RowsAffected, nil
}

func (r *submissionRepository) UpdateFields(ctx context.Context, botID models.Snowflake, fields map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("bot_id = ?", int64(botID)).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSubmission(ctx, botID)
	return nil
}

func (r *submissionRepository) List(ctx context.Context, limit, offset int) ([]models.Submission, error) {
	var subs []models.Submission
	if err := r.db.WithContext(ctx).
		Order("bot_id ASC").
		Limit(limit).Offset(offset).
		Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return subs, nil
}

func (r *submissionRepository) ListByState(ctx context.Context, state models.State) ([]models.Submission, error) {
	var subs []models.Submission
	if err := r.db.WithContext(ctx).
		Where("state = ?", int(state)).
		Order("bot_id ASC").
		Find(&subs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return subs, nil
}

func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *submissionRepository) Delete(ctx context.Context, botID models.Snowflake) error {
	if err := r.db.WithContext(ctx).
		Where("bot_id = ?", int64(botID)).
		Delete(&models.Submission{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSubmission(ctx, botID)
	return nil
}

func stateInts(states []models.State) []int {
	out := make([]int, len(states))
	for i, s := range states {
		out[i] = int(s)
	}
	return out
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
