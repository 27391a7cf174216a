package repository

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"brc/internal/cache"
	"brc/internal/models"

	"gorm.io/gorm"
)

// ListRepository defines persistence operations for enrolled bot lists.
type ListRepository interface {
	GetByID(ctx context.Context, id string) (*models.List, error)
	ListAll(ctx context.Context) ([]models.List, error)
	Create(ctx context.Context, list *models.List) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// RotateSecret replaces the list's shared secret and returns the new
	// value. The secret is returned exactly once; it is never readable
	// through any projection afterwards.
	RotateSecret(ctx context.Context, id string) (string, error)
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository returns a new ListRepository implementation.
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) GetByID(ctx context.Context, id string) (*models.List, error) {
	var list models.List
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("List", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &list, nil
}

func (r *listRepository) ListAll(ctx context.Context) ([]models.List, error) {
	var lists []models.List
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&lists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lists, nil
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	if list.SecretKey == "" {
		secret, err := newSecret()
		if err != nil {
			return models.NewInternalError(err)
		}
		list.SecretKey = secret
	}
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("List already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if err := r.db.WithContext(ctx).
		Model(&models.List{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateList(ctx, id)
	return nil
}

func (r *listRepository) RotateSecret(ctx context.Context, id string) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	tx := r.db.WithContext(ctx).
		Model(&models.List{}).
		Where("id = ?", id).
		Update("secret_key", secret)
	if tx.Error != nil {
		return "", models.NewInternalError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return "", models.NewNotFoundError("List", id)
	}
	cache.InvalidateList(ctx, id)
	return secret, nil
}

// newSecret generates a URL-safe random token of the same shape as the
// original enrollment secrets.
func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
