package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND endpoint = ?", key, endpoint).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.db.WithContext(ctx).Create(ikey).Error
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.db.WithContext(ctx).Model(&entity.IdempotencyKey{}).
		Where("id = ?", ikey.ID).
		Updates(map[string]interface{}{
			"response_code": ikey.ResponseCode,
			"response_body": ikey.ResponseBody,
			"expires_at":    ikey.ExpiresAt,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.IdempotencyKey{}, id).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
