package repository

import (
	"context"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// GetMany returns the stored values for keys
func (r *settingsRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	var rows []entity.Setting
	query := r.db.WithContext(ctx)
	if len(keys) > 0 {
		query = query.Where(`"key" IN ?`, keys)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// Upsert inserts or replaces every pair in one statement
func (r *settingsRepository) Upsert(ctx context.Context, values map[string]string) error {
	rows := toSettingRows(values)
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

// SetDefaults inserts pairs that are not stored yet
func (r *settingsRepository) SetDefaults(ctx context.Context, values map[string]string) error {
	rows := toSettingRows(values)
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func toSettingRows(values map[string]string) []entity.Setting {
	rows := make([]entity.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, entity.Setting{Key: k, Value: v})
	}
	return rows
}
