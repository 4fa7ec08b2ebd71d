package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/infrastructure/database"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "pos.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func cents(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type itemOpt func(*entity.CatalogItem)

func withPrice(p *int64) itemOpt {
	return func(c *entity.CatalogItem) { c.SellingPrice = p }
}

func withExpiry(d time.Time) itemOpt {
	return func(c *entity.CatalogItem) { c.ExpiryDate = d }
}

func withShop(shop string) itemOpt {
	return func(c *entity.CatalogItem) { c.ShopID = &shop }
}

func seedItem(t *testing.T, db *gorm.DB, id uint, name string, qty int, price int64, opts ...itemOpt) *entity.CatalogItem {
	t.Helper()
	item := &entity.CatalogItem{
		ID:           id,
		Name:         name,
		BatchNo:      "B-" + name,
		SellingPrice: cents(price),
		CostPrice:    cents(price + 500),
		ExpiryDate:   day(2027, time.March, 15),
		Quantity:     qty,
	}
	for _, opt := range opts {
		opt(item)
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var item entity.CatalogItem
	require.NoError(t, db.First(&item, id).Error)
	return item.Quantity
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func seedPayee(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.WithContext(context.Background()).Create(&[]entity.Setting{
		{Key: entity.SettingPayeeVPA, Value: "medplus@okaxis"},
		{Key: entity.SettingPayeeName, Value: "MedPlus Pharmacy"},
	}).Error)
}
