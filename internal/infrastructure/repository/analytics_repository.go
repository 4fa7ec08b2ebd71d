package repository

import (
	"context"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// TopItems aggregates bill lines by batch, highest quantity first
func (r *analyticsRepository) TopItems(ctx context.Context, limit int) ([]domainRepo.TopItemResult, error) {
	if limit <= 0 {
		limit = 5
	}

	var rows []struct {
		CatalogItemID uint
		Name          string
		QuantitySold  int64
		Revenue       int64
	}

	err := r.db.WithContext(ctx).Model(&entity.BillItem{}).
		Select(`bill_items.catalog_item_id AS catalog_item_id,
			MAX(bill_items.name_snapshot) AS name,
			SUM(bill_items.quantity) AS quantity_sold,
			SUM(bill_items.line_total) AS revenue`).
		Joins("JOIN bills ON bills.id = bill_items.bill_id").
		Scopes(ShopScope(ctx, "bills.billed_from_shop_id")).
		Group("bill_items.catalog_item_id").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]domainRepo.TopItemResult, len(rows))
	for i, row := range rows {
		results[i] = domainRepo.TopItemResult{
			CatalogItemID: row.CatalogItemID,
			Name:          row.Name,
			QuantitySold:  row.QuantitySold,
			Revenue:       row.Revenue,
		}
	}
	return results, nil
}

// BillTotalsSince returns a lightweight projection of recent bills. Day
// bucketing is left to the caller so it works the same on every driver.
func (r *analyticsRepository) BillTotalsSince(ctx context.Context, since time.Time) ([]domainRepo.BillTotal, error) {
	var rows []domainRepo.BillTotal
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Select("id, total_amount, created_at").
		Scopes(ShopScope(ctx, "billed_from_shop_id")).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}
