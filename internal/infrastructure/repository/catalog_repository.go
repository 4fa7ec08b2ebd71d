package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

var catalogSortColumns = map[string]string{
	"name":        "name",
	"expiry_date": "expiry_date",
	"quantity":    "quantity",
	"created_at":  "created_at",
}

func (r *catalogRepository) Create(ctx context.Context, item *entity.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *catalogRepository) GetByID(ctx context.Context, id uint) (*entity.CatalogItem, error) {
	var item entity.CatalogItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *catalogRepository) Update(ctx context.Context, item *entity.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *catalogRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.CatalogItem{}, id).Error
}

func (r *catalogRepository) search(query *gorm.DB, term string) *gorm.DB {
	if strings.TrimSpace(term) == "" {
		return query
	}
	p := likePattern(term)
	return query.Where(
		"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(batch_no) LIKE ? ESCAPE '\\' OR barcode = ?",
		p, p, strings.TrimSpace(term),
	)
}

func (r *catalogRepository) List(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.CatalogItem, int64, error) {
	var items []entity.CatalogItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CatalogItem{}).
		Scopes(ShopScope(ctx, "shop_id"))
	query = r.search(query, params.Search)

	if params.ShopID != "" {
		query = query.Where("shop_id = ?", params.ShopID)
	}

	switch params.Expiry {
	case domainRepo.ExpiryFilterExpired:
		query = query.Where("expiry_date < ?", params.Today)
	case domainRepo.ExpiryFilterSoon:
		query = query.Where("expiry_date >= ? AND expiry_date <= ?", params.Today, params.SoonUntil)
	case domainRepo.ExpiryFilterGood:
		query = query.Where("expiry_date > ?", params.SoonUntil)
	}

	if params.LowStock > 0 {
		query = query.Where("quantity <= ?", params.LowStock)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Nearest expiry first, as the inventory screen has always shown it
	sortBy := "expiry_date"
	sortOrder := "ASC"
	if col, ok := catalogSortColumns[params.SortBy]; ok {
		sortBy = col
	}
	if strings.EqualFold(params.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(sortBy + " " + sortOrder).
		Order("id ASC").
		Find(&items).Error

	return items, total, err
}

func (r *catalogRepository) ListWithCursor(ctx context.Context, params *domainRepo.CatalogCursorFilterParams) ([]entity.CatalogItem, error) {
	var items []entity.CatalogItem

	params.Cursor.Validate()
	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&entity.CatalogItem{}).
		Scopes(ShopScope(ctx, "shop_id"))
	query = r.search(query, params.Search)
	if params.ShopID != "" {
		query = query.Where("shop_id = ?", params.ShopID)
	}
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}

	err = query.Order("id DESC").Limit(params.Cursor.Limit + 1).Find(&items).Error
	return items, err
}

func (r *catalogRepository) SearchForBilling(ctx context.Context, term string, today time.Time, limit int) ([]entity.CatalogItem, error) {
	var items []entity.CatalogItem

	query := r.db.WithContext(ctx).Model(&entity.CatalogItem{}).
		Where("selling_price IS NOT NULL AND selling_price > 0").
		Where("quantity > 0").
		Where("expiry_date >= ?", today)

	if term = strings.TrimSpace(term); term != "" {
		p := likePattern(term)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(shop_id) LIKE ? ESCAPE '\\' OR barcode = ?", p, p, term)
	}

	err := query.Order("name ASC").Order("expiry_date ASC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *catalogRepository) ListExpiringBefore(ctx context.Context, before time.Time) ([]entity.CatalogItem, error) {
	var items []entity.CatalogItem
	err := r.db.WithContext(ctx).
		Where("quantity > 0 AND expiry_date < ?", before).
		Order("expiry_date ASC").
		Find(&items).Error
	return items, err
}

func (r *catalogRepository) HasBillHistory(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.BillItem{}).
		Where("catalog_item_id = ?", id).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *catalogRepository) StockSummary(ctx context.Context, today time.Time, soonUntil time.Time, lowStock int) (*domainRepo.StockSummary, error) {
	var row struct {
		TotalItems   int64
		TotalUnits   int64
		Expired      int64
		ExpiringSoon int64
		LowStock     int64
		OutOfStock   int64
	}

	err := r.db.WithContext(ctx).Model(&entity.CatalogItem{}).
		Scopes(ShopScope(ctx, "shop_id")).
		Select(`COUNT(*) AS total_items,
			COALESCE(SUM(quantity), 0) AS total_units,
			COALESCE(SUM(CASE WHEN expiry_date < ? THEN 1 ELSE 0 END), 0) AS expired,
			COALESCE(SUM(CASE WHEN expiry_date >= ? AND expiry_date <= ? THEN 1 ELSE 0 END), 0) AS expiring_soon,
			COALESCE(SUM(CASE WHEN quantity > 0 AND quantity <= ? THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN quantity = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock`,
			today, today, soonUntil, lowStock).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &domainRepo.StockSummary{
		TotalItems:   row.TotalItems,
		TotalUnits:   row.TotalUnits,
		Expired:      row.Expired,
		ExpiringSoon: row.ExpiringSoon,
		LowStock:     row.LowStock,
		OutOfStock:   row.OutOfStock,
	}, nil
}
