package repository

import (
	"context"
	"errors"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

func (r *billRepository) GetWithItems(ctx context.Context, id uint) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", preloadItems).
		First(&bill, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) filtered(ctx context.Context, customerID *uint, shopID string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(ShopScope(ctx, "billed_from_shop_id"))
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if shopID != "" {
		query = query.Where("billed_from_shop_id = ?", shopID)
	}
	return query
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.filtered(ctx, params.CustomerID, params.ShopID)
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", *params.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order("id DESC").
		Find(&bills).Error

	return bills, total, err
}

// ListWithCursor walks bills newest first. Fetches limit+1 rows to detect more.
func (r *billRepository) ListWithCursor(ctx context.Context, params *domainRepo.BillCursorFilterParams) ([]entity.Bill, error) {
	var bills []entity.Bill

	params.Cursor.Validate()
	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}

	query := r.filtered(ctx, params.CustomerID, params.ShopID)
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}

	err = query.Preload("Customer").
		Order("id DESC").
		Limit(params.Cursor.Limit + 1).
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(ShopScope(ctx, "billed_from_shop_id")).
		Count(&total).Error
	return total, err
}
