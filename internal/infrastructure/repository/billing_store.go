package repository

import (
	"context"
	"errors"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type billingStore struct {
	db *gorm.DB
}

// NewBillingStore creates the transactional store used to submit bills
func NewBillingStore(db *gorm.DB) domainRepo.BillingStore {
	return &billingStore{db: db}
}

// RunInTx wraps fn in a gorm transaction. database/sql rolls the
// transaction back on its own when ctx is cancelled before commit.
func (s *billingStore) RunInTx(ctx context.Context, fn func(tx domainRepo.BillingTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&billingTx{tx: tx})
	})
}

type billingTx struct {
	tx *gorm.DB
}

// LockCatalogItems issues a single SELECT ... FOR UPDATE ordered by id so
// concurrent submissions over overlapping carts always lock in the same
// order. The sqlite dialector drops the locking clause; there the write
// transaction itself serialises submissions.
func (t *billingTx) LockCatalogItems(ctx context.Context, ids []uint) ([]entity.CatalogItem, error) {
	if len(ids) == 0 {
		return []entity.CatalogItem{}, nil
	}
	var items []entity.CatalogItem
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (t *billingTx) GetCustomer(ctx context.Context, id uint) (*entity.Customer, error) {
	var customer entity.Customer
	err := t.tx.WithContext(ctx).First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (t *billingTx) CreateBill(ctx context.Context, bill *entity.Bill) error {
	items := bill.Items
	bill.Items = nil

	db := t.tx.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(bill).Error; err != nil {
		return err
	}

	for i := range items {
		items[i].BillID = bill.ID
	}
	if len(items) > 0 {
		if err := db.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}
	}

	bill.Items = items
	return nil
}

// DecrementStock runs UPDATE catalog_items SET quantity = quantity - qty
// WHERE id = ? AND quantity >= qty
func (t *billingTx) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	result := t.tx.WithContext(ctx).Model(&entity.CatalogItem{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
