package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/pharmacy-pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/upi"
)

func newBillingService(db *gorm.DB) *BillingService {
	payments := NewPaymentService(infraRepo.NewSettingsRepository(db), infraRepo.NewBillRepository(db), upi.Payee{})
	return NewBillingService(infraRepo.NewBillingStore(db), payments, 0).WithClock(fixedClock)
}

func requireKind(t *testing.T, err error, kind apperror.Kind) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, kind), "expected %s, got %v", kind, err)
	return apperror.GetAppError(err)
}

func TestSubmitBillScenario(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 10, "Paracetamol", 3, 2000)
	svc := newBillingService(db)

	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 10, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.NotZero(t, res.Bill.ID)
	assert.Equal(t, int64(4000), res.Bill.TotalAmount)
	assert.Equal(t, 1, stockOf(t, db, 10))

	_, err = svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 10, Quantity: 5}},
	})
	appErr := requireKind(t, err, apperror.KindInsufficientStock)
	assert.Equal(t, 409, appErr.Code)
	require.NotNil(t, appErr.FailingItem)
	assert.Equal(t, uint(10), *appErr.FailingItem)
	assert.Equal(t, 1, stockOf(t, db, 10))
}

func TestSubmitBillInsufficientStockLeavesStock(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 10, "Paracetamol", 3, 2000)
	svc := newBillingService(db)

	_, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 10, Quantity: 5}},
	})
	requireKind(t, err, apperror.KindInsufficientStock)
	assert.Equal(t, 3, stockOf(t, db, 10))
	assert.Zero(t, countRows(t, db, &entity.Bill{}))
}

func TestSubmitBillTotalsMatchLines(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 50, 1250)
	seedItem(t, db, 2, "Cetirizine", 20, 399)
	svc := newBillingService(db)

	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{
			{CatalogItemID: 2, Quantity: 3},
			{CatalogItemID: 1, Quantity: 2},
		},
	})
	require.NoError(t, err)

	var items []entity.BillItem
	require.NoError(t, db.Where("bill_id = ?", res.Bill.ID).Order("line_no").Find(&items).Error)
	require.Len(t, items, 2)

	var sum int64
	for _, it := range items {
		assert.Equal(t, it.UnitPrice*int64(it.Quantity), it.LineTotal)
		sum += it.LineTotal
	}

	var stored entity.Bill
	require.NoError(t, db.First(&stored, res.Bill.ID).Error)
	assert.Equal(t, sum, stored.TotalAmount)
	assert.Equal(t, int64(3*399+2*1250), stored.TotalAmount)

	// lines keep cart order and name snapshots
	assert.Equal(t, 1, items[0].LineNo)
	assert.Equal(t, "Cetirizine", items[0].NameSnapshot)
	assert.Equal(t, 17, stockOf(t, db, 2))
	assert.Equal(t, 48, stockOf(t, db, 1))
}

func TestSubmitBillIgnoresClientPrice(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 7, "Ibuprofen", 10, 500)
	svc := newBillingService(db)

	clientPrice := decimal.RequireFromString("1.00")
	clientTotal := decimal.RequireFromString("1.00")
	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines:       []CartLine{{CatalogItemID: 7, Quantity: 1, ClientUnitPrice: &clientPrice}},
		ClientTotal: &clientTotal,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.Bill.TotalAmount)
	require.Len(t, res.Bill.Items, 1)
	assert.Equal(t, int64(500), res.Bill.Items[0].UnitPrice)
}

func TestSubmitBillExpiredAbortsWholeCart(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 50, 1250)
	seedItem(t, db, 2, "Cough Syrup", 5, 800, withExpiry(day(2026, time.March, 14)))
	svc := newBillingService(db)

	_, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{
			{CatalogItemID: 1, Quantity: 2},
			{CatalogItemID: 2, Quantity: 1},
		},
	})
	appErr := requireKind(t, err, apperror.KindExpiredItem)
	require.NotNil(t, appErr.LineIndex)
	assert.Equal(t, 1, *appErr.LineIndex)
	assert.Equal(t, uint(2), *appErr.FailingItem)

	assert.Zero(t, countRows(t, db, &entity.Bill{}))
	assert.Zero(t, countRows(t, db, &entity.BillItem{}))
	assert.Equal(t, 50, stockOf(t, db, 1))
	assert.Equal(t, 5, stockOf(t, db, 2))
}

func TestSubmitBillExpiringTodayIsSellable(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 5, 1250, withExpiry(day(2026, time.March, 15)))

	_, err := newBillingService(db).SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 1, Quantity: 1}},
	})
	assert.NoError(t, err)
}

func TestSubmitBillPerLineErrors(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 5, 1250)
	seedItem(t, db, 2, "Unpriced", 5, 0)
	require.NoError(t, db.Model(&entity.CatalogItem{}).Where("id = ?", 2).Update("selling_price", nil).Error)
	seedItem(t, db, 3, "Free Sample", 5, 0)
	svc := newBillingService(db)

	tests := []struct {
		name string
		line CartLine
		kind apperror.Kind
		code int
	}{
		{"unknown item", CartLine{CatalogItemID: 99, Quantity: 1}, apperror.KindItemNotFound, 404},
		{"null price", CartLine{CatalogItemID: 2, Quantity: 1}, apperror.KindPriceNotSet, 422},
		{"zero price", CartLine{CatalogItemID: 3, Quantity: 1}, apperror.KindPriceNotSet, 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
				Lines: []CartLine{{CatalogItemID: 1, Quantity: 1}, tt.line},
			})
			appErr := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, 1, *appErr.LineIndex)
			assert.Equal(t, tt.line.CatalogItemID, *appErr.FailingItem)
		})
	}

	assert.Equal(t, 5, stockOf(t, db, 1))
	assert.Zero(t, countRows(t, db, &entity.Bill{}))
}

func TestSubmitBillDuplicateLinesShareStock(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 4, "Vitamin C", 3, 100)
	svc := newBillingService(db)

	_, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{
			{CatalogItemID: 4, Quantity: 2},
			{CatalogItemID: 4, Quantity: 2},
		},
	})
	appErr := requireKind(t, err, apperror.KindInsufficientStock)
	assert.Equal(t, 1, *appErr.LineIndex)
	assert.Equal(t, 3, stockOf(t, db, 4))

	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{
			{CatalogItemID: 4, Quantity: 1},
			{CatalogItemID: 4, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Bill.Items, 2)
	assert.Equal(t, 0, stockOf(t, db, 4))
}

func TestSubmitBillValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newBillingService(db)

	tests := []struct {
		name  string
		input *SubmitBillInput
	}{
		{"empty cart", &SubmitBillInput{}},
		{"zero quantity", &SubmitBillInput{Lines: []CartLine{{CatalogItemID: 1, Quantity: 0}}}},
		{"missing id", &SubmitBillInput{Lines: []CartLine{{Quantity: 1}}}},
		{"known without id", &SubmitBillInput{
			Lines:    []CartLine{{CatalogItemID: 1, Quantity: 1}},
			Customer: CustomerRef{Kind: enum.CustomerRefKnown},
		}},
		{"walk-in without details", &SubmitBillInput{
			Lines:    []CartLine{{CatalogItemID: 1, Quantity: 1}},
			Customer: CustomerRef{Kind: enum.CustomerRefWalkIn, Name: "  "},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitBill(context.Background(), tt.input)
			appErr := requireKind(t, err, apperror.KindValidation)
			assert.Equal(t, 422, appErr.Code)
			assert.NotEmpty(t, appErr.Errors)
		})
	}
}

func TestSubmitBillCustomerReferences(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 10, 1250)
	customer := &entity.Customer{Name: "Asha Rao", PhoneNumber: "9876543210"}
	require.NoError(t, db.Create(customer).Error)
	svc := newBillingService(db)

	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines:    []CartLine{{CatalogItemID: 1, Quantity: 1}},
		Customer: CustomerRef{Kind: enum.CustomerRefKnown, CustomerID: customer.ID},
		ShopID:   strPtr(" counter-2 "),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Bill.CustomerID)
	assert.Equal(t, customer.ID, *res.Bill.CustomerID)
	assert.Equal(t, "counter-2", *res.Bill.BilledFromShopID)

	res, err = svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines:    []CartLine{{CatalogItemID: 1, Quantity: 1}},
		Customer: CustomerRef{Kind: enum.CustomerRefWalkIn, Name: "Ravi", Phone: ""},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Bill.CustomerID)
	assert.Equal(t, "Ravi", *res.Bill.CustomerNameTemp)
	assert.Nil(t, res.Bill.CustomerPhoneTemp)

	_, err = svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines:    []CartLine{{CatalogItemID: 1, Quantity: 1}},
		Customer: CustomerRef{Kind: enum.CustomerRefKnown, CustomerID: 999},
	})
	requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, 8, stockOf(t, db, 1))
}

func TestSubmitBillResubmissionCreatesNewBill(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 10, 1250)
	svc := newBillingService(db)
	input := &SubmitBillInput{Lines: []CartLine{{CatalogItemID: 1, Quantity: 2}}}

	first, err := svc.SubmitBill(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.SubmitBill(context.Background(), input)
	require.NoError(t, err)

	assert.NotEqual(t, first.Bill.ID, second.Bill.ID)
	assert.Equal(t, 6, stockOf(t, db, 1))
}

func TestSubmitBillConcurrentNoOversell(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Insulin", 5, 45000)
	svc := newBillingService(db)

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
				Lines: []CartLine{{CatalogItemID: 1, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.IsKind(err, apperror.KindInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, workers-5, rejected)
	assert.Equal(t, 0, stockOf(t, db, 1))
	assert.Equal(t, int64(5), countRows(t, db, &entity.Bill{}))
}

func TestSubmitBillPaymentReference(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 10, 1250)
	svc := newBillingService(db)

	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err, "missing payee must not fail a committed bill")
	assert.Nil(t, res.Payment)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, int64(1), countRows(t, db, &entity.Bill{}))

	seedPayee(t, db)
	res, err = svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Payment)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "25.00", res.Payment.Amount)
	assert.Equal(t, upi.Note(res.Bill.ID), res.Payment.Note)
	assert.Contains(t, res.Payment.URI, "pa=medplus%40okaxis")
}

func TestSubmitBillCancelledContextWritesNothing(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Amoxicillin", 10, 1250)
	svc := newBillingService(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SubmitBill(ctx, &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 1, Quantity: 1}},
	})
	appErr := requireKind(t, err, apperror.KindPersistence)
	assert.True(t, appErr.Retryable)
	assert.Equal(t, 10, stockOf(t, db, 1))
	assert.Zero(t, countRows(t, db, &entity.Bill{}))
}

func TestSubmitBillRejectsOverflowingTotal(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Bulk Vial", 100, 1_000_000_000_000_000_000)
	seedItem(t, db, 2, "Crate A", 5, 5_000_000_000_000_000_000)
	seedItem(t, db, 3, "Crate B", 5, 5_000_000_000_000_000_000)
	svc := newBillingService(db)

	_, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 1, Quantity: 10}},
	})
	appErr := requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, 422, appErr.Code)
	assert.Equal(t, 0, *appErr.LineIndex)
	assert.Equal(t, uint(1), *appErr.FailingItem)

	// Each line fits on its own, the running total does not
	_, err = svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 2, Quantity: 1}, {CatalogItemID: 3, Quantity: 1}},
	})
	appErr = requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, 1, *appErr.LineIndex)
	assert.Equal(t, uint(3), *appErr.FailingItem)

	assert.Equal(t, 100, stockOf(t, db, 1))
	assert.Equal(t, 5, stockOf(t, db, 2))
	assert.Zero(t, countRows(t, db, &entity.Bill{}))
	assert.Zero(t, countRows(t, db, &entity.BillItem{}))
}

// raceTx behaves like a transaction in which another submission sold the
// stock of staleID between the row read and the decrement.
type raceTx struct {
	items       []entity.CatalogItem
	staleID     uint
	decremented []uint
}

func (r *raceTx) LockCatalogItems(_ context.Context, ids []uint) ([]entity.CatalogItem, error) {
	var out []entity.CatalogItem
	for _, item := range r.items {
		for _, id := range ids {
			if item.ID == id {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (r *raceTx) GetCustomer(context.Context, uint) (*entity.Customer, error) { return nil, nil }

func (r *raceTx) CreateBill(_ context.Context, bill *entity.Bill) error {
	bill.ID = 1
	return nil
}

func (r *raceTx) DecrementStock(_ context.Context, id uint, _ int) (bool, error) {
	r.decremented = append(r.decremented, id)
	return id != r.staleID, nil
}

type recordingStore struct {
	tx    *raceTx
	fnErr error
}

func (s *recordingStore) RunInTx(_ context.Context, fn func(tx repository.BillingTx) error) error {
	s.fnErr = fn(s.tx)
	return s.fnErr
}

func TestSubmitBillConditionalDecrementFails(t *testing.T) {
	store := &recordingStore{tx: &raceTx{
		items: []entity.CatalogItem{
			{ID: 1, Name: "Amoxicillin", BatchNo: "A1", SellingPrice: cents(1250), ExpiryDate: day(2027, time.March, 15), Quantity: 5},
			{ID: 2, Name: "Cetirizine", BatchNo: "C1", SellingPrice: cents(300), ExpiryDate: day(2027, time.March, 15), Quantity: 5},
		},
		staleID: 2,
	}}
	svc := NewBillingService(store, nil, 0).WithClock(fixedClock)

	res, err := svc.SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 1, Quantity: 1}, {CatalogItemID: 2, Quantity: 2}},
	})
	assert.Nil(t, res)
	appErr := requireKind(t, err, apperror.KindInsufficientStock)
	assert.Equal(t, 409, appErr.Code)
	require.NotNil(t, appErr.LineIndex)
	assert.Equal(t, 1, *appErr.LineIndex)
	require.NotNil(t, appErr.FailingItem)
	assert.Equal(t, uint(2), *appErr.FailingItem)

	// The unit of work reported failure, so the store rolls back
	require.Error(t, store.fnErr)
	assert.True(t, apperror.IsKind(store.fnErr, apperror.KindInsufficientStock))
	assert.Equal(t, []uint{1, 2}, store.tx.decremented)
}

func TestServicesDefaultToUTCClock(t *testing.T) {
	assert.Equal(t, time.UTC, NewBillingService(nil, nil, 0).now().Location())
	assert.Equal(t, time.UTC, NewCatalogService(nil).now().Location())
	assert.Equal(t, time.UTC, NewDashboardService(nil, nil, nil, nil, 10).now().Location())
	assert.Equal(t, time.UTC, NewMaintenanceService(nil, nil).now().Location())
}
