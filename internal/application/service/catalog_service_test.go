package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/pharmacy-pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/expiry"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

func newCatalogService(db *gorm.DB) *CatalogService {
	return NewCatalogService(infraRepo.NewCatalogRepository(db)).WithClock(fixedClock)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateItem(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(db)

	view, err := svc.CreateItem(context.Background(), &CatalogItemInput{
		Name:         "  Amoxicillin 500mg ",
		BatchNo:      "AMX-01",
		SellingPrice: decPtr("12.50"),
		CostPrice:    decPtr("15.00"),
		MfgDate:      "2025-01-01",
		ExpiryDate:   "2026-04-01",
		Quantity:     40,
		ShelfNo:      "A3",
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "Amoxicillin 500mg", view.Name)
	require.NotNil(t, view.SellingPrice)
	assert.Equal(t, 12.5, *view.SellingPrice)
	assert.Equal(t, "2026-04-01", view.ExpiryDate)
	assert.Equal(t, "2025-01-01", view.MfgDate)
	assert.Equal(t, expiry.StatusExpiresSoon, view.Key)
	assert.Nil(t, view.Supplier)

	var stored entity.CatalogItem
	require.NoError(t, db.First(&stored, view.ID).Error)
	require.NotNil(t, stored.SellingPrice)
	assert.Equal(t, int64(1250), *stored.SellingPrice)
}

func TestCreateItemValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CatalogItemInput
		field string
	}{
		{"missing name", CatalogItemInput{BatchNo: "B1", ExpiryDate: "2027-01-01"}, "name"},
		{"missing batch", CatalogItemInput{Name: "X", ExpiryDate: "2027-01-01"}, "batch_no"},
		{"bad expiry", CatalogItemInput{Name: "X", BatchNo: "B1", ExpiryDate: "01/01/2027"}, "expiry_date"},
		{"negative quantity", CatalogItemInput{Name: "X", BatchNo: "B1", ExpiryDate: "2027-01-01", Quantity: -1}, "quantity"},
		{"mfg after expiry", CatalogItemInput{Name: "X", BatchNo: "B1", MfgDate: "2027-02-01", ExpiryDate: "2027-01-01"}, "mfg_date"},
		{"negative price", CatalogItemInput{Name: "X", BatchNo: "B1", ExpiryDate: "2027-01-01", SellingPrice: decPtr("-1")}, "selling_price"},
		{"price above maximum", CatalogItemInput{Name: "X", BatchNo: "B1", ExpiryDate: "2027-01-01", SellingPrice: decPtr("10000000000000000")}, "selling_price"},
		{"cost above maximum", CatalogItemInput{Name: "X", BatchNo: "B1", ExpiryDate: "2027-01-01", CostPrice: decPtr("10000000.01")}, "cost_price"},
	}

	db := newTestDB(t)
	svc := newCatalogService(db)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(context.Background(), &tt.input)
			appErr := requireKind(t, err, apperror.KindValidation)
			fields := make([]string, 0, len(appErr.Errors))
			for _, fe := range appErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
	assert.Zero(t, countRows(t, db, &entity.CatalogItem{}))
}

func TestUpdateItemNotFound(t *testing.T) {
	svc := newCatalogService(newTestDB(t))
	_, err := svc.UpdateItem(context.Background(), 99, &CatalogItemInput{Name: "X", BatchNo: "B", ExpiryDate: "2027-01-01"})
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestUpdateItemRejectsOversizedPrice(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Cetirizine", 10, 300)
	svc := newCatalogService(db)

	_, err := svc.UpdateItem(context.Background(), 1, &CatalogItemInput{
		Name:         "Cetirizine",
		BatchNo:      "B-Cetirizine",
		SellingPrice: decPtr("1e16"),
		ExpiryDate:   "2027-03-15",
		Quantity:     10,
	})
	requireKind(t, err, apperror.KindValidation)

	var stored entity.CatalogItem
	require.NoError(t, db.First(&stored, 1).Error)
	require.NotNil(t, stored.SellingPrice)
	assert.Equal(t, int64(300), *stored.SellingPrice)

	view, err := svc.UpdateItem(context.Background(), 1, &CatalogItemInput{
		Name:         "Cetirizine",
		BatchNo:      "B-Cetirizine",
		SellingPrice: decPtr("10000000.00"),
		ExpiryDate:   "2027-03-15",
		Quantity:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1e7, *view.SellingPrice)
}

func TestUpdateItemClearsPrice(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Cetirizine", 10, 300)
	svc := newCatalogService(db)

	view, err := svc.UpdateItem(context.Background(), 1, &CatalogItemInput{
		Name: "Cetirizine 10mg", BatchNo: "C-2", ExpiryDate: "2027-06-30", Quantity: 0,
	})
	require.NoError(t, err)
	assert.Nil(t, view.SellingPrice)
	assert.Equal(t, 0, stockOf(t, db, 1))
}

func TestDeleteItem(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Ibuprofen", 10, 500)
	seedItem(t, db, 2, "Aspirin", 10, 500)
	svc := newCatalogService(db)

	_, err := newBillingService(db).SubmitBill(context.Background(), &SubmitBillInput{
		Lines: []CartLine{{CatalogItemID: 2, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(context.Background(), 1))
	assert.Equal(t, int64(1), countRows(t, db, &entity.CatalogItem{}))

	err = svc.DeleteItem(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	err = svc.DeleteItem(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestListItemsExpiryFilter(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Old", 5, 100, withExpiry(day(2026, time.March, 1)))
	seedItem(t, db, 2, "Soon", 5, 100, withExpiry(day(2026, time.April, 10)))
	seedItem(t, db, 3, "Fresh", 5, 100, withExpiry(day(2027, time.January, 1)))
	svc := newCatalogService(db)

	all, err := svc.ListItems(context.Background(), &ListItemsInput{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, []string{"Old", "Soon", "Fresh"}, []string{all.Items[0].Name, all.Items[1].Name, all.Items[2].Name})
	assert.Equal(t, expiry.StatusExpired, all.Items[0].Key)
	assert.Equal(t, "badge-danger", all.Items[0].Badge)

	for filter, want := range map[string]string{"expired": "Old", "soon": "Soon", "GOOD": "Fresh"} {
		res, err := svc.ListItems(context.Background(), &ListItemsInput{Expiry: filter})
		require.NoError(t, err)
		require.Len(t, res.Items, 1, filter)
		assert.Equal(t, want, res.Items[0].Name)
		assert.Equal(t, int64(1), res.Pagination.Total)
	}

	_, err = svc.ListItems(context.Background(), &ListItemsInput{Expiry: "stale"})
	requireKind(t, err, apperror.KindValidation)
}

func TestListItemsSearchAndShop(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Paracetamol 500", 5, 100, withShop("north"))
	seedItem(t, db, 2, "Paracetamol 650", 5, 100, withShop("south"))
	seedItem(t, db, 3, "Dolo_100%", 5, 100)
	svc := newCatalogService(db)

	res, err := svc.ListItems(context.Background(), &ListItemsInput{Search: "PARACET"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = svc.ListItems(context.Background(), &ListItemsInput{Search: "paracetamol", ShopID: "south"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, uint(2), res.Items[0].ID)

	res, err = svc.ListItems(context.Background(), &ListItemsInput{Search: "_100%"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, uint(3), res.Items[0].ID)
}

func TestListItemsWithCursor(t *testing.T) {
	db := newTestDB(t)
	for i := uint(1); i <= 5; i++ {
		seedItem(t, db, i, "Item", 1, 100)
	}
	svc := newCatalogService(db)

	first, err := svc.ListItemsWithCursor(context.Background(), cursorParams("", 2))
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, uint(5), first.Items[0].ID)
	require.True(t, first.Pagination.HasNext)
	require.NotNil(t, first.Pagination.NextCursor)

	second, err := svc.ListItemsWithCursor(context.Background(), cursorParams(*first.Pagination.NextCursor, 2))
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, uint(3), second.Items[0].ID)

	_, err = svc.ListItemsWithCursor(context.Background(), cursorParams("%%%", 2))
	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func TestSearchForBilling(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Azithro good", 5, 100)
	seedItem(t, db, 2, "Azithro expired", 5, 100, withExpiry(day(2026, time.March, 14)))
	seedItem(t, db, 3, "Azithro today", 5, 100, withExpiry(day(2026, time.March, 15)))
	seedItem(t, db, 4, "Azithro empty", 0, 100)
	seedItem(t, db, 5, "Azithro unpriced", 5, 0, withPrice(nil))
	seedItem(t, db, 6, "Other", 5, 100, withShop("azithro-shop"))
	svc := newCatalogService(db)

	res, err := svc.SearchForBilling(context.Background(), "azithro")
	require.NoError(t, err)
	ids := make([]uint, 0, len(res))
	for _, v := range res {
		ids = append(ids, v.ID)
	}
	assert.ElementsMatch(t, []uint{1, 3, 6}, ids)
}

func TestExpiringItems(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Old", 5, 100, withExpiry(day(2026, time.March, 1)))
	seedItem(t, db, 2, "Edge", 5, 100, withExpiry(day(2026, time.April, 14)))
	seedItem(t, db, 3, "Later", 5, 100, withExpiry(day(2026, time.April, 15)))
	seedItem(t, db, 4, "Gone", 0, 100, withExpiry(day(2026, time.March, 1)))
	svc := newCatalogService(db)

	res, err := svc.ExpiringItems(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Old", res[0].Name)
	assert.Equal(t, "Edge", res[1].Name)
	assert.Equal(t, expiry.StatusExpiresSoon, res[1].Key)
}

func cursorParams(cursor string, limit int) *repository.CatalogCursorFilterParams {
	return &repository.CatalogCursorFilterParams{
		Cursor: &pagination.CursorParams{Cursor: cursor, Limit: limit},
	}
}
