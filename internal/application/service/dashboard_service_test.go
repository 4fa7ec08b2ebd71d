package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	infraRepo "github.com/sangkips/pharmacy-pos-api/internal/infrastructure/repository"
)

func TestGetDashboardStats(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 1, "Paracetamol", 50, 200)
	seedItem(t, db, 2, "Cough Syrup", 8, 1500, withExpiry(day(2026, time.April, 1)))
	seedItem(t, db, 3, "Old Drops", 4, 900, withExpiry(day(2026, time.February, 1)))
	seedItem(t, db, 4, "Empty", 0, 100)
	require.NoError(t, db.Create(&entity.Customer{Name: "Asha", PhoneNumber: "98"}).Error)

	billing := newBillingService(db)
	ctx := context.Background()
	first, err := billing.SubmitBill(ctx, &SubmitBillInput{Lines: []CartLine{
		{CatalogItemID: 1, Quantity: 10},
		{CatalogItemID: 2, Quantity: 1},
	}})
	require.NoError(t, err)
	second, err := billing.SubmitBill(ctx, &SubmitBillInput{Lines: []CartLine{{CatalogItemID: 1, Quantity: 5}}})
	require.NoError(t, err)
	old, err := billing.SubmitBill(ctx, &SubmitBillInput{Lines: []CartLine{{CatalogItemID: 2, Quantity: 2}}})
	require.NoError(t, err)

	require.NoError(t, db.Model(&entity.Bill{}).Where("id IN ?", []uint{first.Bill.ID, second.Bill.ID}).
		Update("created_at", testNow).Error)
	require.NoError(t, db.Model(&entity.Bill{}).Where("id = ?", old.Bill.ID).
		Update("created_at", testNow.AddDate(0, 0, -2)).Error)

	svc := NewDashboardService(
		infraRepo.NewCatalogRepository(db),
		infraRepo.NewCustomerRepository(db),
		infraRepo.NewBillRepository(db),
		infraRepo.NewAnalyticsRepository(db),
		10,
	).WithClock(fixedClock)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalItems)
	assert.Equal(t, int64(35+5+4), stats.TotalUnits)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(3), stats.TotalBills)
	assert.Equal(t, int64(1), stats.ExpiredCount)
	assert.Equal(t, int64(1), stats.ExpiringSoon)
	assert.Equal(t, int64(2), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.OutOfStock)

	assert.Equal(t, int64(2), stats.TodayBills)
	assert.Equal(t, 45.0, stats.TodayRevenue)

	require.Len(t, stats.DailySalesData, 7)
	assert.Equal(t, "2026-03-09", stats.DailySalesData[0].Date)
	assert.Equal(t, "2026-03-13", stats.DailySalesData[4].Date)
	assert.Equal(t, 1, stats.DailySalesData[4].Bills)
	assert.Equal(t, 30.0, stats.DailySalesData[4].Revenue)

	require.Len(t, stats.TopItems, 2)
	assert.Equal(t, uint(1), stats.TopItems[0].CatalogItemID)
	assert.Equal(t, int64(15), stats.TopItems[0].QuantitySold)
	assert.Equal(t, 30.0, stats.TopItems[0].Revenue)
}
