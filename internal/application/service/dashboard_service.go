package service

import (
	"context"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/expiry"
	"github.com/sangkips/pharmacy-pos-api/pkg/money"
)

const (
	dashboardDays     = 7
	dashboardTopItems = 5
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	catalogRepo   repository.CatalogRepository
	customerRepo  repository.CustomerRepository
	billRepo      repository.BillRepository
	analyticsRepo repository.AnalyticsRepository
	lowStock      int
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	catalogRepo repository.CatalogRepository,
	customerRepo repository.CustomerRepository,
	billRepo repository.BillRepository,
	analyticsRepo repository.AnalyticsRepository,
	lowStock int,
) *DashboardService {
	return &DashboardService{
		catalogRepo:   catalogRepo,
		customerRepo:  customerRepo,
		billRepo:      billRepo,
		analyticsRepo: analyticsRepo,
		lowStock:      lowStock,
		now:           expiry.Now,
	}
}

// WithClock replaces the clock used for "today"
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalItems     int64             `json:"total_items"`
	TotalUnits     int64             `json:"total_units"`
	TotalCustomers int64             `json:"total_customers"`
	TotalBills     int64             `json:"total_bills"`
	TodayRevenue   float64           `json:"today_revenue"`
	TodayBills     int64             `json:"today_bills"`
	ExpiredCount   int64             `json:"expired_count"`
	ExpiringSoon   int64             `json:"expiring_soon_count"`
	LowStockCount  int64             `json:"low_stock_count"`
	OutOfStock     int64             `json:"out_of_stock_count"`
	DailySalesData []DailySalesPoint `json:"daily_sales_data"`
	TopItems       []TopItemPoint    `json:"top_items"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string  `json:"date"`
	Bills   int     `json:"bills"`
	Revenue float64 `json:"revenue"`
}

// TopItemPoint represents a best selling batch
type TopItemPoint struct {
	CatalogItemID uint    `json:"medicine_id"`
	Name          string  `json:"name"`
	QuantitySold  int64   `json:"quantity_sold"`
	Revenue       float64 `json:"revenue"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := s.now()
	today := expiry.Today(now)

	summary, err := s.catalogRepo.StockSummary(ctx, today, today.Add(expiry.SoonWindow), s.lowStock)
	if err != nil {
		return nil, apperror.NewPersistenceError("summarise stock", err)
	}
	stats.TotalItems = summary.TotalItems
	stats.TotalUnits = summary.TotalUnits
	stats.ExpiredCount = summary.Expired
	stats.ExpiringSoon = summary.ExpiringSoon
	stats.LowStockCount = summary.LowStock
	stats.OutOfStock = summary.OutOfStock

	if stats.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, apperror.NewPersistenceError("count customers", err)
	}
	if stats.TotalBills, err = s.billRepo.Count(ctx); err != nil {
		return nil, apperror.NewPersistenceError("count bills", err)
	}

	// Daily buckets for the last week, oldest first
	start := today.AddDate(0, 0, -(dashboardDays - 1))
	totals, err := s.analyticsRepo.BillTotalsSince(ctx, start)
	if err != nil {
		return nil, apperror.NewPersistenceError("load sales", err)
	}

	buckets := make(map[string]*DailySalesPoint, dashboardDays)
	stats.DailySalesData = make([]DailySalesPoint, dashboardDays)
	revenue := make([]int64, dashboardDays)
	for i := 0; i < dashboardDays; i++ {
		day := start.AddDate(0, 0, i).Format(expiry.DateLayout)
		stats.DailySalesData[i].Date = day
		buckets[day] = &stats.DailySalesData[i]
	}
	for _, t := range totals {
		day := expiry.DateOf(t.CreatedAt.In(now.Location()))
		p, ok := buckets[day.Format(expiry.DateLayout)]
		if !ok {
			continue
		}
		p.Bills++
		idx := int(day.Sub(start).Hours() / 24)
		revenue[idx] += t.TotalAmount
	}
	for i := range stats.DailySalesData {
		stats.DailySalesData[i].Revenue = money.Float(revenue[i])
	}
	last := stats.DailySalesData[dashboardDays-1]
	stats.TodayBills = int64(last.Bills)
	stats.TodayRevenue = last.Revenue

	top, err := s.analyticsRepo.TopItems(ctx, dashboardTopItems)
	if err != nil {
		return nil, apperror.NewPersistenceError("load top items", err)
	}
	stats.TopItems = make([]TopItemPoint, len(top))
	for i, t := range top {
		stats.TopItems[i] = TopItemPoint{
			CatalogItemID: t.CatalogItemID,
			Name:          t.Name,
			QuantitySold:  t.QuantitySold,
			Revenue:       money.Float(t.Revenue),
		}
	}

	return stats, nil
}
