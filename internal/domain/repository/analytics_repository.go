package repository

import (
	"context"
	"time"
)

// TopItemResult represents a batch's sales performance
type TopItemResult struct {
	CatalogItemID uint
	Name          string
	QuantitySold  int64
	Revenue       int64 // cents
}

// BillTotal is the minimal projection of a bill used for sales aggregation
type BillTotal struct {
	ID          uint
	TotalAmount int64
	CreatedAt   time.Time
}

// AnalyticsRepository defines interface for sales aggregation queries
type AnalyticsRepository interface {
	// TopItems returns the best selling batches by quantity
	TopItems(ctx context.Context, limit int) ([]TopItemResult, error)
	// BillTotalsSince returns totals of bills created at or after since
	BillTotalsSince(ctx context.Context, since time.Time) ([]BillTotal, error)
}
