package repository

import (
	"context"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// CatalogRepository defines the interface for catalog (stocked batch) data operations
type CatalogRepository interface {
	Create(ctx context.Context, item *entity.CatalogItem) error
	GetByID(ctx context.Context, id uint) (*entity.CatalogItem, error)
	Update(ctx context.Context, item *entity.CatalogItem) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *CatalogFilterParams) ([]entity.CatalogItem, int64, error)
	ListWithCursor(ctx context.Context, params *CatalogCursorFilterParams) ([]entity.CatalogItem, error)
	// SearchForBilling returns batches that can be added to a cart right now:
	// priced, in stock and not expired on today.
	SearchForBilling(ctx context.Context, term string, today time.Time, limit int) ([]entity.CatalogItem, error)
	// ListExpiringBefore returns in-stock batches whose expiry date is before the given date.
	ListExpiringBefore(ctx context.Context, before time.Time) ([]entity.CatalogItem, error)
	// HasBillHistory reports whether any bill line references the batch.
	HasBillHistory(ctx context.Context, id uint) (bool, error)
	StockSummary(ctx context.Context, today time.Time, soonUntil time.Time, lowStock int) (*StockSummary, error)
}

// ExpiryFilter narrows catalog listings by expiry status
type ExpiryFilter string

const (
	ExpiryFilterAll     ExpiryFilter = ""
	ExpiryFilterExpired ExpiryFilter = "expired"
	ExpiryFilterSoon    ExpiryFilter = "soon"
	ExpiryFilterGood    ExpiryFilter = "good"
)

// CatalogFilterParams contains filtering parameters for catalog queries
type CatalogFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	ShopID     string
	Expiry     ExpiryFilter
	// Today and SoonUntil bound the expiry filter. Both are calendar dates.
	Today     time.Time
	SoonUntil time.Time
	// LowStock keeps rows with quantity at or below this value when > 0.
	LowStock  int
	SortBy    string
	SortOrder string
}

// CatalogCursorFilterParams contains cursor-based filtering parameters for catalog queries
type CatalogCursorFilterParams struct {
	Cursor *pagination.CursorParams
	Search string
	ShopID string
}

// StockSummary aggregates catalog counts for the dashboard
type StockSummary struct {
	TotalItems   int64
	TotalUnits   int64
	Expired      int64
	ExpiringSoon int64
	LowStock     int64
	OutOfStock   int64
}
