package repository

import (
	"context"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// BillRepository defines read access to committed bills. Bills are only
// written through BillingStore.
type BillRepository interface {
	GetWithItems(ctx context.Context, id uint) (*entity.Bill, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	ListWithCursor(ctx context.Context, params *BillCursorFilterParams) ([]entity.Bill, error)
	Count(ctx context.Context) (int64, error)
}

// BillFilterParams contains filtering parameters for bill history queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	CustomerID *uint
	ShopID     string
	From       *time.Time
	To         *time.Time
}

// BillCursorFilterParams contains cursor-based filtering parameters for bill history queries
type BillCursorFilterParams struct {
	Cursor     *pagination.CursorParams
	CustomerID *uint
	ShopID     string
}

// BillingStore runs a bill submission as one unit of work.
type BillingStore interface {
	// RunInTx executes fn inside a single transaction. The transaction
	// commits when fn returns nil and rolls back otherwise, including when
	// ctx is cancelled before commit.
	RunInTx(ctx context.Context, fn func(tx BillingTx) error) error
}

// BillingTx is the set of operations available to a bill submission inside
// its transaction.
type BillingTx interface {
	// LockCatalogItems reads the given batches with row locks held until the
	// transaction ends. Rows are locked in ascending id order. Missing ids
	// are simply absent from the result.
	LockCatalogItems(ctx context.Context, ids []uint) ([]entity.CatalogItem, error)
	GetCustomer(ctx context.Context, id uint) (*entity.Customer, error)
	// CreateBill inserts the header and then its items.
	CreateBill(ctx context.Context, bill *entity.Bill) error
	// DecrementStock subtracts qty only when enough stock remains. It
	// returns false when no row was updated.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
}
