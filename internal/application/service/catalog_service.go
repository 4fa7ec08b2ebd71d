package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/expiry"
	"github.com/sangkips/pharmacy-pos-api/pkg/money"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// BillingSearchLimit caps the billing screen's type-ahead results
const BillingSearchLimit = 10

// CatalogService handles inventory maintenance of stocked batches
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	now         func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo, now: expiry.Now}
}

// WithClock replaces the clock used for expiry classification
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// CatalogItemView is a catalog row as shown to clients, prices in decimals
// and the expiry status computed for today.
type CatalogItemView struct {
	ID           uint     `json:"id"`
	Barcode      *string  `json:"barcode,omitempty"`
	Name         string   `json:"name"`
	BatchNo      string   `json:"batch_no"`
	CostPrice    *float64 `json:"cost_price"`
	SellingPrice *float64 `json:"selling_price"`
	MfgDate      string   `json:"mfg_date,omitempty"`
	ExpiryDate   string   `json:"expiry_date"`
	Quantity     int      `json:"quantity"`
	Supplier     *string  `json:"supplier,omitempty"`
	ShelfNo      *string  `json:"shelf_no,omitempty"`
	BoxNo        *string  `json:"box_no,omitempty"`
	ShopID       *string  `json:"shop_id,omitempty"`
	expiry.Info
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func centsToFloat(c *int64) *float64 {
	if c == nil {
		return nil
	}
	f := money.Float(*c)
	return &f
}

// NewCatalogItemView builds the client view of item at now
func NewCatalogItemView(item *entity.CatalogItem, now time.Time) CatalogItemView {
	v := CatalogItemView{
		ID:           item.ID,
		Barcode:      item.Barcode,
		Name:         item.Name,
		BatchNo:      item.BatchNo,
		CostPrice:    centsToFloat(item.CostPrice),
		SellingPrice: centsToFloat(item.SellingPrice),
		ExpiryDate:   item.ExpiryDate.Format(expiry.DateLayout),
		Quantity:     item.Quantity,
		Supplier:     item.Supplier,
		ShelfNo:      item.ShelfNo,
		BoxNo:        item.BoxNo,
		ShopID:       item.ShopID,
		Info:         expiry.Describe(expiry.Classify(&item.ExpiryDate, now)),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
	if item.MfgDate != nil {
		v.MfgDate = item.MfgDate.Format(expiry.DateLayout)
	}
	return v
}

func (s *CatalogService) views(items []entity.CatalogItem) []CatalogItemView {
	now := s.now()
	out := make([]CatalogItemView, len(items))
	for i := range items {
		out[i] = NewCatalogItemView(&items[i], now)
	}
	return out
}

// CatalogItemInput represents the create/update input of a batch
type CatalogItemInput struct {
	Barcode      string
	Name         string
	BatchNo      string
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	MfgDate      string
	ExpiryDate   string
	Quantity     int
	Supplier     string
	ShelfNo      string
	BoxNo        string
	ShopID       string
}

// toEntity validates input and copies it onto item
func (in *CatalogItemInput) toEntity(item *entity.CatalogItem) error {
	var fieldErrors []apperror.FieldError
	add := func(field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: msg})
	}

	name := strings.TrimSpace(in.Name)
	batch := strings.TrimSpace(in.BatchNo)
	if name == "" {
		add("name", "is required")
	}
	if batch == "" {
		add("batch_no", "is required")
	}
	if in.Quantity < 0 {
		add("quantity", "must not be negative")
	}

	exp, err := time.Parse(expiry.DateLayout, strings.TrimSpace(in.ExpiryDate))
	if err != nil {
		add("expiry_date", "must be a date in YYYY-MM-DD format")
	}

	var mfg *time.Time
	if strings.TrimSpace(in.MfgDate) != "" {
		t, err := time.Parse(expiry.DateLayout, strings.TrimSpace(in.MfgDate))
		switch {
		case err != nil:
			add("mfg_date", "must be a date in YYYY-MM-DD format")
		case !exp.IsZero() && t.After(exp):
			add("mfg_date", "must not be after the expiry date")
		default:
			mfg = &t
		}
	}

	var cost, selling *int64
	if in.CostPrice != nil {
		switch {
		case in.CostPrice.IsNegative():
			add("cost_price", "must not be negative")
		case in.CostPrice.GreaterThan(money.MaxAmount):
			add("cost_price", "must not exceed "+money.Format(money.MaxCents))
		default:
			c := money.ToCents(*in.CostPrice)
			cost = &c
		}
	}
	if in.SellingPrice != nil {
		switch {
		case in.SellingPrice.IsNegative():
			add("selling_price", "must not be negative")
		case in.SellingPrice.GreaterThan(money.MaxAmount):
			add("selling_price", "must not exceed "+money.Format(money.MaxCents))
		default:
			c := money.ToCents(*in.SellingPrice)
			selling = &c
		}
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}

	item.Barcode = nonEmpty(in.Barcode)
	item.Name = name
	item.BatchNo = batch
	item.CostPrice = cost
	item.SellingPrice = selling
	item.MfgDate = mfg
	item.ExpiryDate = exp
	item.Quantity = in.Quantity
	item.Supplier = nonEmpty(in.Supplier)
	item.ShelfNo = nonEmpty(in.ShelfNo)
	item.BoxNo = nonEmpty(in.BoxNo)
	item.ShopID = nonEmpty(in.ShopID)
	return nil
}

// CreateItem adds a new batch to the catalog
func (s *CatalogService) CreateItem(ctx context.Context, input *CatalogItemInput) (*CatalogItemView, error) {
	item := &entity.CatalogItem{}
	if err := input.toEntity(item); err != nil {
		return nil, err
	}

	if err := s.catalogRepo.Create(ctx, item); err != nil {
		return nil, apperror.NewPersistenceError("create catalog item", err)
	}

	v := NewCatalogItemView(item, s.now())
	return &v, nil
}

// UpdateItem replaces the editable fields of a batch
func (s *CatalogService) UpdateItem(ctx context.Context, id uint, input *CatalogItemInput) (*CatalogItemView, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load catalog item", err)
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Medicine")
	}

	if err := input.toEntity(item); err != nil {
		return nil, err
	}

	if err := s.catalogRepo.Update(ctx, item); err != nil {
		return nil, apperror.NewPersistenceError("update catalog item", err)
	}

	v := NewCatalogItemView(item, s.now())
	return &v, nil
}

// GetItem retrieves one batch
func (s *CatalogService) GetItem(ctx context.Context, id uint) (*CatalogItemView, error) {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load catalog item", err)
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Medicine")
	}
	v := NewCatalogItemView(item, s.now())
	return &v, nil
}

// DeleteItem removes a batch that was never billed
func (s *CatalogService) DeleteItem(ctx context.Context, id uint) error {
	item, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NewPersistenceError("load catalog item", err)
	}
	if item == nil {
		return apperror.NewNotFoundError("Medicine")
	}

	billed, err := s.catalogRepo.HasBillHistory(ctx, id)
	if err != nil {
		return apperror.NewPersistenceError("check bill history", err)
	}
	if billed {
		return apperror.NewConflictError("Medicine has billing history and cannot be deleted; set its quantity to 0 instead")
	}

	if err := s.catalogRepo.Delete(ctx, id); err != nil {
		return apperror.NewPersistenceError("delete catalog item", err)
	}
	return nil
}

// ListItemsInput carries catalog list filters
type ListItemsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	ShopID     string
	Expiry     string
	LowStock   int
	SortBy     string
	SortOrder  string
}

// ListItems lists batches with filtering, nearest expiry first by default
func (s *CatalogService) ListItems(ctx context.Context, input *ListItemsInput) (*pagination.PaginatedResult[CatalogItemView], error) {
	filter := repository.ExpiryFilter(strings.ToLower(strings.TrimSpace(input.Expiry)))
	switch filter {
	case repository.ExpiryFilterAll, repository.ExpiryFilterExpired, repository.ExpiryFilterSoon, repository.ExpiryFilterGood:
	default:
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "expiry", Message: "must be one of expired, soon, good"},
		})
	}

	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	today := expiry.Today(s.now())
	params := &repository.CatalogFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		ShopID:     input.ShopID,
		Expiry:     filter,
		Today:      today,
		SoonUntil:  today.Add(expiry.SoonWindow),
		LowStock:   input.LowStock,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	}

	items, total, err := s.catalogRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError("list catalog items", err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(s.views(items), pag), nil
}

// ListItemsWithCursor lists batches newest first using keyset pagination
func (s *CatalogService) ListItemsWithCursor(ctx context.Context, params *repository.CatalogCursorFilterParams) (*pagination.CursorPaginatedResult[CatalogItemView], error) {
	params.Cursor.Validate()
	if _, err := params.Cursor.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}

	items, err := s.catalogRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError("list catalog items", err)
	}

	cursorPag, page := pagination.NewCursorPagination(items, params.Cursor.Limit,
		func(c entity.CatalogItem) uint { return c.ID },
	)
	return pagination.NewCursorPaginatedResult(s.views(page), cursorPag), nil
}

// SearchForBilling finds batches that can be billed today by name, shop or barcode
func (s *CatalogService) SearchForBilling(ctx context.Context, term string) ([]CatalogItemView, error) {
	items, err := s.catalogRepo.SearchForBilling(ctx, term, expiry.Today(s.now()), BillingSearchLimit)
	if err != nil {
		return nil, apperror.NewPersistenceError("search catalog", err)
	}
	return s.views(items), nil
}

// ExpiringItems returns in-stock batches that are expired or expire within
// the soon window.
func (s *CatalogService) ExpiringItems(ctx context.Context) ([]CatalogItemView, error) {
	until := expiry.Today(s.now()).Add(expiry.SoonWindow + 24*time.Hour)
	items, err := s.catalogRepo.ListExpiringBefore(ctx, until)
	if err != nil {
		return nil, apperror.NewPersistenceError("list expiring items", err)
	}
	return s.views(items), nil
}
