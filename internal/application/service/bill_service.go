package service

import (
	"context"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// BillService serves bill history. Bills are created by BillingService only.
type BillService struct {
	billRepo repository.BillRepository
}

// NewBillService creates a new bill service
func NewBillService(billRepo repository.BillRepository) *BillService {
	return &BillService{billRepo: billRepo}
}

// GetBill retrieves a bill with its lines
func (s *BillService) GetBill(ctx context.Context, id uint) (*entity.Bill, error) {
	bill, err := s.billRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills lists bills newest first
func (s *BillService) ListBills(ctx context.Context, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	if params.From != nil && params.To != nil && !params.From.Before(*params.To) {
		return nil, apperror.NewBadRequestError("from must be before to")
	}

	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError("list bills", err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, pag), nil
}

// ListBillsWithCursor lists bills newest first using keyset pagination
func (s *BillService) ListBillsWithCursor(ctx context.Context, params *repository.BillCursorFilterParams) (*pagination.CursorPaginatedResult[entity.Bill], error) {
	params.Cursor.Validate()
	if _, err := params.Cursor.DecodeCursor(); err != nil {
		return nil, apperror.NewBadRequestError("Invalid cursor")
	}

	bills, err := s.billRepo.ListWithCursor(ctx, params)
	if err != nil {
		return nil, apperror.NewPersistenceError("list bills", err)
	}

	cursorPag, items := pagination.NewCursorPagination(bills, params.Cursor.Limit,
		func(b entity.Bill) uint { return b.ID },
	)
	return pagination.NewCursorPaginatedResult(items, cursorPag), nil
}
