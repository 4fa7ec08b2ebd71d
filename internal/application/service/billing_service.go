package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/expiry"
	"github.com/sangkips/pharmacy-pos-api/pkg/money"
	"github.com/sangkips/pharmacy-pos-api/pkg/upi"
)

// PaymentReferencer produces the payment artifact for a committed bill
type PaymentReferencer interface {
	Reference(ctx context.Context, amountCents int64, billID uint) (*upi.Reference, error)
}

// BillingService turns a cart into a committed bill. It keeps no state
// between calls: every decision is made from the request and a fresh read
// of the catalog inside the submission's transaction.
type BillingService struct {
	store    repository.BillingStore
	payments PaymentReferencer
	timeout  time.Duration
	now      func() time.Time
}

// NewBillingService creates a new billing service. A zero timeout leaves the
// caller's deadline alone.
func NewBillingService(store repository.BillingStore, payments PaymentReferencer, timeout time.Duration) *BillingService {
	return &BillingService{
		store:    store,
		payments: payments,
		timeout:  timeout,
		now:      expiry.Now,
	}
}

// WithClock replaces the clock used for expiry checks
func (s *BillingService) WithClock(now func() time.Time) *BillingService {
	s.now = now
	return s
}

// CartLine is one requested line of a cart
type CartLine struct {
	CatalogItemID uint
	Quantity      int
	// ClientUnitPrice is advisory. It is compared and logged, never billed.
	ClientUnitPrice *decimal.Decimal
}

// CustomerRef identifies who the bill is for
type CustomerRef struct {
	Kind       enum.CustomerRefKind
	CustomerID uint
	Name       string
	Phone      string
}

// SubmitBillInput represents a cart submission
type SubmitBillInput struct {
	Lines    []CartLine
	Customer CustomerRef
	ShopID   *string
	// ClientTotal is advisory, like the per-line client prices.
	ClientTotal *decimal.Decimal
}

// BillResult is the outcome of a committed submission
type BillResult struct {
	Bill     *entity.Bill
	Payment  *upi.Reference
	Warnings []string
}

// SubmitBill validates the cart, prices it from the catalog, stores the bill
// and decrements stock as one unit of work. Nothing is written unless every
// step succeeds.
func (s *BillingService) SubmitBill(ctx context.Context, input *SubmitBillInput) (*BillResult, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	txCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var bill *entity.Bill
	err := s.store.RunInTx(txCtx, func(tx repository.BillingTx) error {
		var err error
		bill, err = s.buildAndStore(txCtx, tx, input)
		if err != nil {
			return err
		}
		// A deadline that passed mid-way must not commit
		if ctxErr := txCtx.Err(); ctxErr != nil {
			return apperror.NewPersistenceError("submit bill", ctxErr)
		}
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewPersistenceError("commit bill", err)
	}

	result := &BillResult{Bill: bill}

	// The bill is committed from here on. Payment problems only warn.
	if s.payments != nil {
		ref, err := s.payments.Reference(ctx, bill.TotalAmount, bill.ID)
		switch {
		case err == nil:
			result.Payment = ref
		case apperror.IsKind(err, apperror.KindConfiguration):
			result.Warnings = append(result.Warnings, apperror.GetAppError(err).Message)
		default:
			log.Printf("Payment reference for bill %d failed: %v", bill.ID, err)
			result.Warnings = append(result.Warnings, "payment reference could not be generated")
		}
	}

	return result, nil
}

func (s *BillingService) buildAndStore(ctx context.Context, tx repository.BillingTx, input *SubmitBillInput) (*entity.Bill, error) {
	items, err := tx.LockCatalogItems(ctx, distinctItemIDs(input.Lines))
	if err != nil {
		return nil, apperror.NewPersistenceError("lock catalog items", err)
	}
	catalog := make(map[uint]*entity.CatalogItem, len(items))
	for i := range items {
		catalog[items[i].ID] = &items[i]
	}

	bill := &entity.Bill{BilledFromShopID: trimmedOrNil(input.ShopID)}
	if err := s.attachCustomer(ctx, tx, bill, input.Customer); err != nil {
		return nil, err
	}

	now := s.now()
	remaining := make(map[uint]int, len(catalog))
	billItems := make([]entity.BillItem, 0, len(input.Lines))
	var total int64

	for i, line := range input.Lines {
		item, ok := catalog[line.CatalogItemID]
		if !ok {
			return nil, apperror.NewLineError(apperror.KindItemNotFound, i, line.CatalogItemID,
				fmt.Sprintf("Medicine with ID %d not found", line.CatalogItemID))
		}

		// Duplicate lines for the same batch draw from the same stock
		available, seen := remaining[item.ID]
		if !seen {
			available = item.Quantity
		}
		if line.Quantity > available {
			return nil, apperror.NewLineError(apperror.KindInsufficientStock, i, item.ID,
				fmt.Sprintf("Insufficient stock for %s (Batch: %s). Requested: %d, Available: %d",
					item.Name, item.BatchNo, line.Quantity, available))
		}
		if expiry.IsExpired(item.ExpiryDate, now) {
			return nil, apperror.NewLineError(apperror.KindExpiredItem, i, item.ID,
				fmt.Sprintf("%s (Batch: %s) expired on %s", item.Name, item.BatchNo, item.ExpiryDate.Format(expiry.DateLayout)))
		}
		if !item.Billable() {
			return nil, apperror.NewLineError(apperror.KindPriceNotSet, i, item.ID,
				fmt.Sprintf("Selling price not set for %s (Batch: %s)", item.Name, item.BatchNo))
		}
		remaining[item.ID] = available - line.Quantity

		unitPrice := *item.SellingPrice
		if unitPrice > (math.MaxInt64-total)/int64(line.Quantity) {
			appErr := apperror.NewLineError(apperror.KindValidation, i, item.ID,
				fmt.Sprintf("Amount for %s (Batch: %s) is too large to bill", item.Name, item.BatchNo))
			appErr.Errors = []apperror.FieldError{
				{Field: fmt.Sprintf("items[%d].quantity", i), Message: "line total exceeds the billable amount"},
			}
			return nil, appErr
		}
		lineTotal := unitPrice * int64(line.Quantity)
		total += lineTotal

		if line.ClientUnitPrice != nil {
			if clientCents := money.ToCents(*line.ClientUnitPrice); !money.WithinEpsilon(clientCents, unitPrice) {
				log.Printf("Billing: client price %s for item %d differs from catalog price %s, using catalog",
					money.Format(clientCents), item.ID, money.Format(unitPrice))
			}
		}

		billItems = append(billItems, entity.BillItem{
			LineNo:        i + 1,
			CatalogItemID: item.ID,
			NameSnapshot:  item.Name,
			Quantity:      line.Quantity,
			UnitPrice:     unitPrice,
			LineTotal:     lineTotal,
		})
	}

	if input.ClientTotal != nil {
		if clientCents := money.ToCents(*input.ClientTotal); !money.WithinEpsilon(clientCents, total) {
			log.Printf("Billing: client total %s differs from server total %s, using server total",
				money.Format(clientCents), money.Format(total))
		}
	}

	bill.TotalAmount = total
	bill.Items = billItems
	if err := tx.CreateBill(ctx, bill); err != nil {
		return nil, apperror.NewPersistenceError("create bill", err)
	}

	for i, bi := range bill.Items {
		ok, err := tx.DecrementStock(ctx, bi.CatalogItemID, bi.Quantity)
		if err != nil {
			return nil, apperror.NewPersistenceError("update stock", err)
		}
		if !ok {
			return nil, apperror.NewLineError(apperror.KindInsufficientStock, i, bi.CatalogItemID,
				fmt.Sprintf("Stock for %s changed while billing; please retry", bi.NameSnapshot))
		}
	}

	return bill, nil
}

func (s *BillingService) attachCustomer(ctx context.Context, tx repository.BillingTx, bill *entity.Bill, ref CustomerRef) error {
	switch ref.Kind {
	case enum.CustomerRefKnown:
		customer, err := tx.GetCustomer(ctx, ref.CustomerID)
		if err != nil {
			return apperror.NewPersistenceError("load customer", err)
		}
		if customer == nil {
			return apperror.NewValidationError([]apperror.FieldError{
				{Field: "customer.id", Message: fmt.Sprintf("customer %d does not exist", ref.CustomerID)},
			})
		}
		bill.CustomerID = &customer.ID
		bill.Customer = customer
	case enum.CustomerRefWalkIn:
		bill.CustomerNameTemp = nonEmpty(ref.Name)
		bill.CustomerPhoneTemp = nonEmpty(ref.Phone)
	}
	return nil
}

// validateSubmission rejects malformed input before the store is touched
func validateSubmission(input *SubmitBillInput) error {
	var fieldErrors []apperror.FieldError
	firstLine := -1
	var firstItem uint

	if input == nil || len(input.Lines) == 0 {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "items", Message: "cart is empty"},
		})
	}

	for i, line := range input.Lines {
		lineBad := false
		if line.CatalogItemID == 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].medicine_id", i),
				Message: "is required",
			})
			lineBad = true
		}
		if line.Quantity <= 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be a positive integer",
			})
			lineBad = true
		}
		if lineBad && firstLine < 0 {
			firstLine = i
			firstItem = line.CatalogItemID
		}
	}

	ref := input.Customer
	switch ref.Kind {
	case enum.CustomerRefNone, "":
	case enum.CustomerRefKnown:
		if ref.CustomerID == 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer.id", Message: "is required for a known customer"})
		}
	case enum.CustomerRefWalkIn:
		if strings.TrimSpace(ref.Name) == "" && strings.TrimSpace(ref.Phone) == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer", Message: "walk-in customer needs a name or phone"})
		}
	default:
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer.kind", Message: "must be none, known or walk_in"})
	}

	if len(fieldErrors) == 0 {
		return nil
	}

	appErr := apperror.NewValidationError(fieldErrors)
	if firstLine >= 0 {
		appErr.LineIndex = &firstLine
		if firstItem != 0 {
			appErr.FailingItem = &firstItem
		}
	}
	return appErr
}

// distinctItemIDs returns the cart's catalog ids once each, ascending, which
// is the order rows are locked in.
func distinctItemIDs(lines []CartLine) []uint {
	seen := make(map[uint]struct{}, len(lines))
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.CatalogItemID]; ok {
			continue
		}
		seen[l.CatalogItemID] = struct{}{}
		ids = append(ids, l.CatalogItemID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return nonEmpty(*s)
}
