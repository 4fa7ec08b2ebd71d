package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/application/service"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// BillHandler handles bill submission and history requests
type BillHandler struct {
	billingService *service.BillingService
	billService    *service.BillService
	paymentService *service.PaymentService
	printerService *service.PrinterService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(
	billingService *service.BillingService,
	billService *service.BillService,
	paymentService *service.PaymentService,
	printerService *service.PrinterService,
) *BillHandler {
	return &BillHandler{
		billingService: billingService,
		billService:    billService,
		paymentService: paymentService,
		printerService: printerService,
	}
}

// Submit handles committing a cart as a bill
func (h *BillHandler) Submit(c *gin.Context) {
	var req request.SubmitBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.NewValidationError([]apperror.FieldError{
			{Field: "body", Message: "malformed cart: " + err.Error()},
		}))
		return
	}

	input := &service.SubmitBillInput{
		Lines:       make([]service.CartLine, len(req.Items)),
		ShopID:      req.ShopID,
		ClientTotal: req.Total,
	}
	for i, it := range req.Items {
		input.Lines[i] = service.CartLine{
			CatalogItemID:   it.MedicineID,
			Quantity:        it.Quantity,
			ClientUnitPrice: it.UnitPrice,
		}
	}
	if req.Customer != nil {
		input.Customer = service.CustomerRef{
			Kind:       req.Customer.Kind,
			CustomerID: req.Customer.ID,
			Name:       req.Customer.Name,
			Phone:      req.Customer.Phone,
		}
	} else {
		input.Customer.Kind = enum.CustomerRefNone
	}
	// The counter's header names the shop when the body does not
	if input.ShopID == nil {
		if shopID := middleware.GetShopID(c); shopID != "" {
			input.ShopID = &shopID
		}
	}

	result, err := h.billingService.SubmitBill(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	for _, w := range result.Warnings {
		log.Printf("Bill %d: %s", result.Bill.ID, w)
	}

	response.Created(c, "Bill created successfully",
		response.NewBillSubmittedResponse(result.Bill, result.Payment, result.Warnings))
}

// List handles listing bills (supports both page-based and cursor-based pagination)
func (h *BillHandler) List(c *gin.Context) {
	var req request.BillFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	var customerID *uint
	if req.CustomerID != 0 {
		customerID = &req.CustomerID
	}

	if wantsCursor(c) {
		result, err := h.billService.ListBillsWithCursor(c.Request.Context(), &repository.BillCursorFilterParams{
			Cursor:     &pagination.CursorParams{Cursor: req.Cursor, Limit: req.Limit},
			CustomerID: customerID,
			ShopID:     req.ShopID,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Bills retrieved successfully", result)
		return
	}

	from, err := parseDateParam(req.From)
	if err != nil {
		response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(req.To)
	if err != nil {
		response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
		return
	}
	if to != nil {
		// inclusive end date
		next := to.AddDate(0, 0, 1)
		to = &next
	}

	result, err := h.billService.ListBills(c.Request.Context(), &repository.BillFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		CustomerID: customerID,
		ShopID:     req.ShopID,
		From:       from,
		To:         to,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

// Get handles getting a bill with its lines
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// Payment handles re-rendering the UPI payment reference of a bill
func (h *BillHandler) Payment(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	ref, err := h.paymentService.ReferenceForBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment reference generated successfully", ref)
}

// Receipt handles composing a bill's receipt without printing it
func (h *BillHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	receipt, err := h.printerService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}
