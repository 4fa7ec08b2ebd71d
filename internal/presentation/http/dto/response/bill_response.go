package response

import (
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/pkg/money"
	"github.com/sangkips/pharmacy-pos-api/pkg/upi"
)

// BillSubmittedResponse is returned when a cart is committed
type BillSubmittedResponse struct {
	BillID      uint              `json:"bill_id"`
	TotalAmount float64           `json:"total_amount"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []entity.BillItem `json:"items"`
	Payment     *upi.Reference    `json:"payment,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// NewBillSubmittedResponse builds the submission response of a committed bill
func NewBillSubmittedResponse(bill *entity.Bill, payment *upi.Reference, warnings []string) *BillSubmittedResponse {
	return &BillSubmittedResponse{
		BillID:      bill.ID,
		TotalAmount: money.Float(bill.TotalAmount),
		CreatedAt:   bill.CreatedAt,
		Items:       bill.Items,
		Payment:     payment,
		Warnings:    warnings,
	}
}
