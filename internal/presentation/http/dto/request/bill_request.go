package request

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/enum"
)

// BillLineRequest is one cart line. UnitPrice is what the client displayed;
// the server prices from the catalog.
type BillLineRequest struct {
	MedicineID uint             `json:"medicine_id"`
	Quantity   int              `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
}

// BillCustomerRequest identifies the customer of a bill
type BillCustomerRequest struct {
	Kind  enum.CustomerRefKind `json:"kind"`
	ID    uint                 `json:"id"`
	Name  string               `json:"name"`
	Phone string               `json:"phone"`
}

// SubmitBillRequest represents a cart submission
type SubmitBillRequest struct {
	Items    []BillLineRequest    `json:"items"`
	Customer *BillCustomerRequest `json:"customer"`
	ShopID   *string              `json:"shop_id"`
	Total    *decimal.Decimal     `json:"total"`
}

// BillFilterRequest represents bill history filter parameters
type BillFilterRequest struct {
	CustomerID uint   `form:"customer_id"`
	ShopID     string `form:"shop_id"`
	From       string `form:"from"` // YYYY-MM-DD, inclusive
	To         string `form:"to"`   // YYYY-MM-DD, inclusive
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Cursor     string `form:"cursor"`
	Limit      int    `form:"limit"` // For cursor-based pagination
}
