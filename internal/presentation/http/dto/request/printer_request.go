package request

// PrintReceiptRequest is the request body for printing a receipt.
type PrintReceiptRequest struct {
	BillID uint `json:"bill_id" binding:"required,min=1"`
}
