package request

import "github.com/shopspring/decimal"

// CatalogItemRequest represents a catalog batch create or update request.
// Dates use the YYYY-MM-DD format.
type CatalogItemRequest struct {
	Barcode      string           `json:"barcode" binding:"max=100"`
	Name         string           `json:"name" binding:"max=255"`
	BatchNo      string           `json:"batch_no" binding:"max=100"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	MfgDate      string           `json:"mfg_date"`
	ExpiryDate   string           `json:"expiry_date"`
	Quantity     int              `json:"quantity"`
	Supplier     string           `json:"supplier" binding:"max=255"`
	ShelfNo      string           `json:"shelf_no" binding:"max=50"`
	BoxNo        string           `json:"box_no" binding:"max=50"`
	ShopID       string           `json:"shop_id" binding:"max=100"`
}

// CatalogFilterRequest represents catalog filter parameters
type CatalogFilterRequest struct {
	Search    string `form:"search"`
	ShopID    string `form:"shop_id"`
	Expiry    string `form:"expiry"` // expired | soon | good
	LowStock  int    `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Cursor    string `form:"cursor"`
	Limit     int    `form:"limit"` // For cursor-based pagination
}
