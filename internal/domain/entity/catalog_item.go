package entity

import (
	"time"
)

// CatalogItem is one stocked batch of a medicine. Two batches of the same
// product are two rows.
type CatalogItem struct {
	ID           uint       `gorm:"primaryKey"`
	Barcode      *string    `gorm:"size:64;index"`
	Name         string     `gorm:"size:255;not null;index"`
	BatchNo      string     `gorm:"size:100;not null"`
	CostPrice    *int64     // MRP, stored in cents
	SellingPrice *int64     // Stored in cents. Nil or <= 0 means the batch cannot be billed.
	MfgDate      *time.Time `gorm:"type:date"`
	ExpiryDate   time.Time  `gorm:"type:date;not null;index"`
	Quantity     int        `gorm:"not null;default:0;check:chk_catalog_items_quantity,quantity >= 0"`
	Supplier     *string    `gorm:"size:255"`
	ShelfNo      *string    `gorm:"size:50"`
	BoxNo        *string    `gorm:"size:50"`
	ShopID       *string    `gorm:"size:100;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for the CatalogItem model
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// Billable reports whether the batch has a usable selling price.
func (c *CatalogItem) Billable() bool {
	return c.SellingPrice != nil && *c.SellingPrice > 0
}
