package entity

import (
	"encoding/json"
	"time"

	"github.com/sangkips/pharmacy-pos-api/pkg/money"
)

// Bill is a committed sale. Bills are never updated or deleted.
type Bill struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CustomerID        *uint     `gorm:"index" json:"customer_id,omitempty"`
	CustomerNameTemp  *string   `gorm:"size:255" json:"customer_name_temp,omitempty"`
	CustomerPhoneTemp *string   `gorm:"size:50" json:"customer_phone_temp,omitempty"`
	TotalAmount       int64     `gorm:"not null;default:0" json:"-"` // Stored in cents
	BilledFromShopID  *string   `gorm:"size:100;index" json:"billed_from_shop_id,omitempty"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []BillItem `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

// MarshalJSON converts cents to decimals for API responses
func (b Bill) MarshalJSON() ([]byte, error) {
	type Alias Bill
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(b),
		TotalAmount: money.Float(b.TotalAmount),
	})
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// CustomerLabel returns the name to print on a receipt.
func (b *Bill) CustomerLabel() string {
	switch {
	case b.Customer != nil:
		return b.Customer.Name
	case b.CustomerNameTemp != nil && *b.CustomerNameTemp != "":
		return *b.CustomerNameTemp
	case b.CustomerPhoneTemp != nil:
		return *b.CustomerPhoneTemp
	}
	return ""
}

// BillItem is one cart line of a committed bill. The name and unit price are
// snapshots taken when the bill was created.
type BillItem struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	BillID        uint   `gorm:"not null;uniqueIndex:idx_bill_items_line" json:"bill_id"`
	LineNo        int    `gorm:"not null;uniqueIndex:idx_bill_items_line" json:"line_no"`
	CatalogItemID uint   `gorm:"not null;index" json:"catalog_item_id"`
	NameSnapshot  string `gorm:"size:255;not null" json:"name"`
	Quantity      int    `gorm:"not null" json:"quantity"`
	UnitPrice     int64  `gorm:"not null" json:"-"` // Stored in cents
	LineTotal     int64  `gorm:"not null" json:"-"` // Stored in cents

	CatalogItem *CatalogItem `gorm:"foreignKey:CatalogItemID" json:"-"`
}

// MarshalJSON converts cents to decimals for API responses
func (i BillItem) MarshalJSON() ([]byte, error) {
	type Alias BillItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(i),
		UnitPrice: money.Float(i.UnitPrice),
		LineTotal: money.Float(i.LineTotal),
	})
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
