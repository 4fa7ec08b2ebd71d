package entity

import (
	"time"
)

// Customer is a registered pharmacy customer. Phone numbers are unique.
type Customer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PhoneNumber  string    `gorm:"size:50;not null;uniqueIndex" json:"phone_number"`
	Email        *string   `gorm:"size:255" json:"email,omitempty"`
	Address      *string   `gorm:"type:text" json:"address,omitempty"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
