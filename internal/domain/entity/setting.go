package entity

import "time"

// Setting keys
const (
	SettingPayeeVPA     = "payee_vpa"
	SettingPayeeName    = "payee_name"
	SettingCurrency     = "currency"
	SettingStoreName    = "store_name"
	SettingStoreAddress = "store_address"
	SettingStorePhone   = "store_phone"
)

// Setting is a key/value row of store wide configuration that can be edited
// at runtime.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}
