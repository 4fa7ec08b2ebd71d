package request

// UpdateSettingsRequest represents a settings update. Omitted fields keep
// their current value.
type UpdateSettingsRequest struct {
	StoreName    *string `json:"store_name"`
	StoreAddress *string `json:"store_address"`
	StorePhone   *string `json:"store_phone"`
	PayeeVPA     *string `json:"payee_vpa"`
	PayeeName    *string `json:"payee_name"`
	Currency     *string `json:"currency"`
}
