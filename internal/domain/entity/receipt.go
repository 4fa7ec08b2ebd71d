package entity

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem is a single printed line.
type ReceiptItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Receipt is a printable view of a bill. It is composed at print time and
// never stored.
type Receipt struct {
	Header     ReceiptHeader `json:"header"`
	BillNo     string        `json:"bill_no"`
	Date       string        `json:"date"`
	Customer   string        `json:"customer,omitempty"`
	Shop       string        `json:"shop,omitempty"`
	Items      []ReceiptItem `json:"items"`
	Total      float64       `json:"total"`
	PaymentURI string        `json:"payment_uri,omitempty"`
	PaymentRef string        `json:"payment_ref,omitempty"`
}
